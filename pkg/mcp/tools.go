package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jllopis/agentdir/pkg/registry"
)

type toolHandler func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error)

// RegisterTools wires the five registry operations onto the MCP server.
// Domain failures become IsError tool results so assistants can read the
// message; a Go error would be reported as a protocol failure instead.
func RegisterTools(s *Server, reg *registry.Registry) {
	s.RegisterTool(
		mcp.NewTool("register_agent",
			mcp.WithDescription("Register an agent by fetching its agent card from a URL. "+
				"The URL may point directly at a card (.json) or at the agent base URL."),
			mcp.WithString("url", mcp.Required(), mcp.Description("Agent base URL or direct card URL")),
		),
		registerAgentHandler(reg),
	)

	s.RegisterTool(
		mcp.NewTool("list_agents",
			mcp.WithDescription("List every registered agent card."),
		),
		listAgentsHandler(reg),
	)

	s.RegisterTool(
		mcp.NewTool("get_agent",
			mcp.WithDescription("Return the registered agent card for a name."),
			mcp.WithString("name", mcp.Required(), mcp.Description("Agent name")),
		),
		getAgentHandler(reg),
	)

	s.RegisterTool(
		mcp.NewTool("update_agent",
			mcp.WithDescription("Refresh a registered agent card by re-fetching it. "+
				"Without a url the card's stored URL is the fetch source."),
			mcp.WithString("name", mcp.Required(), mcp.Description("Agent name")),
			mcp.WithString("url", mcp.Description("Optional replacement fetch URL")),
		),
		updateAgentHandler(reg),
	)

	s.RegisterTool(
		mcp.NewTool("delete_agent",
			mcp.WithDescription("Remove an agent from the registry. Deleting an unknown name is a no-op."),
			mcp.WithString("name", mcp.Required(), mcp.Description("Agent name")),
		),
		deleteAgentHandler(reg),
	)
}

func registerAgentHandler(reg *registry.Registry) toolHandler {
	return func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
		url, ok := args["url"].(string)
		if !ok || url == "" {
			return mcp.NewToolResultError("url is required"), nil
		}
		card, err := reg.Register(ctx, url)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(card)
	}
}

func listAgentsHandler(reg *registry.Registry) toolHandler {
	return func(ctx context.Context, _ map[string]interface{}) (*mcp.CallToolResult, error) {
		cards, err := reg.List(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(map[string]any{"agents": cards, "count": len(cards)})
	}
}

func getAgentHandler(reg *registry.Registry) toolHandler {
	return func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
		name, ok := args["name"].(string)
		if !ok || name == "" {
			return mcp.NewToolResultError("name is required"), nil
		}
		card, found, err := reg.Get(ctx, name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if !found {
			return mcp.NewToolResultError(fmt.Sprintf("agent %q is not registered", name)), nil
		}
		return jsonResult(card)
	}
}

func updateAgentHandler(reg *registry.Registry) toolHandler {
	return func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
		name, ok := args["name"].(string)
		if !ok || name == "" {
			return mcp.NewToolResultError("name is required"), nil
		}
		url, _ := args["url"].(string)
		card, found, err := reg.Update(ctx, name, url)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if !found {
			return mcp.NewToolResultError(fmt.Sprintf("agent %q is not registered", name)), nil
		}
		return jsonResult(card)
	}
}

func deleteAgentHandler(reg *registry.Registry) toolHandler {
	return func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
		name, ok := args["name"].(string)
		if !ok || name == "" {
			return mcp.NewToolResultError("name is required"), nil
		}
		deleted, err := reg.Delete(ctx, name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(map[string]any{"deleted": deleted})
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError("encoding result: " + err.Error()), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}
