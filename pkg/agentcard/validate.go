package agentcard

import (
	"fmt"
	"net/url"
	"strings"

	agentdirerrors "github.com/jllopis/agentdir/pkg/errors"
)

// requiredFields lists the top-level fields every card must carry, in the
// order they are checked.
var requiredFields = []string{
	"name",
	"description",
	"url",
	"version",
	"capabilities",
	"defaultInputModes",
	"defaultOutputModes",
	"skills",
}

// ValidateCard inspects an untrusted decoded JSON value and either accepts it
// as a well-formed Card or fails with an INVALID_CARD error naming the
// offending field. It is a pure function: no I/O, first failure wins.
func ValidateCard(v any) (Card, error) {
	doc, ok := v.(map[string]any)
	if !ok || doc == nil {
		return nil, invalid("agent card must be a JSON object")
	}

	for _, field := range requiredFields {
		if value, present := doc[field]; !present || value == nil {
			return nil, invalid("missing required field %q", field)
		}
	}

	name, ok := doc["name"].(string)
	if !ok {
		return nil, invalid("field %q must be a string", "name")
	}
	if strings.TrimSpace(name) == "" {
		return nil, invalid("field %q must not be empty", "name")
	}

	for _, field := range []string{"description", "version"} {
		if _, ok := doc[field].(string); !ok {
			return nil, invalid("field %q must be a string", field)
		}
	}

	rawURL, ok := doc["url"].(string)
	if !ok {
		return nil, invalid("field %q must be a string", "url")
	}
	if parsed, err := url.Parse(rawURL); err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, invalid("field %q must be a well-formed URL", "url")
	}

	if _, ok := doc["capabilities"].(map[string]any); !ok {
		return nil, invalid("field %q must be an object", "capabilities")
	}

	for _, field := range []string{"defaultInputModes", "defaultOutputModes", "skills"} {
		if _, ok := doc[field].([]any); !ok {
			return nil, invalid("field %q must be an array", field)
		}
	}

	skills := doc["skills"].([]any)
	for i, entry := range skills {
		if err := validateSkill(i, entry); err != nil {
			return nil, err
		}
	}

	if err := validateOptionalFields(doc); err != nil {
		return nil, err
	}

	return Card(doc), nil
}

func validateSkill(index int, entry any) error {
	skill, ok := entry.(map[string]any)
	if !ok || skill == nil {
		return invalid("skills[%d] must be an object", index)
	}
	for _, field := range []string{"id", "name", "description"} {
		if _, ok := skill[field].(string); !ok {
			return invalid("skills[%d] missing required string field %q", index, field)
		}
	}
	if _, ok := skill["tags"].([]any); !ok {
		return invalid("skills[%d] missing required array field %q", index, "tags")
	}
	for _, field := range []string{"examples", "inputModes", "outputModes"} {
		value, present := skill[field]
		if !present || value == nil {
			continue
		}
		if _, ok := value.([]any); !ok {
			return invalid("skills[%d] field %q must be an array", index, field)
		}
	}
	return nil
}

// validateOptionalFields type-checks known optional top-level fields. Unknown
// fields pass through untouched.
func validateOptionalFields(doc map[string]any) error {
	for _, field := range []string{"protocolVersion", "preferredTransport"} {
		value, present := doc[field]
		if !present || value == nil {
			continue
		}
		if _, ok := value.(string); !ok {
			return invalid("field %q must be a string", field)
		}
	}
	for _, field := range []string{"iconUrl", "documentationUrl"} {
		value, present := doc[field]
		if !present || value == nil {
			continue
		}
		if _, ok := value.(string); !ok {
			return invalid("field %q must be a string or null", field)
		}
	}
	return nil
}

func invalid(format string, args ...any) error {
	return agentdirerrors.New(agentdirerrors.CodeInvalidCard, fmt.Sprintf(format, args...), nil)
}
