package agentcard

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	agentdirerrors "github.com/jllopis/agentdir/pkg/errors"
)

// Discovery constants for agent card HTTP endpoints.
const (
	// WellKnownPath is the standardized location for agent card discovery.
	WellKnownPath = "/.well-known/agent-card.json"
	// DefaultFetchTimeout bounds a single card fetch.
	DefaultFetchTimeout = 30 * time.Second
)

var defaultClient = &http.Client{Timeout: DefaultFetchTimeout}

// ResolveCardURL derives the card fetch URL from a user-supplied URL.
// URLs already pointing at a .json document are fetched as-is; anything else
// is treated as an agent base URL, with at most one trailing slash removed
// before the well-known path is appended. No other normalization happens.
func ResolveCardURL(raw string) string {
	if strings.HasSuffix(raw, ".json") {
		return raw
	}
	return strings.TrimSuffix(raw, "/") + WellKnownPath
}

// Fetch retrieves the document at a resolved card URL and decodes it as JSON.
// The result is untrusted; callers validate it with ValidateCard. Failures
// (network, non-2xx status, malformed body) carry the fetch URL.
func Fetch(ctx context.Context, client *http.Client, url string) (any, error) {
	if client == nil {
		client = defaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, agentdirerrors.New(agentdirerrors.CodeFetchFailed, "invalid card URL "+url, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, agentdirerrors.New(agentdirerrors.CodeFetchFailed, "fetching "+url, err).
			WithContext("url", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, agentdirerrors.Newf(agentdirerrors.CodeFetchFailed,
			"fetching %s: unexpected status %s", url, resp.Status).
			WithContext("url", url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, agentdirerrors.New(agentdirerrors.CodeFetchFailed, "reading "+url, err).
			WithContext("url", url)
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, agentdirerrors.New(agentdirerrors.CodeFetchFailed, "decoding "+url, err).
			WithContext("url", url)
	}
	return doc, nil
}
