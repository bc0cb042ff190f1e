// Package agentcard models A2A agent cards and their well-known discovery.
package agentcard

// Card is an agent card as fetched from a remote agent. Only the fields the
// registry depends on are interpreted; everything else is carried through
// untouched so cards round-trip without loss.
type Card map[string]any

// Name returns the card's unique agent name.
func (c Card) Name() string { return c.stringField("name") }

// Description returns the card's description.
func (c Card) Description() string { return c.stringField("description") }

// URL returns the agent's canonical endpoint URL. It is also the default
// re-fetch source on update.
func (c Card) URL() string { return c.stringField("url") }

// Version returns the agent version string.
func (c Card) Version() string { return c.stringField("version") }

func (c Card) stringField(key string) string {
	value, _ := c[key].(string)
	return value
}

// Clone returns a deep copy of the card. Stores hand out clones so callers
// cannot mutate cached state.
func (c Card) Clone() Card {
	if c == nil {
		return nil
	}
	return cloneValue(map[string]any(c)).(map[string]any)
}

func cloneValue(v any) any {
	switch value := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(value))
		for k, item := range value {
			out[k] = cloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(value))
		for i, item := range value {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
