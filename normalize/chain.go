package normalize

import "strings"

// chain is the back-reference list for one placeholder-aware field. It holds
// resolved values only, never raw placeholders.
type chain struct {
	values []string
}

func (c *chain) push(v string) {
	if v != "" {
		c.values = append(c.values, v)
	}
}

// last returns the nearest resolved value.
func (c *chain) last() (string, bool) {
	if len(c.values) == 0 {
		return "", false
	}
	return c.values[len(c.values)-1], true
}

// IsPlaceholder reports whether s contains one of the placeholder markers.
// Matching is case-sensitive.
func IsPlaceholder(s string, placeholders []string) bool {
	for _, p := range placeholders {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
