package recipe

import "strings"

// Matcher resolves free-text dish names against a catalog.
type Matcher struct {
	catalog *Catalog
}

// NewMatcher creates a matcher over c.
func NewMatcher(c *Catalog) *Matcher {
	return &Matcher{catalog: c}
}

// Match returns the template of the first dish matching query. Exact keyword hits are
// tried across the whole catalog before any substring match, and within each pass the
// first declared key wins. It returns ErrNoMatch when nothing matches.
func (m *Matcher) Match(query string) (Recipe, error) {
	_, r, err := m.MatchKey(query)
	return r, err
}

// MatchKey is like Match but also returns the catalog key that matched.
func (m *Matcher) MatchKey(query string) (string, Recipe, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return "", Recipe{}, ErrNoMatch
	}

	for _, e := range m.catalog.entries {
		for _, kw := range e.Keywords {
			if kw == q {
				return e.Key, e.Recipe.Clone(), nil
			}
		}
	}

	for _, e := range m.catalog.entries {
		for _, kw := range e.Keywords {
			if strings.Contains(q, kw) || strings.Contains(kw, q) {
				return e.Key, e.Recipe.Clone(), nil
			}
		}
	}

	return "", Recipe{}, ErrNoMatch
}
