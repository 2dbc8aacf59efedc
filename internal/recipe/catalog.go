package recipe

import (
	"fmt"
	"strings"
)

// Entry binds a canonical dish key to its recipe template and the keywords that
// identify it in user input.
type Entry struct {
	Key      string   `json:"key"`
	Keywords []string `json:"keywords"`
	Recipe   Recipe   `json:"recipe"`
}

// Catalog is an ordered, read-only set of recipe templates. Declaration order is
// significant: it is the tie-break order of the matcher.
type Catalog struct {
	entries []Entry
	index   map[string]int
}

// NewCatalog validates entries and builds a catalog from them. Keywords are stored
// lower-cased.
func NewCatalog(entries []Entry) (*Catalog, error) {
	c := &Catalog{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		if e.Key == "" {
			return nil, fmt.Errorf("%w: entry with empty key", ErrInvalidCatalog)
		}
		if _, dup := c.index[e.Key]; dup {
			return nil, fmt.Errorf("%w: duplicate key %q", ErrInvalidCatalog, e.Key)
		}
		if len(e.Keywords) == 0 {
			return nil, fmt.Errorf("%w: %q has no keywords", ErrInvalidCatalog, e.Key)
		}
		if e.Recipe.Servings != 1 {
			return nil, fmt.Errorf("%w: %q has base servings %d, want 1", ErrInvalidCatalog, e.Key, e.Recipe.Servings)
		}

		keywords := make([]string, 0, len(e.Keywords))
		for _, kw := range e.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				return nil, fmt.Errorf("%w: %q has an empty keyword", ErrInvalidCatalog, e.Key)
			}
			keywords = append(keywords, kw)
		}

		c.index[e.Key] = len(c.entries)
		c.entries = append(c.entries, Entry{
			Key:      e.Key,
			Keywords: keywords,
			Recipe:   e.Recipe.Clone(),
		})
	}
	return c, nil
}

// Len returns the number of dishes.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Keys returns the dish keys in declaration order.
func (c *Catalog) Keys() []string {
	keys := make([]string, len(c.entries))
	for i, e := range c.entries {
		keys[i] = e.Key
	}
	return keys
}

// Entries returns copies of all entries in declaration order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	for i, e := range c.entries {
		out[i] = copyEntry(e)
	}
	return out
}

// Lookup returns a copy of the recipe template stored under key.
func (c *Catalog) Lookup(key string) (Recipe, error) {
	i, ok := c.index[key]
	if !ok {
		return Recipe{}, ErrNotFound
	}
	return c.entries[i].Recipe.Clone(), nil
}

func copyEntry(e Entry) Entry {
	keywords := make([]string, len(e.Keywords))
	copy(keywords, e.Keywords)
	return Entry{Key: e.Key, Keywords: keywords, Recipe: e.Recipe.Clone()}
}
