package recipe

import "context"

// Source loads the dish catalog. It is consulted once at startup.
type Source interface {
	Load(ctx context.Context) (*Catalog, error)
}

// Compile-time interface checks.
var (
	_ Source = StaticSource{}
	_ Source = (*PostgresStore)(nil)
)

// StaticSource serves the built-in catalog.
type StaticSource struct{}

// Load returns the built-in catalog.
func (StaticSource) Load(ctx context.Context) (*Catalog, error) {
	return Builtin(), nil
}
