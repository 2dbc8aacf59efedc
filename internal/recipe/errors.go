package recipe

import "errors"

var (
	ErrNotFound       = errors.New("recipe not found")
	ErrNoMatch        = errors.New("no recipe matches the requested dish")
	ErrInvalidCatalog = errors.New("invalid catalog")
)
