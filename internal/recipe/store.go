package recipe

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// PostgresStore keeps catalog entries in PostgreSQL. It lets operators edit dishes
// without a rebuild; the catalog is still read only once, at startup.
type PostgresStore struct {
	db *sqlx.DB
}

// catalogRow is the stored form of an Entry.
type catalogRow struct {
	Key         string          `db:"dish_key"`
	Position    int             `db:"position"`
	Keywords    pq.StringArray  `db:"keywords"`
	RecipeID    string          `db:"recipe_id"`
	Name        string          `db:"name"`
	Image       string          `db:"image"`
	Servings    int             `db:"servings"`
	PriceMin    decimal.Decimal `db:"price_min"`
	PriceMax    decimal.Decimal `db:"price_max"`
	Ingredients string          `db:"ingredients"`
}

// NewPostgresStore connects to the database and creates the catalog table if needed.
func NewPostgresStore(dataSourceName string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return NewPostgresStoreFromDB(db)
}

// NewPostgresStoreFromDB wraps an existing connection.
func NewPostgresStoreFromDB(db *sqlx.DB) (*PostgresStore, error) {
	schema := `
	CREATE TABLE IF NOT EXISTS catalog_recipes (
		dish_key TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		keywords TEXT[] NOT NULL,
		recipe_id TEXT NOT NULL,
		name TEXT NOT NULL,
		image TEXT NOT NULL DEFAULT '',
		servings INTEGER NOT NULL DEFAULT 1,
		price_min NUMERIC(12,2) NOT NULL,
		price_max NUMERIC(12,2) NOT NULL,
		ingredients JSONB NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create catalog_recipes table: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Close closes the underlying connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// SaveEntry inserts or replaces an entry at the given catalog position.
func (s *PostgresStore) SaveEntry(ctx context.Context, position int, e Entry) error {
	ingredientsJSON, err := json.Marshal(e.Recipe.Ingredients)
	if err != nil {
		return fmt.Errorf("failed to marshal ingredients: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO catalog_recipes (dish_key, position, keywords, recipe_id, name, image, servings, price_min, price_max, ingredients)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (dish_key) DO UPDATE SET position = $2, keywords = $3, recipe_id = $4, name = $5, image = $6, servings = $7, price_min = $8, price_max = $9, ingredients = $10`,
		e.Key,
		position,
		pq.StringArray(e.Keywords),
		e.Recipe.ID,
		e.Recipe.Name,
		e.Recipe.Image,
		e.Recipe.Servings,
		e.Recipe.PriceRange.Min,
		e.Recipe.PriceRange.Max,
		string(ingredientsJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save catalog entry %q: %w", e.Key, err)
	}
	return nil
}

// Seed writes every entry of c in declaration order.
func (s *PostgresStore) Seed(ctx context.Context, c *Catalog) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	for i, e := range c.Entries() {
		ingredientsJSON, err := json.Marshal(e.Recipe.Ingredients)
		if err != nil {
			return fmt.Errorf("failed to marshal ingredients: %w", err)
		}
		_, err = tx.NamedExecContext(ctx,
			`INSERT INTO catalog_recipes (dish_key, position, keywords, recipe_id, name, image, servings, price_min, price_max, ingredients)
			VALUES (:dish_key, :position, :keywords, :recipe_id, :name, :image, :servings, :price_min, :price_max, :ingredients)
			ON CONFLICT (dish_key) DO NOTHING`,
			toRow(i, e, ingredientsJSON),
		)
		if err != nil {
			return fmt.Errorf("failed to seed catalog entry %q: %w", e.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed transaction: %w", err)
	}
	return nil
}

// Load reads all entries ordered by position and builds a catalog from them.
func (s *PostgresStore) Load(ctx context.Context) (*Catalog, error) {
	var rows []catalogRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT dish_key, position, keywords, recipe_id, name, image, servings, price_min, price_max, ingredients FROM catalog_recipes ORDER BY position, dish_key")
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		e, err := row.entry()
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	c, err := NewCatalog(entries)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog from database: %w", err)
	}
	return c, nil
}

func toRow(position int, e Entry, ingredientsJSON []byte) catalogRow {
	return catalogRow{
		Key:         e.Key,
		Position:    position,
		Keywords:    pq.StringArray(e.Keywords),
		RecipeID:    e.Recipe.ID,
		Name:        e.Recipe.Name,
		Image:       e.Recipe.Image,
		Servings:    e.Recipe.Servings,
		PriceMin:    e.Recipe.PriceRange.Min,
		PriceMax:    e.Recipe.PriceRange.Max,
		Ingredients: string(ingredientsJSON),
	}
}

func (row catalogRow) entry() (Entry, error) {
	var ingredients []Ingredient
	if err := json.Unmarshal([]byte(row.Ingredients), &ingredients); err != nil {
		return Entry{}, fmt.Errorf("failed to unmarshal ingredients of %q: %w", row.Key, err)
	}
	return Entry{
		Key:      row.Key,
		Keywords: []string(row.Keywords),
		Recipe:   Recipe{
			ID:          row.RecipeID,
			Name:        row.Name,
			Image:       row.Image,
			Servings:    row.Servings,
			PriceRange:  PriceRange{Min: row.PriceMin, Max: row.PriceMax},
			Ingredients: ingredients,
		},
	}, nil
}
