package recipe

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinCatalogOrder(t *testing.T) {
	c := Builtin()
	assert.Equal(t, []string{"pizza", "pasta", "biryani", "noodles", "burger", "haleem", "roti"}, c.Keys())

	for _, e := range c.Entries() {
		assert.Equal(t, 1, e.Recipe.Servings, e.Key)
		assert.NotEmpty(t, e.Recipe.Ingredients, e.Key)
		for _, ing := range e.Recipe.Ingredients {
			assert.True(t, ing.Price.Equal(ing.UnitPrice), "%s/%s", e.Key, ing.ID)
			assert.Equal(t, ing.PerServing, ing.Quantity, "%s/%s", e.Key, ing.ID)
		}
	}
}

func TestCatalogLookup(t *testing.T) {
	c := Builtin()

	tests := []struct {
		key     string
		name    string
		wantErr error
	}{
		{"pizza", "Margherita Pizza", nil},
		{"biryani", "Hyderabadi Chicken Biryani", nil},
		{"roti", "Butter Roti with Dal", nil},
		{"sushi", "", ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			r, err := c.Lookup(tt.key)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.name, r.Name)
		})
	}
}

func TestCatalogIsReadOnly(t *testing.T) {
	c := Builtin()

	r, err := c.Lookup("burger")
	require.NoError(t, err)
	r.Ingredients[0].Name = "tofu patty"
	r.Name = "Veggie"

	entries := c.Entries()
	entries[0].Keywords[0] = "calzone"

	again, err := c.Lookup("burger")
	require.NoError(t, err)
	assert.Equal(t, "Classic Cheese Burger", again.Name)
	assert.Equal(t, "Ground Beef Patty", again.Ingredients[0].Name)
	assert.Equal(t, "pizza", c.Entries()[0].Keywords[0])
}

func TestNewCatalogValidation(t *testing.T) {
	good := Recipe{ID: "x", Name: "X", Servings: 1}

	tests := []struct {
		name    string
		entries []Entry
	}{
		{"empty key", []Entry{{Key: "", Keywords: []string{"x"}, Recipe: good}}},
		{"no keywords", []Entry{{Key: "x", Recipe: good}}},
		{"blank keyword", []Entry{{Key: "x", Keywords: []string{"  "}, Recipe: good}}},
		{"duplicate key", []Entry{
			{Key: "x", Keywords: []string{"x"}, Recipe: good},
			{Key: "x", Keywords: []string{"y"}, Recipe: good},
		}},
		{"base servings", []Entry{{Key: "x", Keywords: []string{"x"}, Recipe: Recipe{ID: "x", Servings: 2}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.entries)
			assert.True(t, errors.Is(err, ErrInvalidCatalog), "got %v", err)
		})
	}
}

func TestNewCatalogLowercasesKeywords(t *testing.T) {
	c, err := NewCatalog([]Entry{{
		Key:      "tacos",
		Keywords: []string{" Tacos ", "AL PASTOR"},
		Recipe:   Recipe{ID: "tacos", Name: "Tacos", Servings: 1},
	}})
	require.NoError(t, err)
	assert.Equal(t, []string{"tacos", "al pastor"}, c.Entries()[0].Keywords)
}

func TestStaticSource(t *testing.T) {
	c, err := StaticSource{}.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, c.Len())
}
