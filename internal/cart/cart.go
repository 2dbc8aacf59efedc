// Package cart holds the list of ingredients a shopper has picked.
package cart

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"oneclickgrocery/internal/recipe"
)

// ErrUnknownIngredient is returned when an ingredient id is not part of the recipe
// items are being picked from.
var ErrUnknownIngredient = errors.New("ingredient not in recipe")

// Item is a scaled ingredient placed in the cart, with the recipe it came from.
// Its cart identity is the ingredient id.
type Item struct {
	recipe.Ingredient
	RecipeID string `json:"recipe_id"`
}

// Cart is an ordered list of line items. The same ingredient may appear several
// times; each line counts toward the total on its own.
type Cart struct {
	items []Item
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// Add appends items in order.
func (c *Cart) Add(items ...Item) {
	c.items = append(c.items, items...)
}

// Remove drops every line whose ingredient id is id and reports how many went.
func (c *Cart) Remove(id string) int {
	kept := c.items[:0]
	for _, it := range c.items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	removed := len(c.items) - len(kept)
	for i := len(kept); i < len(c.items); i++ {
		c.items[i] = Item{}
	}
	c.items = kept
	return removed
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.items = nil
}

// Len returns the number of lines.
func (c *Cart) Len() int {
	return len(c.items)
}

// Items returns a copy of the lines.
func (c *Cart) Items() []Item {
	return Snapshot(c.items)
}

// Total sums the line prices.
func (c *Cart) Total() decimal.Decimal {
	return Total(c.items)
}

// Snapshot copies items so later cart changes cannot reach the copy.
func Snapshot(items []Item) []Item {
	if items == nil {
		return []Item{}
	}
	out := make([]Item, len(items))
	copy(out, items)
	return out
}

// Total sums the prices of items.
func Total(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Price)
	}
	return total
}

// ItemsFromRecipe turns ingredients of r into cart lines. With no ids every
// ingredient is taken, in recipe order.
func ItemsFromRecipe(r recipe.Recipe, ids ...string) ([]Item, error) {
	if len(ids) == 0 {
		items := make([]Item, len(r.Ingredients))
		for i, ing := range r.Ingredients {
			items[i] = Item{Ingredient: ing, RecipeID: r.ID}
		}
		return items, nil
	}

	items := make([]Item, 0, len(ids))
	for _, id := range ids {
		ing, ok := r.Ingredient(id)
		if !ok {
			return nil, fmt.Errorf("%w: %q in %q", ErrUnknownIngredient, id, r.ID)
		}
		items = append(items, Item{Ingredient: ing, RecipeID: r.ID})
	}
	return items, nil
}
