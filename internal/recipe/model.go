package recipe

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Quantity is an amount of an ingredient with its unit, e.g. 250 "g" or 10 "leaves".
type Quantity struct {
	Amount float64
	Unit   string
	// Spaced records whether the unit is written apart from the number ("10 leaves")
	// or glued to it ("250g").
	Spaced bool
}

// ParseQuantity parses strings such as "250g", "0.5g" or "2 slices".
func ParseQuantity(s string) (Quantity, error) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || s[end] == '.') {
		end++
	}
	if end == 0 {
		return Quantity{}, fmt.Errorf("quantity %q has no leading amount", s)
	}

	amount, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return Quantity{}, fmt.Errorf("quantity %q: %w", s, err)
	}

	rest := s[end:]
	unit := strings.TrimSpace(rest)
	return Quantity{
		Amount: amount,
		Unit:   unit,
		Spaced: unit != "" && rest != unit,
	}, nil
}

// MustParseQuantity is like ParseQuantity but panics on malformed input.
// Only used for static catalog data.
func MustParseQuantity(s string) Quantity {
	q, err := ParseQuantity(s)
	if err != nil {
		panic(err)
	}
	return q
}

// Times returns the quantity multiplied by n, keeping the unit.
func (q Quantity) Times(n int) Quantity {
	q.Amount *= float64(n)
	return q
}

// String renders the quantity the way it is written in the catalog.
func (q Quantity) String() string {
	amount := strconv.FormatFloat(math.Round(q.Amount*1000)/1000, 'f', -1, 64)
	switch {
	case q.Unit == "":
		return amount
	case q.Spaced:
		return amount + " " + q.Unit
	default:
		return amount + q.Unit
	}
}

// MarshalJSON encodes the quantity as its display string.
func (q Quantity) MarshalJSON() ([]byte, error) {
	return json.Marshal(q.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for Quantity.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseQuantity(s)
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

// Ingredient is one purchasable line of a recipe. PerServing and UnitPrice describe a
// single serving; Quantity and Price are the line values for the recipe's serving
// count, so in catalog templates they are equal to the per-serving values.
type Ingredient struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Image      string          `json:"image"`
	Quantity   Quantity        `json:"quantity"`
	PerServing Quantity        `json:"per_serving"`
	Price      decimal.Decimal `json:"price"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
}

// PriceRange is the informational price band of a dish.
type PriceRange struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

// Recipe represents a dish and the ingredients needed to cook it. Catalog templates
// always have Servings == 1; scaled recipes carry the requested serving count.
type Recipe struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Image       string       `json:"image"`
	Servings    int          `json:"servings"`
	PriceRange  PriceRange   `json:"price_range"`
	Ingredients []Ingredient `json:"ingredients"`
}

// Clone returns a copy that shares no slices with r.
func (r Recipe) Clone() Recipe {
	out := r
	out.Ingredients = make([]Ingredient, len(r.Ingredients))
	copy(out.Ingredients, r.Ingredients)
	return out
}

// Total is the sum of the ingredient prices.
func (r Recipe) Total() decimal.Decimal {
	total := decimal.Zero
	for _, ing := range r.Ingredients {
		total = total.Add(ing.Price)
	}
	return total
}

// Ingredient returns the ingredient with the given id.
func (r Recipe) Ingredient(id string) (Ingredient, bool) {
	for _, ing := range r.Ingredients {
		if ing.ID == id {
			return ing, true
		}
	}
	return Ingredient{}, false
}
