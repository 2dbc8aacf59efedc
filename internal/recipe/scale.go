package recipe

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Scale returns a copy of r sized for the given number of servings. Quantities and
// ingredient prices are recomputed from their per-serving values, so scaling an
// already scaled recipe is safe; prices are rounded to two decimals. The price range
// is the template's range times servings, so r is expected to be a catalog template.
// r itself is left untouched.
//
// servings must be positive; callers validate user input before scaling.
func Scale(r Recipe, servings int) Recipe {
	if servings < 1 {
		panic(fmt.Sprintf("recipe: scale %q by %d servings", r.ID, servings))
	}

	factor := decimal.NewFromInt(int64(servings))
	out := r.Clone()
	out.Servings = servings
	out.PriceRange = PriceRange{
		Min: r.PriceRange.Min.Mul(factor),
		Max: r.PriceRange.Max.Mul(factor),
	}
	for i, ing := range r.Ingredients {
		out.Ingredients[i].Quantity = ing.PerServing.Times(servings)
		out.Ingredients[i].Price = ing.UnitPrice.Mul(factor).Round(2)
	}
	return out
}
