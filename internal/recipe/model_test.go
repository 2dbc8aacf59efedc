package recipe

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		in      string
		want    Quantity
		wantErr bool
	}{
		{"250g", Quantity{Amount: 250, Unit: "g"}, false},
		{"0.5g", Quantity{Amount: 0.5, Unit: "g"}, false},
		{"30ml", Quantity{Amount: 30, Unit: "ml"}, false},
		{"10 leaves", Quantity{Amount: 10, Unit: "leaves", Spaced: true}, false},
		{"2 pieces", Quantity{Amount: 2, Unit: "pieces", Spaced: true}, false},
		{"3", Quantity{Amount: 3}, false},
		{"a pinch", Quantity{}, true},
		{"", Quantity{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseQuantity(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQuantityTimesKeepsUnitAndLayout(t *testing.T) {
	assert.Equal(t, "500g", MustParseQuantity("250g").Times(2).String())
	assert.Equal(t, "1.5g", MustParseQuantity("0.5g").Times(3).String())
	assert.Equal(t, "30 leaves", MustParseQuantity("10 leaves").Times(3).String())
	assert.Equal(t, "7g", MustParseQuantity("7g").Times(1).String())
}

func TestQuantityJSON(t *testing.T) {
	data, err := json.Marshal(MustParseQuantity("4 cloves").Times(2))
	require.NoError(t, err)
	assert.Equal(t, `"8 cloves"`, string(data))

	var q Quantity
	require.NoError(t, json.Unmarshal([]byte(`"200ml"`), &q))
	assert.Equal(t, Quantity{Amount: 200, Unit: "ml"}, q)

	assert.Error(t, json.Unmarshal([]byte(`"lots"`), &q))
}

func TestRecipeCloneDoesNotShareIngredients(t *testing.T) {
	r, err := Builtin().Lookup("pizza")
	require.NoError(t, err)

	c := r.Clone()
	c.Ingredients[0].Name = "changed"
	assert.NotEqual(t, "changed", r.Ingredients[0].Name)
}

func TestRecipeTotalAndIngredient(t *testing.T) {
	r, err := Builtin().Lookup("pasta")
	require.NoError(t, err)

	// 80 + 60 + 120 + 40 + 15
	assert.True(t, decimal.NewFromInt(315).Equal(r.Total()), "total was %s", r.Total())

	ing, ok := r.Ingredient("parmesan")
	require.True(t, ok)
	assert.Equal(t, "Parmesan Cheese", ing.Name)

	_, ok = r.Ingredient("truffle")
	assert.False(t, ok)
}
