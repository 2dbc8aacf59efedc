package api

import (
	"github.com/shopspring/decimal"

	"oneclickgrocery/internal/cart"
	"oneclickgrocery/internal/checkout"
	"oneclickgrocery/internal/recipe"
	"oneclickgrocery/internal/session"
)

type catalogEntry struct {
	Key        string            `json:"key"`
	Name       string            `json:"name"`
	Image      string            `json:"image"`
	Keywords   []string          `json:"keywords"`
	PriceRange recipe.PriceRange `json:"price_range"`
}

type suggestRequest struct {
	DishName string  `json:"dish_name" validate:"required,max=100"`
	Servings int     `json:"servings" validate:"min=1,max=10"`
	MaxPrice float64 `json:"max_price" validate:"gte=100"`
}

type addItemsRequest struct {
	IngredientIDs []string      `json:"ingredient_ids" validate:"excluded_with=Items,omitempty,dive,required"`
	Items         []itemPayload `json:"items" validate:"omitempty,dive"`
}

type itemPayload struct {
	ID       string          `json:"id" validate:"required"`
	Name     string          `json:"name" validate:"required"`
	Image    string          `json:"image"`
	Quantity recipe.Quantity `json:"quantity"`
	Price    float64         `json:"price" validate:"gte=0"`
	RecipeID string          `json:"recipe_id"`
}

func (p itemPayload) item() cart.Item {
	price := decimal.NewFromFloat(p.Price).Round(2)
	return cart.Item{
		Ingredient: recipe.Ingredient{
			ID:         p.ID,
			Name:       p.Name,
			Image:      p.Image,
			Quantity:   p.Quantity,
			PerServing: p.Quantity,
			Price:      price,
			UnitPrice:  price,
		},
		RecipeID: p.RecipeID,
	}
}

type advanceRequest struct {
	Phase         string          `json:"phase" validate:"required,oneof=cart address payment confirmation"`
	Address       *addressPayload `json:"address"`
	PaymentMethod string          `json:"payment_method" validate:"omitempty,oneof=cod upi"`
}

type addressPayload struct {
	FullName string `json:"full_name" validate:"required"`
	Street   string `json:"street" validate:"required"`
	City     string `json:"city" validate:"required"`
	State    string `json:"state" validate:"required"`
	Pincode  string `json:"pincode" validate:"required,len=6,numeric"`
	Phone    string `json:"phone" validate:"required,len=10,numeric"`
}

func (p addressPayload) address() checkout.Address {
	return checkout.Address{
		FullName: p.FullName,
		Street:   p.Street,
		City:     p.City,
		State:    p.State,
		Pincode:  p.Pincode,
		Phone:    p.Phone,
	}
}

type cartResponse struct {
	Items   []cart.Item     `json:"items"`
	Count   int             `json:"count"`
	Total   decimal.Decimal `json:"total"`
	Removed *int            `json:"removed,omitempty"`
}

func newCartResponse(s *session.Session) cartResponse {
	items := s.CartItems()
	return cartResponse{Items: items, Count: len(items), Total: cart.Total(items)}
}

type checkoutResponse struct {
	Phase   checkout.Phase    `json:"phase"`
	Address *checkout.Address `json:"address,omitempty"`
	Order   *checkout.Order   `json:"order,omitempty"`
}

func newCheckoutResponse(s *session.Session) checkoutResponse {
	v := s.Snapshot()
	return checkoutResponse{Phase: v.Phase, Address: v.Address, Order: v.Order}
}
