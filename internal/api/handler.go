package api

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"oneclickgrocery/internal/cart"
	"oneclickgrocery/internal/checkout"
	"oneclickgrocery/internal/recipe"
	"oneclickgrocery/internal/session"
)

// SessionStore defines the session lookups the handlers need.
type SessionStore interface {
	GetOrCreate(id string) *session.Session
	Len() int
}

// Handler handles HTTP requests.
type Handler struct {
	Catalog  *recipe.Catalog
	Sessions SessionStore
	validate *validator.Validate
	timeout  time.Duration
}

// NewHandler creates a new Handler. timeout bounds dish matching, which may
// call out to a classifier.
func NewHandler(catalog *recipe.Catalog, sessions SessionStore, timeout time.Duration) *Handler {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Handler{Catalog: catalog, Sessions: sessions, validate: v, timeout: timeout}
}

// Register mounts every route on r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/health", h.Health)
	r.GET("/catalog", h.GetCatalog)
	r.GET("/session", h.GetSession)

	r.POST("/recipes/suggest", h.SuggestRecipe)
	r.GET("/recipes/current", h.GetCurrentRecipe)
	r.DELETE("/recipes/current", h.ClearCurrentRecipe)

	r.GET("/cart", h.GetCart)
	r.POST("/cart/items", h.AddCartItems)
	r.DELETE("/cart/items/:id", h.RemoveCartItem)
	r.DELETE("/cart", h.ClearCart)

	r.GET("/checkout", h.GetCheckout)
	r.POST("/checkout/advance", h.AdvanceCheckout)
	r.POST("/checkout/back", h.CheckoutBack)

	r.GET("/orders/current", h.GetCurrentOrder)
}

func (h *Handler) session(c *gin.Context) *session.Session {
	return h.Sessions.GetOrCreate(c.GetString(ctxSessionID))
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": h.Sessions.Len(), "dishes": h.Catalog.Len()})
}

// GetCatalog lists the dishes that can be requested.
func (h *Handler) GetCatalog(c *gin.Context) {
	entries := h.Catalog.Entries()
	out := make([]catalogEntry, len(entries))
	for i, e := range entries {
		out[i] = catalogEntry{
			Key:        e.Key,
			Name:       e.Recipe.Name,
			Image:      e.Recipe.Image,
			Keywords:   e.Keywords,
			PriceRange: e.Recipe.PriceRange,
		}
	}
	c.JSON(http.StatusOK, out)
}

// GetSession returns the whole session state.
func (h *Handler) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, h.session(c).Snapshot())
}

// SuggestRecipe matches and scales a dish request.
func (h *Handler) SuggestRecipe(c *gin.Context) {
	var req suggestRequest
	if !h.bind(c, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	sug, err := h.session(c).SubmitRecipeRequest(ctx, session.RecipeRequest{
		DishName: req.DishName,
		Servings: req.Servings,
		MaxPrice: decimal.NewFromFloat(req.MaxPrice),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sug)
}

// GetCurrentRecipe returns the displayed recipe.
func (h *Handler) GetCurrentRecipe(c *gin.Context) {
	r, ok := h.session(c).DisplayedRecipe()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no recipe displayed"})
		return
	}
	c.JSON(http.StatusOK, r)
}

// ClearCurrentRecipe hides the displayed recipe.
func (h *Handler) ClearCurrentRecipe(c *gin.Context) {
	h.session(c).ClearRecipe()
	c.Status(http.StatusNoContent)
}

// GetCart returns the cart lines and total.
func (h *Handler) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, newCartResponse(h.session(c)))
}

// AddCartItems adds explicit items, or ingredients of the displayed recipe
// (all of them when no ids are given). A body carrying both is rejected.
func (h *Handler) AddCartItems(c *gin.Context) {
	var req addItemsRequest
	if !h.bind(c, &req) {
		return
	}

	s := h.session(c)
	if len(req.Items) > 0 {
		items := make([]cart.Item, len(req.Items))
		for i, p := range req.Items {
			items[i] = p.item()
		}
		s.AddToCart(items...)
	} else if _, err := s.AddRecipeToCart(req.IngredientIDs...); err != nil {
		h.fail(c, err)
		return
	}

	requestLogger(c).WithField("cart_items", len(s.CartItems())).Info("cart updated")
	c.JSON(http.StatusOK, newCartResponse(s))
}

// RemoveCartItem removes every line for an ingredient id.
func (h *Handler) RemoveCartItem(c *gin.Context) {
	s := h.session(c)
	removed := s.RemoveFromCart(c.Param("id"))
	resp := newCartResponse(s)
	resp.Removed = &removed
	c.JSON(http.StatusOK, resp)
}

// ClearCart empties the cart and restarts checkout.
func (h *Handler) ClearCart(c *gin.Context) {
	s := h.session(c)
	s.ClearCart()
	c.JSON(http.StatusOK, newCartResponse(s))
}

// GetCheckout returns the checkout phase and draft.
func (h *Handler) GetCheckout(c *gin.Context) {
	c.JSON(http.StatusOK, newCheckoutResponse(h.session(c)))
}

// AdvanceCheckout leaves the phase named in the request.
func (h *Handler) AdvanceCheckout(c *gin.Context) {
	var req advanceRequest
	if !h.bind(c, &req) {
		return
	}

	phase, err := checkout.ParsePhase(req.Phase)
	if err != nil {
		h.fail(c, err)
		return
	}

	var payload any
	switch phase {
	case checkout.PhaseAddress:
		if req.Address == nil {
			h.invalid(c, map[string]string{"address": "required"})
			return
		}
		payload = req.Address.address()
	case checkout.PhasePayment:
		if req.PaymentMethod == "" {
			h.invalid(c, map[string]string{"payment_method": "required"})
			return
		}
		method, err := checkout.ParsePaymentMethod(req.PaymentMethod)
		if err != nil {
			h.fail(c, err)
			return
		}
		payload = method
	}

	s := h.session(c)
	if err := s.AdvanceCheckout(phase, payload); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newCheckoutResponse(s))
}

// CheckoutBack steps checkout back one phase.
func (h *Handler) CheckoutBack(c *gin.Context) {
	s := h.session(c)
	if err := s.CheckoutBack(); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newCheckoutResponse(s))
}

// GetCurrentOrder returns the placed order.
func (h *Handler) GetCurrentOrder(c *gin.Context) {
	order, ok := h.session(c).CurrentOrder()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no order placed"})
		return
	}
	c.JSON(http.StatusOK, order)
}

// bind decodes and validates the JSON body, writing the error response itself.
func (h *Handler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return false
	}
	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			h.fail(c, err)
			return false
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fieldPath(fe.Namespace())] = fe.Tag()
		}
		h.invalid(c, fields)
		return false
	}
	return true
}

// fieldPath drops the top-level struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func (h *Handler) invalid(c *gin.Context, fields map[string]string) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "fields": fields})
}

// fail maps a domain error onto a status code.
func (h *Handler) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, recipe.ErrNoMatch):
		status = http.StatusNotFound
	case errors.Is(err, checkout.ErrInvalidTransition),
		errors.Is(err, session.ErrNoRecipe):
		status = http.StatusConflict
	case errors.Is(err, session.ErrInvalidServings),
		errors.Is(err, session.ErrInvalidBudget),
		errors.Is(err, session.ErrInvalidPayload),
		errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrIncompleteAddress),
		errors.Is(err, checkout.ErrUnknownPhase),
		errors.Is(err, checkout.ErrUnknownPayment),
		errors.Is(err, cart.ErrUnknownIngredient):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}

	log := requestLogger(c).WithError(err).WithField("status", status)
	if status >= http.StatusInternalServerError {
		log.Error("request error")
	} else {
		log.Info("request rejected")
	}

	msg := err.Error()
	if errors.Is(err, recipe.ErrNoMatch) {
		msg = "No recipe found for that dish. Try one of: " + strings.Join(h.Catalog.Keys(), ", ")
	}
	c.JSON(status, gin.H{"error": msg})
}
