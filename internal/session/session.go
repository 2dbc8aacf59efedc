// Package session ties the matcher, cart and checkout together for one shopper.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"oneclickgrocery/internal/cart"
	"oneclickgrocery/internal/checkout"
	"oneclickgrocery/internal/recipe"
)

const (
	MinServings = 1
	MaxServings = 10
)

// MinBudget is the smallest budget a request may carry.
var MinBudget = decimal.NewFromInt(100)

var (
	ErrInvalidServings = errors.New("servings must be between 1 and 10")
	ErrInvalidBudget   = errors.New("budget must be at least 100")
	ErrNoRecipe        = errors.New("no recipe displayed")
	ErrInvalidPayload  = errors.New("invalid checkout payload")
)

// Classifier maps free text onto one of the given catalog keys. It is only
// consulted after keyword matching fails.
type Classifier interface {
	Classify(ctx context.Context, query string, keys []string) (string, error)
}

// RecipeRequest is what the shopper typed into the dish form.
type RecipeRequest struct {
	DishName string          `json:"dish_name"`
	Servings int             `json:"servings"`
	MaxPrice decimal.Decimal `json:"max_price"`
}

// Validate checks the servings and budget ranges.
func (r RecipeRequest) Validate() error {
	if r.Servings < MinServings || r.Servings > MaxServings {
		return fmt.Errorf("%w: got %d", ErrInvalidServings, r.Servings)
	}
	if r.MaxPrice.LessThan(MinBudget) {
		return fmt.Errorf("%w: got %s", ErrInvalidBudget, r.MaxPrice)
	}
	return nil
}

// Suggestion is a scaled recipe plus its budget check. Going over budget is
// only a warning.
type Suggestion struct {
	Recipe       recipe.Recipe   `json:"recipe"`
	Total        decimal.Decimal `json:"total"`
	OverBudget   bool            `json:"over_budget"`
	OverBudgetBy decimal.Decimal `json:"over_budget_by"`
}

// View is a point-in-time copy of a session.
type View struct {
	ID        string            `json:"id"`
	Request   *RecipeRequest    `json:"request,omitempty"`
	Recipe    *recipe.Recipe    `json:"recipe,omitempty"`
	Cart      []cart.Item       `json:"cart"`
	CartTotal decimal.Decimal   `json:"cart_total"`
	Phase     checkout.Phase    `json:"phase"`
	Address   *checkout.Address `json:"address,omitempty"`
	Order     *checkout.Order   `json:"order,omitempty"`
}

// Option configures sessions and the store that creates them.
type Option func(*options)

type options struct {
	classifier Classifier
	log        logrus.FieldLogger
	now        func() time.Time
	checkout   []checkout.Option
}

// WithClassifier enables the fallback used when no keyword matches.
func WithClassifier(c Classifier) Option {
	return func(o *options) {
		o.classifier = c
	}
}

// WithLogger sets the logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithClock sets the time source for activity tracking and orders.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
		o.checkout = append(o.checkout, checkout.WithClock(now))
	}
}

// WithCheckoutOptions passes options to every checkout machine.
func WithCheckoutOptions(opts ...checkout.Option) Option {
	return func(o *options) {
		o.checkout = append(o.checkout, opts...)
	}
}

func buildOptions(opts []Option) options {
	o := options{
		log: logrus.StandardLogger(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Session is one shopper's state. All methods are safe for concurrent use and
// apply each change in full under one lock; only dish lookup in
// SubmitRecipeRequest runs outside it.
type Session struct {
	id      string
	catalog *recipe.Catalog
	matcher *recipe.Matcher
	opts    options
	log     logrus.FieldLogger

	mu        sync.Mutex
	cart      *cart.Cart
	checkout  *checkout.Machine
	request   *RecipeRequest
	displayed *recipe.Recipe
	// bumped by every recipe request and ClearRecipe; a lookup finishing under
	// an older value leaves the display alone
	requests uint64

	lastSeen atomic.Int64 // unix nanos, read without mu
}

// New creates an empty session over catalog.
func New(id string, catalog *recipe.Catalog, opts ...Option) *Session {
	return newSession(id, catalog, buildOptions(opts))
}

func newSession(id string, catalog *recipe.Catalog, o options) *Session {
	s := &Session{
		id:       id,
		catalog:  catalog,
		matcher:  recipe.NewMatcher(catalog),
		opts:     o,
		log:      o.log.WithField("session", id),
		cart:     cart.New(),
		checkout: checkout.New(o.checkout...),
	}
	s.touch()
	return s
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// LastSeen returns when the session was last used. It never waits on a
// running operation.
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

func (s *Session) touch() {
	s.lastSeen.Store(s.opts.now().UnixNano())
}

// SubmitRecipeRequest matches the dish, scales it and makes it the displayed
// recipe. The previous recipe is cleared first, so on recipe.ErrNoMatch nothing
// is displayed. The classifier runs without the session lock held; when a
// newer request arrives meanwhile, the older one still returns its suggestion
// but leaves the display to the newer one.
func (s *Session) SubmitRecipeRequest(ctx context.Context, req RecipeRequest) (*Suggestion, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.touch()
	s.request = &req
	s.displayed = nil
	s.requests++
	seq := s.requests
	s.mu.Unlock()

	tmpl, err := s.resolve(ctx, req.DishName)
	if err != nil {
		return nil, err
	}
	scaled := recipe.Scale(tmpl, req.Servings)

	sug := &Suggestion{
		Recipe:       scaled.Clone(),
		Total:        scaled.Total(),
		OverBudgetBy: decimal.Zero,
	}
	if sug.Total.GreaterThan(req.MaxPrice) {
		sug.OverBudget = true
		sug.OverBudgetBy = sug.Total.Sub(req.MaxPrice)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if seq != s.requests {
		s.log.WithField("dish", req.DishName).Debug("recipe request superseded")
		return sug, nil
	}
	s.displayed = &scaled

	s.log.WithFields(logrus.Fields{
		"dish":        req.DishName,
		"recipe":      scaled.ID,
		"servings":    req.Servings,
		"total":       sug.Total.StringFixed(2),
		"over_budget": sug.OverBudget,
	}).Info("recipe suggested")
	return sug, nil
}

// resolve reads only immutable state and may run without mu.
func (s *Session) resolve(ctx context.Context, query string) (recipe.Recipe, error) {
	r, err := s.matcher.Match(query)
	if err == nil || !errors.Is(err, recipe.ErrNoMatch) || s.opts.classifier == nil {
		return r, err
	}
	if strings.TrimSpace(query) == "" {
		return recipe.Recipe{}, err
	}

	keys := s.catalog.Keys()
	key, cerr := s.opts.classifier.Classify(ctx, query, keys)
	if cerr != nil {
		s.log.WithError(cerr).WithField("dish", query).Warn("classifier failed")
		return recipe.Recipe{}, err
	}
	key = strings.ToLower(strings.TrimSpace(key))
	r, lerr := s.catalog.Lookup(key)
	if lerr != nil {
		s.log.WithFields(logrus.Fields{"dish": query, "answer": key}).Debug("classifier answer is not a catalog key")
		return recipe.Recipe{}, err
	}
	s.log.WithFields(logrus.Fields{"dish": query, "recipe": key}).Info("dish resolved by classifier")
	return r, nil
}

// DisplayedRecipe returns the recipe currently shown, if any.
func (s *Session) DisplayedRecipe() (recipe.Recipe, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.displayed == nil {
		return recipe.Recipe{}, false
	}
	return s.displayed.Clone(), true
}

// ClearRecipe hides the displayed recipe.
func (s *Session) ClearRecipe() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.displayed = nil
	s.requests++
}

// AddToCart appends items to the cart.
func (s *Session) AddToCart(items ...cart.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.cart.Add(items...)
}

// AddRecipeToCart adds ingredients of the displayed recipe, all of them when no
// ids are given.
func (s *Session) AddRecipeToCart(ids ...string) ([]cart.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.displayed == nil {
		return nil, ErrNoRecipe
	}
	items, err := cart.ItemsFromRecipe(*s.displayed, ids...)
	if err != nil {
		return nil, err
	}
	s.cart.Add(items...)
	return cart.Snapshot(items), nil
}

// RemoveFromCart drops every line for the ingredient id.
func (s *Session) RemoveFromCart(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.cart.Remove(id)
}

// ClearCart empties the cart and restarts checkout, dropping any order.
func (s *Session) ClearCart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.cart.Clear()
	s.checkout.Reset()
}

// CartItems returns a copy of the cart lines.
func (s *Session) CartItems() []cart.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Items()
}

// CartTotal returns the sum of the cart line prices.
func (s *Session) CartTotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Total()
}

// Phase returns the current checkout phase.
func (s *Session) Phase() checkout.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkout.Phase()
}

// AdvanceCheckout leaves phase, which must be the current one. The payload
// depends on the phase being left:
//
//	PhaseCart          nil
//	PhaseAddress       checkout.Address
//	PhasePayment       checkout.PaymentMethod
//	PhaseConfirmation  nil, starts a new order
func (s *Session) AdvanceCheckout(phase checkout.Phase, payload any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	current := s.checkout.Phase()
	if phase != current {
		return &checkout.TransitionError{From: current, Op: "advance from " + phase.String()}
	}

	var err error
	switch phase {
	case checkout.PhaseCart:
		err = s.checkout.Begin(s.cart.Len())
	case checkout.PhaseAddress:
		addr, ok := payload.(checkout.Address)
		if !ok {
			return fmt.Errorf("%w: want address, got %T", ErrInvalidPayload, payload)
		}
		err = s.checkout.SubmitAddress(addr)
	case checkout.PhasePayment:
		method, ok := payload.(checkout.PaymentMethod)
		if !ok {
			return fmt.Errorf("%w: want payment method, got %T", ErrInvalidPayload, payload)
		}
		var order *checkout.Order
		order, err = s.checkout.SubmitPayment(method, s.cart.Items(), s.cart.Total())
		if err == nil {
			s.log.WithFields(logrus.Fields{
				"order":   order.ID,
				"items":   len(order.Items),
				"total":   order.Total.StringFixed(2),
				"payment": order.PaymentMethod,
			}).Info("order placed")
		}
	case checkout.PhaseConfirmation:
		s.cart.Clear()
		s.checkout.Reset()
	}
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"from": phase, "to": s.checkout.Phase()}).Debug("checkout advanced")
	return nil
}

// CheckoutBack steps checkout back one phase.
func (s *Session) CheckoutBack() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.checkout.Back()
}

// CurrentOrder returns a copy of the placed order, if any.
func (s *Session) CurrentOrder() (*checkout.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkout.Order()
}

// Snapshot returns a copy of the whole session.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		ID:        s.id,
		Cart:      s.cart.Items(),
		CartTotal: s.cart.Total(),
		Phase:     s.checkout.Phase(),
	}
	if s.request != nil {
		req := *s.request
		v.Request = &req
	}
	if s.displayed != nil {
		r := s.displayed.Clone()
		v.Recipe = &r
	}
	if addr, ok := s.checkout.Address(); ok {
		v.Address = &addr
	}
	if order, ok := s.checkout.Order(); ok {
		v.Order = order
	}
	return v
}
