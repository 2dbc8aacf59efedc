// Package checkout implements the cart → address → payment → confirmation flow.
package checkout

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"oneclickgrocery/internal/cart"
)

var (
	// ErrEmptyCart is returned when checkout starts, or payment is submitted,
	// with nothing in the cart.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrIncompleteAddress is returned when a required address field is blank.
	ErrIncompleteAddress = errors.New("address is incomplete")
	// ErrInvalidTransition is returned when an operation is not allowed in the
	// current phase. TransitionError wraps it.
	ErrInvalidTransition = errors.New("invalid checkout transition")
	// ErrUnknownPhase is returned by ParsePhase for names it does not know.
	ErrUnknownPhase = errors.New("unknown checkout phase")
	// ErrUnknownPayment is returned for payment methods other than cod and upi.
	ErrUnknownPayment = errors.New("unknown payment method")
)

// Phase is a step of the checkout flow.
type Phase int

const (
	PhaseCart Phase = iota
	PhaseAddress
	PhasePayment
	PhaseConfirmation
)

// String returns the wire name of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseCart:
		return "cart"
	case PhaseAddress:
		return "address"
	case PhasePayment:
		return "payment"
	case PhaseConfirmation:
		return "confirmation"
	default:
		return "unknown"
	}
}

// ParsePhase is the inverse of Phase.String.
func ParsePhase(s string) (Phase, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cart":
		return PhaseCart, nil
	case "address":
		return PhaseAddress, nil
	case "payment":
		return PhasePayment, nil
	case "confirmation":
		return PhaseConfirmation, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPhase, s)
}

// MarshalText encodes the phase by its wire name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText accepts the names ParsePhase does.
func (p *Phase) UnmarshalText(b []byte) error {
	v, err := ParsePhase(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// PaymentMethod is how the customer pays on delivery.
type PaymentMethod string

const (
	PaymentCOD PaymentMethod = "cod"
	PaymentUPI PaymentMethod = "upi"
)

// ParsePaymentMethod accepts "cod" or "upi" in any case.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch m := PaymentMethod(strings.ToLower(strings.TrimSpace(s))); m {
	case PaymentCOD, PaymentUPI:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPayment, s)
}

// Status of a placed order. Orders are confirmed as soon as payment is
// submitted.
type Status string

const StatusConfirmed Status = "confirmed"

// Address is where the order is delivered.
type Address struct {
	FullName string `json:"full_name"`
	Street   string `json:"street"`
	City     string `json:"city"`
	State    string `json:"state"`
	Pincode  string `json:"pincode"`
	Phone    string `json:"phone"`
}

// Complete reports whether every field is filled in.
func (a Address) Complete() bool {
	for _, f := range []string{a.FullName, a.Street, a.City, a.State, a.Pincode, a.Phone} {
		if strings.TrimSpace(f) == "" {
			return false
		}
	}
	return true
}

// Order is the result of a finished checkout.
type Order struct {
	ID            string          `json:"id"`
	Items         []cart.Item     `json:"items"`
	Total         decimal.Decimal `json:"total"`
	Address       Address         `json:"address"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Status        Status          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (o *Order) clone() *Order {
	c := *o
	c.Items = cart.Snapshot(o.Items)
	return &c
}

// TransitionError describes a move the machine refused.
type TransitionError struct {
	From Phase
	Op   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: cannot %s from %s", ErrInvalidTransition, e.Op, e.From)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// Option configures a Machine.
type Option func(*Machine)

// WithClock sets the time source used to stamp orders.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) {
		m.now = now
	}
}

// WithIDGenerator sets how order ids are made.
func WithIDGenerator(gen func() string) Option {
	return func(m *Machine) {
		m.newID = gen
	}
}

// Machine tracks where a customer is in checkout. The address is captured when
// leaving Address; the order exists only in Confirmation.
type Machine struct {
	phase   Phase
	address *Address
	order   *Order

	now   func() time.Time
	newID func() string
}

// New returns a machine in PhaseCart.
func New(opts ...Option) *Machine {
	m := &Machine{
		phase: PhaseCart,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase {
	return m.phase
}

// Address returns the captured delivery address, if any.
func (m *Machine) Address() (Address, bool) {
	if m.address == nil {
		return Address{}, false
	}
	return *m.address, true
}

// Order returns a copy of the placed order, if any.
func (m *Machine) Order() (*Order, bool) {
	if m.order == nil {
		return nil, false
	}
	return m.order.clone(), true
}

// Begin moves from Cart to Address. cartLen is the number of lines in the cart.
func (m *Machine) Begin(cartLen int) error {
	if m.phase != PhaseCart {
		return &TransitionError{From: m.phase, Op: "begin checkout"}
	}
	if cartLen == 0 {
		return ErrEmptyCart
	}
	m.phase = PhaseAddress
	return nil
}

// SubmitAddress records the address and moves from Address to Payment.
func (m *Machine) SubmitAddress(a Address) error {
	if m.phase != PhaseAddress {
		return &TransitionError{From: m.phase, Op: "submit address"}
	}
	if !a.Complete() {
		return ErrIncompleteAddress
	}
	m.address = &a
	m.phase = PhasePayment
	return nil
}

// SubmitPayment places the order and moves from Payment to Confirmation. items
// are copied into the order.
func (m *Machine) SubmitPayment(method PaymentMethod, items []cart.Item, total decimal.Decimal) (*Order, error) {
	if m.phase != PhasePayment {
		return nil, &TransitionError{From: m.phase, Op: "submit payment"}
	}
	if _, err := ParsePaymentMethod(string(method)); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	m.order = &Order{
		ID:            m.newID(),
		Items:         cart.Snapshot(items),
		Total:         total,
		Address:       *m.address,
		PaymentMethod: method,
		Status:        StatusConfirmed,
		CreatedAt:     m.now(),
	}
	m.phase = PhaseConfirmation
	return m.order.clone(), nil
}

// Back steps Address → Cart or Payment → Address. The address survives going
// back to Address so the form can be prefilled.
func (m *Machine) Back() error {
	switch m.phase {
	case PhaseAddress:
		m.phase = PhaseCart
	case PhasePayment:
		m.phase = PhaseAddress
	default:
		return &TransitionError{From: m.phase, Op: "go back"}
	}
	return nil
}

// Reset returns to Cart and forgets the address and order.
func (m *Machine) Reset() {
	m.phase = PhaseCart
	m.address = nil
	m.order = nil
}
