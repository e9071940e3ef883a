package domain

import (
	"errors"
	"fmt"
	"time"
)

// Status enumerates order lifecycle states.
type Status string

const (
	StatusAccepted   Status = "ACCEPTED"
	StatusRejected   Status = "REJECTED"
	StatusDispatched Status = "DISPATCHED"
)

// MaxQuantity bounds the number of copies a single order may request.
const MaxQuantity = 9999

var (
	ErrInvalidISBN     = errors.New("isbn must be 10 or 13 digits")
	ErrInvalidQuantity = fmt.Errorf("quantity must be between 1 and %d", MaxQuantity)
	ErrNotDispatchable = errors.New("only accepted orders can be dispatched")
)

// Book is the catalog view of a title. It is never persisted here; it only
// enriches an Order at creation time.
type Book struct {
	ISBN   string
	Title  string
	Author string
	Price  float64
}

// Order models a purchase order for copies of a single book. BookName and
// BookPrice are nil exactly when the order is rejected. The repository assigns
// ID, audit timestamps, and Version on first save.
type Order struct {
	ID             int64
	BookISBN       string
	BookName       *string
	BookPrice      *float64
	Quantity       int
	Status         Status
	CreatedAt      time.Time
	LastModifiedAt time.Time
	CreatedBy      string
	LastModifiedBy string
	Version        int64
}

// NewAcceptedOrder builds an order for a book found in the catalog. The
// display name is derived as "<title> - <author>".
func NewAcceptedOrder(book Book, quantity int, createdBy string) (*Order, error) {
	if err := ValidateISBN(book.ISBN); err != nil {
		return nil, err
	}
	if err := ValidateQuantity(quantity); err != nil {
		return nil, err
	}
	name := book.Title + " - " + book.Author
	price := book.Price
	return &Order{
		BookISBN:  book.ISBN,
		BookName:  &name,
		BookPrice: &price,
		Quantity:  quantity,
		Status:    StatusAccepted,
		CreatedBy: createdBy,
	}, nil
}

// NewRejectedOrder builds an order for a book the catalog does not carry.
// Name and price stay absent; their absence is what marks the rejection.
func NewRejectedOrder(isbn string, quantity int, createdBy string) (*Order, error) {
	if err := ValidateISBN(isbn); err != nil {
		return nil, err
	}
	if err := ValidateQuantity(quantity); err != nil {
		return nil, err
	}
	return &Order{
		BookISBN:  isbn,
		Quantity:  quantity,
		Status:    StatusRejected,
		CreatedBy: createdBy,
	}, nil
}

// Dispatched returns a copy of the order transitioned to DISPATCHED.
// Dispatching an already-dispatched order is a no-op copy, so replayed
// fulfillment events cannot regress the state. Rejected orders are terminal.
func (o *Order) Dispatched() (*Order, error) {
	clone := *o
	switch o.Status {
	case StatusAccepted:
		clone.Status = StatusDispatched
		return &clone, nil
	case StatusDispatched:
		return &clone, nil
	default:
		return nil, ErrNotDispatchable
	}
}

// Rejected reports whether the order carries no catalog enrichment.
func (o *Order) Rejected() bool {
	return o.Status == StatusRejected
}

// ValidateISBN accepts the 10- and 13-digit forms used as catalog keys.
func ValidateISBN(isbn string) error {
	if len(isbn) != 10 && len(isbn) != 13 {
		return ErrInvalidISBN
	}
	for _, r := range isbn {
		if r < '0' || r > '9' {
			return ErrInvalidISBN
		}
	}
	return nil
}

// ValidateQuantity enforces the 1..MaxQuantity bound.
func ValidateQuantity(quantity int) error {
	if quantity < 1 || quantity > MaxQuantity {
		return ErrInvalidQuantity
	}
	return nil
}
