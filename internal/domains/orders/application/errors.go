package application

import (
	"errors"
	"fmt"

	"github.com/daviag/bookshop-order-service/internal/domains/orders/domain"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid order input")
	// ErrCatalogUnavailable signals the catalog could not be consulted.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidISBN) ||
		errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrNotDispatchable) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}

func mapCatalogError(err error) error {
	return fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
}
