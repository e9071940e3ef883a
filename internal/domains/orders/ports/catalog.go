package ports

import (
	"context"
	"errors"

	"github.com/daviag/bookshop-order-service/internal/domains/orders/domain"
)

// ErrBookNotFound means the catalog answered and does not carry the ISBN.
// Transport and availability failures are returned as distinct errors; callers
// must never fold them into a "not found" outcome.
var ErrBookNotFound = errors.New("book not found in catalog")

// BookClient looks up book metadata in the external catalog.
type BookClient interface {
	GetBookByISBN(ctx context.Context, isbn string) (*domain.Book, error)
}
