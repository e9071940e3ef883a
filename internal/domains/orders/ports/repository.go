package ports

import (
	"context"
	"errors"

	"github.com/daviag/bookshop-order-service/internal/domains/orders/domain"
)

var (
	ErrNotFound = errors.New("order not found")
	// ErrVersionConflict signals a write carried a stale version counter.
	ErrVersionConflict = errors.New("order was modified concurrently")
)

// Repository persists orders with optimistic concurrency control. Save assigns
// id, audit timestamps, and the initial version; Update compares the incoming
// version against the stored one and fails with ErrVersionConflict on a stale
// write instead of overwriting.
type Repository interface {
	Save(ctx context.Context, order *domain.Order) (*domain.Order, error)
	Update(ctx context.Context, order *domain.Order) (*domain.Order, error)
	FindByID(ctx context.Context, id int64) (*domain.Order, error)
	FindAllByCreatedBy(ctx context.Context, createdBy string) ([]*domain.Order, error)
}
