package ports

import (
	"context"

	"github.com/daviag/bookshop-order-service/internal/domains/orders/domain"
)

// Service exposes the order bounded context use cases to adapters.
type Service interface {
	// SubmitOrder admits a purchase request: an ACCEPTED order when the
	// catalog carries the ISBN, a REJECTED one when it does not. A catalog
	// availability failure fails the submission without creating an order.
	SubmitOrder(ctx context.Context, userID, isbn string, quantity int) (*domain.Order, error)
	// ListOrders returns the orders owned by the given principal.
	ListOrders(ctx context.Context, userID string) ([]*domain.Order, error)
	// DispatchOrder transitions the referenced order to DISPATCHED.
	// Replays of the same message are idempotent.
	DispatchOrder(ctx context.Context, message OrderDispatchedMessage) (*domain.Order, error)
}
