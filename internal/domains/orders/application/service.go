package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/daviag/bookshop-order-service/internal/domains/orders/domain"
	"github.com/daviag/bookshop-order-service/internal/domains/orders/ports"
)

// Service orchestrates order admission, querying, and reconciliation.
type Service struct {
	repo      ports.Repository
	books     ports.BookClient
	publisher ports.EventPublisher
	logger    *slog.Logger
}

func NewService(repo ports.Repository, books ports.BookClient, publisher ports.EventPublisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, books: books, publisher: publisher, logger: logger}
}

// SubmitOrder decides whether the request can be fulfilled and persists the
// resulting order. A catalog miss produces a REJECTED order; a catalog
// transport failure fails the whole submission, since a rejection means "the
// book does not exist", not "the catalog could not be reached".
func (s *Service) SubmitOrder(ctx context.Context, userID, isbn string, quantity int) (*domain.Order, error) {
	var order *domain.Order
	book, err := s.books.GetBookByISBN(ctx, isbn)
	switch {
	case err == nil:
		order, err = domain.NewAcceptedOrder(*book, quantity, userID)
	case errors.Is(err, ports.ErrBookNotFound):
		order, err = domain.NewRejectedOrder(isbn, quantity, userID)
	default:
		return nil, mapCatalogError(err)
	}
	if err != nil {
		return nil, mapError(err)
	}

	saved, err := s.repo.Save(ctx, order)
	if err != nil {
		return nil, err
	}
	s.publishOrderAccepted(ctx, saved)
	return saved, nil
}

// ListOrders returns the orders created by the given principal, in
// store-native order.
func (s *Service) ListOrders(ctx context.Context, userID string) ([]*domain.Order, error) {
	return s.repo.FindAllByCreatedBy(ctx, userID)
}

// DispatchOrder applies a fulfillment notification to the referenced order.
// Unknown ids surface ports.ErrNotFound so the consumer can log and drop the
// message. A concurrent write is retried once against a fresh read.
func (s *Service) DispatchOrder(ctx context.Context, message ports.OrderDispatchedMessage) (*domain.Order, error) {
	order, err := s.dispatchOnce(ctx, message.OrderID)
	if errors.Is(err, ports.ErrVersionConflict) {
		order, err = s.dispatchOnce(ctx, message.OrderID)
	}
	return order, err
}

func (s *Service) dispatchOnce(ctx context.Context, orderID int64) (*domain.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == domain.StatusDispatched {
		// Replayed message; the state already holds.
		return order, nil
	}
	dispatched, err := order.Dispatched()
	if err != nil {
		return nil, mapError(err)
	}
	return s.repo.Update(ctx, dispatched)
}

func (s *Service) publishOrderAccepted(ctx context.Context, order *domain.Order) {
	if order.Status != domain.StatusAccepted {
		return
	}
	message := ports.OrderAcceptedMessage{OrderID: order.ID}
	// The admission decision is already durable; a publish failure must not
	// roll it back or fail the caller.
	if err := s.publisher.PublishOrderAccepted(ctx, message); err != nil {
		s.logger.Error("failed to publish order accepted event",
			slog.Int64("order.id", order.ID), slog.String("error", err.Error()))
		return
	}
	s.logger.Info("order accepted event published", slog.Int64("order.id", order.ID))
}

var _ ports.Service = (*Service)(nil)
