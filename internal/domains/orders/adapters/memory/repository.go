package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/daviag/bookshop-order-service/internal/domains/orders/domain"
	"github.com/daviag/bookshop-order-service/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory order persistence adapter. It enforces the same
// version-checked writes as the Postgres adapter so the admission and
// reconciliation paths behave identically against either.
type Repository struct {
	mu     sync.RWMutex
	orders map[int64]*domain.Order
	nextID int64
}

func NewRepository() *Repository {
	return &Repository{orders: map[int64]*domain.Order{}}
}

func (r *Repository) Save(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	clone := *order
	now := time.Now()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	clone.ID = r.nextID
	clone.CreatedAt = now
	clone.LastModifiedAt = now
	clone.LastModifiedBy = clone.CreatedBy
	clone.Version = 1
	r.orders[clone.ID] = &clone
	stored := clone
	return &stored, nil
}

func (r *Repository) Update(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.orders[order.ID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	if existing.Version != order.Version {
		return nil, ports.ErrVersionConflict
	}
	clone := *order
	clone.Version++
	clone.LastModifiedAt = time.Now()
	r.orders[clone.ID] = &clone
	stored := clone
	return &stored, nil
}

func (r *Repository) FindByID(_ context.Context, id int64) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := *order
	return &clone, nil
}

func (r *Repository) FindAllByCreatedBy(_ context.Context, createdBy string) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Order, 0)
	for _, order := range r.orders {
		if order.CreatedBy != createdBy {
			continue
		}
		clone := *order
		list = append(list, &clone)
	}
	return list, nil
}
