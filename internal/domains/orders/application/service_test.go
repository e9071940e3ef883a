package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daviag/bookshop-order-service/internal/domains/orders/domain"
	"github.com/daviag/bookshop-order-service/internal/domains/orders/ports"
)

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[int64]*domain.Order
	nextID int64
	// conflictsLeft makes the next N updates fail with ErrVersionConflict.
	conflictsLeft int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[int64]*domain.Order{}}
}

func (f *fakeOrderRepo) Save(_ context.Context, order *domain.Order) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *order
	f.nextID++
	clone.ID = f.nextID
	clone.CreatedAt = time.Now()
	clone.LastModifiedAt = clone.CreatedAt
	clone.Version = 1
	f.orders[clone.ID] = &clone
	stored := clone
	return &stored, nil
}

func (f *fakeOrderRepo) Update(_ context.Context, order *domain.Order) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.orders[order.ID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	if f.conflictsLeft > 0 {
		f.conflictsLeft--
		existing.Version++
		return nil, ports.ErrVersionConflict
	}
	if existing.Version != order.Version {
		return nil, ports.ErrVersionConflict
	}
	clone := *order
	clone.Version++
	f.orders[clone.ID] = &clone
	stored := clone
	return &stored, nil
}

func (f *fakeOrderRepo) FindByID(_ context.Context, id int64) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o, ok := f.orders[id]; ok {
		clone := *o
		return &clone, nil
	}
	return nil, ports.ErrNotFound
}

func (f *fakeOrderRepo) FindAllByCreatedBy(_ context.Context, createdBy string) ([]*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var list []*domain.Order
	for _, o := range f.orders {
		if o.CreatedBy == createdBy {
			clone := *o
			list = append(list, &clone)
		}
	}
	return list, nil
}

type fakeBookClient struct {
	books map[string]domain.Book
	err   error
}

func (f *fakeBookClient) GetBookByISBN(_ context.Context, isbn string) (*domain.Book, error) {
	if f.err != nil {
		return nil, f.err
	}
	if book, ok := f.books[isbn]; ok {
		return &book, nil
	}
	return nil, ports.ErrBookNotFound
}

type fakePublisher struct {
	mu        sync.Mutex
	published []ports.OrderAcceptedMessage
	err       error
}

func (f *fakePublisher) PublishOrderAccepted(_ context.Context, message ports.OrderAcceptedMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, message)
	return nil
}

func newTestService(repo *fakeOrderRepo, books *fakeBookClient, publisher *fakePublisher) *Service {
	return NewService(repo, books, publisher, nil)
}

func TestSubmitOrder_BookInCatalogIsAccepted(t *testing.T) {
	repo := newFakeOrderRepo()
	books := &fakeBookClient{books: map[string]domain.Book{
		"1234567893": {ISBN: "1234567893", Title: "Title", Author: "Author", Price: 9.90},
	}}
	publisher := &fakePublisher{}
	svc := newTestService(repo, books, publisher)

	order, err := svc.SubmitOrder(context.Background(), "alice", "1234567893", 1)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, order.Status)
	require.NotNil(t, order.BookPrice)
	assert.Equal(t, 9.90, *order.BookPrice)
	assert.NotZero(t, order.ID)
}

func TestSubmitOrder_EnrichesFromCatalog(t *testing.T) {
	repo := newFakeOrderRepo()
	books := &fakeBookClient{books: map[string]domain.Book{
		"1234567899": {ISBN: "1234567899", Title: "Title", Author: "Author", Price: 9.90},
	}}
	publisher := &fakePublisher{}
	svc := newTestService(repo, books, publisher)

	order, err := svc.SubmitOrder(context.Background(), "alice", "1234567899", 3)
	require.NoError(t, err)
	require.NotNil(t, order.BookName)
	assert.Equal(t, "Title - Author", *order.BookName)
	assert.Equal(t, "1234567899", order.BookISBN)
	assert.Equal(t, 3, order.Quantity)
	assert.Equal(t, domain.StatusAccepted, order.Status)
}

func TestSubmitOrder_BookNotInCatalogIsRejected(t *testing.T) {
	repo := newFakeOrderRepo()
	books := &fakeBookClient{books: map[string]domain.Book{}}
	publisher := &fakePublisher{}
	svc := newTestService(repo, books, publisher)

	order, err := svc.SubmitOrder(context.Background(), "alice", "1234567894", 3)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, order.Status)
	assert.Equal(t, "1234567894", order.BookISBN)
	assert.Equal(t, 3, order.Quantity)
	assert.Nil(t, order.BookName)
	assert.Nil(t, order.BookPrice)
	assert.Empty(t, publisher.published, "rejected orders must not publish events")
}

func TestSubmitOrder_CatalogUnavailableFailsSubmission(t *testing.T) {
	repo := newFakeOrderRepo()
	books := &fakeBookClient{err: errors.New("connection refused")}
	publisher := &fakePublisher{}
	svc := newTestService(repo, books, publisher)

	_, err := svc.SubmitOrder(context.Background(), "alice", "1234567894", 3)
	require.ErrorIs(t, err, ErrCatalogUnavailable)
	assert.Empty(t, repo.orders, "no order may be recorded when the catalog cannot be checked")
	assert.Empty(t, publisher.published)
}

func TestSubmitOrder_PublishesAcceptedEvent(t *testing.T) {
	repo := newFakeOrderRepo()
	books := &fakeBookClient{books: map[string]domain.Book{
		"1234567890": {ISBN: "1234567890", Title: "T", Author: "A", Price: 1},
	}}
	publisher := &fakePublisher{}
	svc := newTestService(repo, books, publisher)

	order, err := svc.SubmitOrder(context.Background(), "alice", "1234567890", 1)
	require.NoError(t, err)
	require.Len(t, publisher.published, 1)
	assert.Equal(t, order.ID, publisher.published[0].OrderID)
}

func TestSubmitOrder_PublishFailureDoesNotFailCaller(t *testing.T) {
	repo := newFakeOrderRepo()
	books := &fakeBookClient{books: map[string]domain.Book{
		"1234567890": {ISBN: "1234567890", Title: "T", Author: "A", Price: 1},
	}}
	publisher := &fakePublisher{err: errors.New("broker down")}
	svc := newTestService(repo, books, publisher)

	order, err := svc.SubmitOrder(context.Background(), "alice", "1234567890", 1)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, order.Status)
	// the admission is durable even though the event was lost
	stored, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, stored.Status)
}

func TestListOrders_OwnershipIsolation(t *testing.T) {
	repo := newFakeOrderRepo()
	books := &fakeBookClient{books: map[string]domain.Book{
		"1234567890": {ISBN: "1234567890", Title: "T", Author: "A", Price: 1},
	}}
	publisher := &fakePublisher{}
	svc := newTestService(repo, books, publisher)

	_, err := svc.SubmitOrder(context.Background(), "alice", "1234567890", 1)
	require.NoError(t, err)
	_, err = svc.SubmitOrder(context.Background(), "bob", "1234567890", 2)
	require.NoError(t, err)

	orders, err := svc.ListOrders(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	for _, order := range orders {
		assert.Equal(t, "alice", order.CreatedBy)
	}
}

func TestDispatchOrder_TransitionsAcceptedOrder(t *testing.T) {
	repo := newFakeOrderRepo()
	books := &fakeBookClient{books: map[string]domain.Book{
		"1234567899": {ISBN: "1234567899", Title: "Title", Author: "Author", Price: 9.90},
	}}
	publisher := &fakePublisher{}
	svc := newTestService(repo, books, publisher)

	submitted, err := svc.SubmitOrder(context.Background(), "alice", "1234567899", 3)
	require.NoError(t, err)

	dispatched, err := svc.DispatchOrder(context.Background(), ports.OrderDispatchedMessage{OrderID: submitted.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDispatched, dispatched.Status)

	// redelivery leaves the order dispatched
	again, err := svc.DispatchOrder(context.Background(), ports.OrderDispatchedMessage{OrderID: submitted.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDispatched, again.Status)

	stored, err := repo.FindByID(context.Background(), submitted.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDispatched, stored.Status)
}

func TestDispatchOrder_UnknownOrderIsDropped(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := newTestService(repo, &fakeBookClient{}, &fakePublisher{})

	_, err := svc.DispatchOrder(context.Background(), ports.OrderDispatchedMessage{OrderID: 404})
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestDispatchOrder_RetriesOnVersionConflict(t *testing.T) {
	repo := newFakeOrderRepo()
	books := &fakeBookClient{books: map[string]domain.Book{
		"1234567890": {ISBN: "1234567890", Title: "T", Author: "A", Price: 1},
	}}
	svc := newTestService(repo, books, &fakePublisher{})

	submitted, err := svc.SubmitOrder(context.Background(), "alice", "1234567890", 1)
	require.NoError(t, err)

	repo.conflictsLeft = 1
	dispatched, err := svc.DispatchOrder(context.Background(), ports.OrderDispatchedMessage{OrderID: submitted.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDispatched, dispatched.Status)
}

func TestDispatchOrder_RejectedOrderNeverDispatches(t *testing.T) {
	repo := newFakeOrderRepo()
	books := &fakeBookClient{books: map[string]domain.Book{}}
	svc := newTestService(repo, books, &fakePublisher{})

	rejected, err := svc.SubmitOrder(context.Background(), "alice", "1234567894", 1)
	require.NoError(t, err)

	_, err = svc.DispatchOrder(context.Background(), ports.OrderDispatchedMessage{OrderID: rejected.ID})
	require.ErrorIs(t, err, ErrInvalidInput)

	stored, err := repo.FindByID(context.Background(), rejected.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, stored.Status)
}
