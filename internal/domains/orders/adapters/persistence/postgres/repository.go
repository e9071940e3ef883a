package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/daviag/bookshop-order-service/internal/domains/orders/domain"
	"github.com/daviag/bookshop-order-service/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists orders in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type orderRecord struct {
	ID             int64     `gorm:"primaryKey;column:id"`
	BookISBN       string    `gorm:"column:book_isbn;type:varchar(13)"`
	BookName       *string   `gorm:"column:book_name"`
	BookPrice      *float64  `gorm:"column:book_price"`
	Quantity       int       `gorm:"column:quantity"`
	Status         string    `gorm:"column:status;type:varchar(32);index"`
	CreatedAt      time.Time `gorm:"column:created_date"`
	LastModifiedAt time.Time `gorm:"column:last_modified_date"`
	CreatedBy      string    `gorm:"column:created_by;index"`
	LastModifiedBy string    `gorm:"column:last_modified_by"`
	Version        int64     `gorm:"column:version"`
}

func (orderRecord) TableName() string { return "orders" }

// Save inserts a new order, assigning id, audit timestamps, and version 1.
func (r *Repository) Save(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	record := toRecord(order)
	now := time.Now()
	record.ID = 0
	record.CreatedAt = now
	record.LastModifiedAt = now
	record.LastModifiedBy = record.CreatedBy
	record.Version = 1
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}
	return record.toDomain(), nil
}

// Update applies a version-checked write. The WHERE clause compares the
// caller's version against the stored row; zero rows affected means either the
// order vanished or the version is stale.
func (r *Repository) Update(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&orderRecord{}).
		Where("id = ? AND version = ?", order.ID, order.Version).
		Updates(map[string]any{
			"status":             string(order.Status),
			"last_modified_date": now,
			"last_modified_by":   order.LastModifiedBy,
			"version":            order.Version + 1,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, order.ID); errors.Is(err, ports.ErrNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, ports.ErrVersionConflict
	}
	return r.FindByID(ctx, order.ID)
}

// FindByID fetches a single order.
func (r *Repository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// FindAllByCreatedBy lists the orders owned by a principal.
func (r *Repository) FindAllByCreatedBy(ctx context.Context, createdBy string) ([]*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []orderRecord
	if err := r.db.WithContext(ctx).Find(&records, "created_by = ?", createdBy).Error; err != nil {
		return nil, err
	}
	orders := make([]*domain.Order, 0, len(records))
	for i := range records {
		orders = append(orders, records[i].toDomain())
	}
	return orders, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func toRecord(order *domain.Order) orderRecord {
	return orderRecord{
		ID:             order.ID,
		BookISBN:       order.BookISBN,
		BookName:       order.BookName,
		BookPrice:      order.BookPrice,
		Quantity:       order.Quantity,
		Status:         string(order.Status),
		CreatedAt:      order.CreatedAt,
		LastModifiedAt: order.LastModifiedAt,
		CreatedBy:      order.CreatedBy,
		LastModifiedBy: order.LastModifiedBy,
		Version:        order.Version,
	}
}

func (r orderRecord) toDomain() *domain.Order {
	return &domain.Order{
		ID:             r.ID,
		BookISBN:       r.BookISBN,
		BookName:       r.BookName,
		BookPrice:      r.BookPrice,
		Quantity:       r.Quantity,
		Status:         domain.Status(r.Status),
		CreatedAt:      r.CreatedAt,
		LastModifiedAt: r.LastModifiedAt,
		CreatedBy:      r.CreatedBy,
		LastModifiedBy: r.LastModifiedBy,
		Version:        r.Version,
	}
}
