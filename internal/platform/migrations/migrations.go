// Package migrations applies the order service database schema.
package migrations

import (
	"time"

	"gorm.io/gorm"
)

// Run applies the schema for the orders bounded context. Kept separate from
// the repository adapter so cmd/migrate can run it standalone.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(&orderRecord{})
}

// Order schema mirrors the orders Postgres adapter.
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
