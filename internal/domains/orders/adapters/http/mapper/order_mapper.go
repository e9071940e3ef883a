package mapper

import (
	"time"

	ordersdomain "github.com/daviag/bookshop-order-service/internal/domains/orders/domain"
)

// Order is the transport-layer shape of a persisted order.
type Order struct {
	ID               int64     `json:"id"`
	BookISBN         string    `json:"bookIsbn"`
	BookName         *string   `json:"bookName"`
	BookPrice        *float64  `json:"bookPrice"`
	Quantity         int       `json:"quantity"`
	Status           string    `json:"status"`
	CreatedDate      time.Time `json:"createdDate"`
	LastModifiedDate time.Time `json:"lastModifiedDate"`
	CreatedBy        string    `json:"createdBy"`
	LastModifiedBy   string    `json:"lastModifiedBy"`
	Version          int64     `json:"version"`
}

// OrderRequest is the POST /orders payload.
type OrderRequest struct {
	ISBN     string `json:"isbn" binding:"required"`
	Quantity int    `json:"quantity" binding:"required"`
}

// FromDomainOrder converts a domain order to the transport representation.
func FromDomainOrder(order *ordersdomain.Order) Order {
	if order == nil {
		return Order{}
	}
	return Order{
		ID:               order.ID,
		BookISBN:         order.BookISBN,
		BookName:         order.BookName,
		BookPrice:        order.BookPrice,
		Quantity:         order.Quantity,
		Status:           string(order.Status),
		CreatedDate:      order.CreatedAt,
		LastModifiedDate: order.LastModifiedAt,
		CreatedBy:        order.CreatedBy,
		LastModifiedBy:   order.LastModifiedBy,
		Version:          order.Version,
	}
}

// FromDomainOrderList converts a list of domain orders.
func FromDomainOrderList(orders []*ordersdomain.Order) []Order {
	list := make([]Order, 0, len(orders))
	for _, order := range orders {
		list = append(list, FromDomainOrder(order))
	}
	return list
}
