// Package http exposes the order use cases over gin.
package http

import (
	"errors"
	"log/slog"
	nethttp "net/http"

	"github.com/gin-gonic/gin"

	"github.com/daviag/bookshop-order-service/internal/domains/orders/adapters/http/mapper"
	"github.com/daviag/bookshop-order-service/internal/domains/orders/application"
	"github.com/daviag/bookshop-order-service/internal/domains/orders/domain"
	"github.com/daviag/bookshop-order-service/internal/domains/orders/ports"
	"github.com/daviag/bookshop-order-service/internal/shared/auth"
	sharederrors "github.com/daviag/bookshop-order-service/internal/shared/errors"
)

// OrderAPI wires HTTP transport with the orders bounded context service.
type OrderAPI struct {
	service ports.Service
	logger  *slog.Logger
}

// NewOrderAPI creates an OrderAPI backed by the provided service.
func NewOrderAPI(service ports.Service, logger *slog.Logger) OrderAPI {
	if logger == nil {
		logger = slog.Default()
	}
	return OrderAPI{service: service, logger: logger}
}

// Register mounts the order routes behind the given guard middleware.
func (api *OrderAPI) Register(router gin.IRouter, guards ...gin.HandlerFunc) {
	group := router.Group("/orders", guards...)
	group.GET("", api.ListOrders)
	group.POST("", api.SubmitOrder)
}

// Get /orders
// Lists the authenticated caller's orders.
func (api *OrderAPI) ListOrders(c *gin.Context) {
	subject, ok := auth.SubjectFromContext(c)
	if !ok {
		sharederrors.Respond(c, sharederrors.ErrUnauthorized)
		return
	}
	api.logger.Info("fetching all orders", slog.String("user.id", subject))
	orders, err := api.service.ListOrders(c.Request.Context(), subject)
	if err != nil {
		sharederrors.RespondError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, mapper.FromDomainOrderList(orders))
}

// Post /orders
// Submits a purchase request; responds with the persisted order, ACCEPTED or
// REJECTED.
func (api *OrderAPI) SubmitOrder(c *gin.Context) {
	subject, ok := auth.SubjectFromContext(c)
	if !ok {
		sharederrors.Respond(c, sharederrors.ErrUnauthorized)
		return
	}
	var payload mapper.OrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		sharederrors.Respond(c, sharederrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	if fields := validateOrderRequest(payload); len(fields) > 0 {
		sharederrors.ValidationFailed(c, fields)
		return
	}
	api.logger.Info("order submitted",
		slog.String("book.isbn", payload.ISBN), slog.Int("order.quantity", payload.Quantity))
	order, err := api.service.SubmitOrder(c.Request.Context(), subject, payload.ISBN, payload.Quantity)
	if err != nil {
		respondOrderServiceError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, mapper.FromDomainOrder(order))
}

// validateOrderRequest rejects malformed payloads before the admission engine
// is invoked.
func validateOrderRequest(payload mapper.OrderRequest) map[string]string {
	fields := map[string]string{}
	if err := domain.ValidateISBN(payload.ISBN); err != nil {
		fields["isbn"] = err.Error()
	}
	if err := domain.ValidateQuantity(payload.Quantity); err != nil {
		fields["quantity"] = err.Error()
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func respondOrderServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, application.ErrInvalidInput):
		sharederrors.Respond(c, sharederrors.ErrValidation.WithDetail(err.Error()))
	case errors.Is(err, application.ErrCatalogUnavailable):
		sharederrors.Respond(c, sharederrors.ErrUnavailable.WithDetail(err.Error()))
	case errors.Is(err, ports.ErrNotFound):
		sharederrors.Respond(c, sharederrors.ErrNotFound.WithDetail(err.Error()))
	default:
		sharederrors.RespondError(c, err)
	}
}
