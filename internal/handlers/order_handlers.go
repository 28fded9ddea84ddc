package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"fieldline/internal/database/models"
	"fieldline/internal/domain"
	"fieldline/internal/middleware"
	"fieldline/internal/services/checkout"
	"fieldline/internal/services/pricing"
)

type OrderHandler struct {
	svc    *checkout.Service
	logger zerolog.Logger
}

func NewOrderHandler(svc *checkout.Service, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		svc:    svc,
		logger: logger.With().Str("handler", "orders").Logger(),
	}
}

type orderItemRequest struct {
	ProductID int64 `json:"productId" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required"`
}

type checkoutRequest struct {
	CustomerID      int64              `json:"customerId" binding:"required"`
	Items           []orderItemRequest `json:"items"`
	DeliveryAddress string             `json:"deliveryAddress"`
	Notes           *string            `json:"notes"`
	DiscountID      *int64             `json:"discountId"`
}

type checkoutResponse struct {
	OrderID     int64  `json:"orderId"`
	OrderNumber string `json:"orderNumber"`
	TotalAmount string `json:"totalAmount"`
	ItemCount   int    `json:"itemCount"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *OrderHandler) Checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, domain.CodeValidationError, err.Error())
		return
	}

	items := make([]pricing.ItemRef, len(req.Items))
	for i, it := range req.Items {
		items[i] = pricing.ItemRef{ProductID: it.ProductID, Quantity: it.Quantity}
	}

	summary, err := h.svc.Checkout(c.Request.Context(), middleware.TenantID(c), checkout.CheckoutInput{
		CustomerID:      req.CustomerID,
		Items:           items,
		DeliveryAddress: req.DeliveryAddress,
		Notes:           req.Notes,
		DiscountID:      req.DiscountID,
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, checkoutResponse{
		OrderID:     summary.OrderID,
		OrderNumber: summary.OrderNumber,
		TotalAmount: summary.TotalAmount.StringFixed(2),
		ItemCount:   summary.ItemCount,
	})
}

func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Cancel(c.Request.Context(), middleware.TenantID(c), id); err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"orderId": id, "status": models.OrderCancelled})
}

func (h *OrderHandler) Reorder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	summary, err := h.svc.Reorder(c.Request.Context(), middleware.TenantID(c), id)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, checkoutResponse{
		OrderID:     summary.OrderID,
		OrderNumber: summary.OrderNumber,
		TotalAmount: summary.TotalAmount.StringFixed(2),
		ItemCount:   summary.ItemCount,
	})
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, domain.CodeValidationError, err.Error())
		return
	}
	if err := h.svc.UpdateStatus(c.Request.Context(), middleware.TenantID(c), id, models.OrderStatus(req.Status)); err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"orderId": id, "status": req.Status})
}

func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := h.svc.Get(c.Request.Context(), middleware.TenantID(c), id)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, order)
}

func (h *OrderHandler) List(c *gin.Context) {
	filter := checkout.OrderFilter{
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "pageSize", 20),
	}
	if v := c.Query("customerId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			respondError(c, http.StatusBadRequest, domain.CodeValidationError, "invalid customerId")
			return
		}
		filter.CustomerID = &id
	}
	if v := c.Query("status"); v != "" {
		status := models.OrderStatus(v)
		if !models.ValidOrderStatus(status) {
			respondError(c, http.StatusBadRequest, domain.CodeValidationError, "invalid status filter")
			return
		}
		filter.Status = &status
	}

	orders, total, err := h.svc.List(c.Request.Context(), middleware.TenantID(c), filter)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondList(c, orders, total, filter.Page, filter.PageSize)
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		respondError(c, http.StatusBadRequest, domain.CodeValidationError, "invalid "+name)
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, def int) int {
	v := c.Query(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return def
	}
	return n
}
