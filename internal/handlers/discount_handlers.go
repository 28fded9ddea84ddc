package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"fieldline/internal/domain"
	"fieldline/internal/middleware"
	"fieldline/internal/services/pricing"
)

type DiscountHandler struct {
	evaluator *pricing.Evaluator
	logger    zerolog.Logger
}

func NewDiscountHandler(evaluator *pricing.Evaluator, logger zerolog.Logger) *DiscountHandler {
	return &DiscountHandler{
		evaluator: evaluator,
		logger:    logger.With().Str("handler", "discounts").Logger(),
	}
}

type cartRequest struct {
	Items []orderItemRequest `json:"items" binding:"required,min=1"`
}

type validateRequest struct {
	Code  string             `json:"code" binding:"required"`
	Items []orderItemRequest `json:"items" binding:"required,min=1"`
}

type applicationResponse struct {
	DiscountID     int64  `json:"discountId"`
	Code           string `json:"code"`
	Name           string `json:"name"`
	Type           string `json:"type"`
	DiscountAmount string `json:"discountAmount"`
	NewTotal       string `json:"newTotal"`
}

type previewResponse struct {
	Subtotal string               `json:"subtotal"`
	Discount *applicationResponse `json:"discount"`
	Total    string               `json:"total"`
}

func toApplicationResponse(app *pricing.Application) *applicationResponse {
	if app == nil {
		return nil
	}
	return &applicationResponse{
		DiscountID:     app.DiscountID,
		Code:           app.Code,
		Name:           app.Name,
		Type:           string(app.Type),
		DiscountAmount: app.DiscountAmount.StringFixed(2),
		NewTotal:       app.NewTotal.StringFixed(2),
	}
}

// Preview evaluates the best auto-applicable discount for a cart
// without touching any order state.
func (h *DiscountHandler) Preview(c *gin.Context) {
	var req cartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, domain.CodeValidationError, err.Error())
		return
	}

	lines, err := h.buildLines(c, req.Items)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	app, err := h.evaluator.PreviewAutoDiscount(c.Request.Context(), middleware.TenantID(c), lines)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	subtotal := pricing.Subtotal(lines)
	total := subtotal
	if app != nil {
		total = app.NewTotal
	}
	if total.LessThan(decimal.Zero) {
		total = decimal.Zero
	}

	respondOK(c, http.StatusOK, previewResponse{
		Subtotal: subtotal.StringFixed(2),
		Discount: toApplicationResponse(app),
		Total:    total.StringFixed(2),
	})
}

func (h *DiscountHandler) Validate(c *gin.Context) {
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, domain.CodeValidationError, err.Error())
		return
	}

	lines, err := h.buildLines(c, req.Items)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	app, err := h.evaluator.ValidateManualCode(c.Request.Context(), middleware.TenantID(c), req.Code, lines)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	respondOK(c, http.StatusOK, toApplicationResponse(app))
}

func (h *DiscountHandler) buildLines(c *gin.Context, items []orderItemRequest) ([]pricing.CartLine, error) {
	refs := make([]pricing.ItemRef, len(items))
	for i, it := range items {
		if it.Quantity < 1 {
			return nil, domain.NewError(domain.CodeValidationError, "quantity must be at least 1")
		}
		refs[i] = pricing.ItemRef{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	return h.evaluator.BuildLines(c.Request.Context(), middleware.TenantID(c), refs)
}
