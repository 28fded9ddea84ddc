package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"fieldline/internal/database/models"
	"fieldline/internal/domain"
	"fieldline/internal/middleware"
	"fieldline/internal/services/receiving"
)

type ReceivingHandler struct {
	svc    *receiving.Tracker
	logger zerolog.Logger
}

func NewReceivingHandler(svc *receiving.Tracker, logger zerolog.Logger) *ReceivingHandler {
	return &ReceivingHandler{
		svc:    svc,
		logger: logger.With().Str("handler", "receiving").Logger(),
	}
}

type poLineRequest struct {
	ProductID  int64 `json:"productId" binding:"required"`
	QtyOrdered int   `json:"qtyOrdered" binding:"required"`
}

type createPORequest struct {
	PONumber     string          `json:"poNumber" binding:"required"`
	SupplierName string          `json:"supplierName" binding:"required"`
	Notes        *string         `json:"notes"`
	Lines        []poLineRequest `json:"lines" binding:"required,min=1"`
}

type updateLinesRequest struct {
	Lines []poLineRequest `json:"lines" binding:"required,min=1"`
}

type scanRequest struct {
	Barcode  string `json:"barcode" binding:"required"`
	Quantity int    `json:"quantity" binding:"required"`
}

type scanResponse struct {
	ProductName    string          `json:"productName"`
	QtyReceived    int             `json:"qtyReceived"`
	QtyOrdered     int             `json:"qtyOrdered"`
	IsOverReceived bool            `json:"isOverReceived"`
	POStatus       models.POStatus `json:"poStatus"`
}

func toLineInputs(reqs []poLineRequest) []receiving.LineInput {
	lines := make([]receiving.LineInput, len(reqs))
	for i, r := range reqs {
		lines[i] = receiving.LineInput{ProductID: r.ProductID, QtyOrdered: r.QtyOrdered}
	}
	return lines
}

func (h *ReceivingHandler) Create(c *gin.Context) {
	var req createPORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, domain.CodeValidationError, err.Error())
		return
	}
	po, err := h.svc.Create(c.Request.Context(), middleware.TenantID(c),
		req.PONumber, req.SupplierName, req.Notes, toLineInputs(req.Lines))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, po)
}

func (h *ReceivingHandler) Scan(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, domain.CodeValidationError, err.Error())
		return
	}
	result, err := h.svc.Scan(c.Request.Context(), middleware.TenantID(c), id, req.Barcode, req.Quantity)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, scanResponse{
		ProductName:    result.ProductName,
		QtyReceived:    result.QtyReceived,
		QtyOrdered:     result.QtyOrdered,
		IsOverReceived: result.IsOverReceived,
		POStatus:       result.POStatus,
	})
}

func (h *ReceivingHandler) UpdateLines(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req updateLinesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, domain.CodeValidationError, err.Error())
		return
	}
	po, err := h.svc.UpdateLines(c.Request.Context(), middleware.TenantID(c), id, toLineInputs(req.Lines))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, po)
}

func (h *ReceivingHandler) MarkOrdered(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	po, err := h.svc.MarkOrdered(c.Request.Context(), middleware.TenantID(c), id)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, po)
}

func (h *ReceivingHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	po, err := h.svc.Get(c.Request.Context(), middleware.TenantID(c), id)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, po)
}

func (h *ReceivingHandler) List(c *gin.Context) {
	filter := receiving.Filter{
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "pageSize", 20),
	}
	if v := c.Query("status"); v != "" {
		status := models.POStatus(v)
		filter.Status = &status
	}
	pos, total, err := h.svc.List(c.Request.Context(), middleware.TenantID(c), filter)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondList(c, pos, total, filter.Page, filter.PageSize)
}
