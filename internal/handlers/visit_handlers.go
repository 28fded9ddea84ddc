package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"fieldline/internal/database/models"
	"fieldline/internal/domain"
	"fieldline/internal/middleware"
	"fieldline/internal/services/visits"
)

type VisitHandler struct {
	svc    *visits.Lifecycle
	logger zerolog.Logger
}

func NewVisitHandler(svc *visits.Lifecycle, logger zerolog.Logger) *VisitHandler {
	return &VisitHandler{
		svc:    svc,
		logger: logger.With().Str("handler", "visits").Logger(),
	}
}

type createVisitRequest struct {
	CustomerID   int64    `json:"customerId" binding:"required"`
	Mode         string   `json:"mode" binding:"required"`
	PlannedDate  *string  `json:"plannedDate"`
	PlannedTime  *string  `json:"plannedTime"`
	Outcome      *string  `json:"outcome"`
	OutcomeNotes *string  `json:"outcomeNotes"`
	Photos       []string `json:"photos"`
	Lat          *float64 `json:"lat"`
	Lon          *float64 `json:"lon"`
}

type startVisitRequest struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

type completeVisitRequest struct {
	Outcome      string   `json:"outcome" binding:"required"`
	OutcomeNotes *string  `json:"outcomeNotes"`
	Photos       []string `json:"photos"`
	Lat          *float64 `json:"lat"`
	Lon          *float64 `json:"lon"`
}

func (h *VisitHandler) Create(c *gin.Context) {
	var req createVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, domain.CodeValidationError, err.Error())
		return
	}

	// plannedDate goes through as a raw string; the service parses it
	// after the enum and presence checks so error precedence holds.
	in := visits.CreateInput{
		CustomerID:   req.CustomerID,
		Mode:         req.Mode,
		PlannedDate:  req.PlannedDate,
		PlannedTime:  req.PlannedTime,
		OutcomeNotes: req.OutcomeNotes,
		Photos:       req.Photos,
		Lat:          req.Lat,
		Lon:          req.Lon,
	}
	if req.Outcome != nil {
		o := models.VisitOutcome(*req.Outcome)
		in.Outcome = &o
	}

	visit, err := h.svc.Create(c.Request.Context(), middleware.TenantID(c), middleware.UserID(c), in)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, visit)
}

func (h *VisitHandler) Start(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	// Coordinates are optional; an empty body means none were captured.
	var req startVisitRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, domain.CodeValidationError, err.Error())
			return
		}
	}
	visit, err := h.svc.Start(c.Request.Context(), middleware.TenantID(c), id, req.Lat, req.Lon)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, visit)
}

func (h *VisitHandler) Complete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req completeVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, domain.CodeValidationError, err.Error())
		return
	}
	visit, err := h.svc.Complete(c.Request.Context(), middleware.TenantID(c), id,
		models.VisitOutcome(req.Outcome), req.OutcomeNotes, req.Photos, req.Lat, req.Lon)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, visit)
}

func (h *VisitHandler) Cancel(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	visit, err := h.svc.Cancel(c.Request.Context(), middleware.TenantID(c), id)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, visit)
}

func (h *VisitHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	visit, err := h.svc.Get(c.Request.Context(), middleware.TenantID(c), id)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, http.StatusOK, visit)
}

func (h *VisitHandler) List(c *gin.Context) {
	filter := visits.Filter{
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "pageSize", 20),
	}
	if v := c.Query("salesRepId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			respondError(c, http.StatusBadRequest, domain.CodeValidationError, "invalid salesRepId")
			return
		}
		filter.SalesRepID = &id
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
		status := models.VisitStatus(v)
		filter.Status = &status
	}
	if v := c.Query("date"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			respondError(c, http.StatusBadRequest, domain.CodeInvalidDate, "date must be YYYY-MM-DD")
			return
		}
		filter.Date = &d
	}

	rows, total, err := h.svc.List(c.Request.Context(), middleware.TenantID(c), filter)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondList(c, rows, total, filter.Page, filter.PageSize)
}
