package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"fieldline/internal/database/models"
	"fieldline/internal/domain"
	"fieldline/internal/middleware"
)

// CatalogRepository is the slice of the product store the catalog
// endpoints need.
type CatalogRepository interface {
	ProductByID(ctx context.Context, tenantID, id int64) (*models.Product, error)
	Products(ctx context.Context, tenantID int64, search string, page, pageSize int) ([]models.Product, int64, error)
}

type CatalogHandler struct {
	repo   CatalogRepository
	logger zerolog.Logger
}

func NewCatalogHandler(repo CatalogRepository, logger zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		repo:   repo,
		logger: logger.With().Str("handler", "catalog").Logger(),
	}
}

func (h *CatalogHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	product, err := h.repo.ProductByID(c.Request.Context(), middleware.TenantID(c), id)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	if product == nil {
		respondError(c, http.StatusNotFound, domain.CodeProductNotFound, "product not found")
		return
	}
	respondOK(c, http.StatusOK, product)
}

func (h *CatalogHandler) List(c *gin.Context) {
	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "pageSize", 20)
	products, total, err := h.repo.Products(c.Request.Context(), middleware.TenantID(c),
		c.Query("search"), page, pageSize)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondList(c, products, total, page, pageSize)
}
