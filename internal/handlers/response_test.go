package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fieldline/internal/database/models"
	"fieldline/internal/domain"
	"fieldline/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockCatalogRepo struct {
	mock.Mock
}

func (m *mockCatalogRepo) ProductByID(ctx context.Context, tenantID, id int64) (*models.Product, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *mockCatalogRepo) Products(ctx context.Context, tenantID int64, search string, page, pageSize int) ([]models.Product, int64, error) {
	args := m.Called(ctx, tenantID, search, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Product), args.Get(1).(int64), args.Error(2)
}

func testRouter(repo CatalogRepository) *gin.Engine {
	h := NewCatalogHandler(repo, zerolog.Nop())
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.CtxTenantID, int64(1))
		c.Set(middleware.CtxUserID, int64(2))
	})
	r.GET("/products", h.List)
	r.GET("/products/:id", h.Get)
	return r
}

func TestSuccessEnvelope(t *testing.T) {
	repo := new(mockCatalogRepo)
	repo.On("ProductByID", mock.Anything, int64(1), int64(10)).Return(&models.Product{
		ID: 10, Name: "Rice 5kg", UnitPrice: decimal.NewFromInt(50000), IsActive: true,
	}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/products/10", nil)
	testRouter(repo).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   *ErrorBody      `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.NotNil(t, body.Data)
	assert.Nil(t, body.Error)
}

func TestErrorEnvelopeAndStatusMapping(t *testing.T) {
	repo := new(mockCatalogRepo)
	repo.On("ProductByID", mock.Anything, int64(1), int64(404)).Return(nil, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/products/404", nil)
	testRouter(repo).ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	require.NotNil(t, body.Error)
	assert.Equal(t, domain.CodeProductNotFound, body.Error.Code)
}

func TestListEnvelopeMeta(t *testing.T) {
	repo := new(mockCatalogRepo)
	repo.On("Products", mock.Anything, int64(1), "", 1, 2).Return([]models.Product{
		{ID: 1, Name: "A"}, {ID: 2, Name: "B"},
	}, int64(5), nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/products?page=1&pageSize=2", nil)
	testRouter(repo).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool  `json:"success"`
		Meta    *Meta `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Meta)
	assert.Equal(t, int64(5), body.Meta.Total)
	assert.Equal(t, 3, body.Meta.TotalPages)
	assert.True(t, body.Meta.HasMore)
}

func TestStatusForConflictCodes(t *testing.T) {
	assert.Equal(t, http.StatusConflict, statusFor(domain.CodeInsufficientStock))
	assert.Equal(t, http.StatusConflict, statusFor(domain.CodeInvalidStatusTransition))
	assert.Equal(t, http.StatusConflict, statusFor(domain.CodeOrderNotCancellable))
	assert.Equal(t, http.StatusBadRequest, statusFor(domain.CodeEmptyCart))
	assert.Equal(t, http.StatusNotFound, statusFor(domain.CodeNotFound))
	assert.Equal(t, http.StatusInternalServerError, statusFor("SOMETHING_NEW"))
}
