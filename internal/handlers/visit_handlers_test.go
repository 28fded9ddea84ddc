package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldline/internal/database/models"
	"fieldline/internal/domain"
	"fieldline/internal/middleware"
	"fieldline/internal/services/visits"
)

// stubVisitRepo lets every transition succeed; handler tests only care
// about the HTTP surface, not the guard logic.
type stubVisitRepo struct{}

func (stubVisitRepo) CreateVisit(ctx context.Context, visit *models.Visit) error {
	visit.ID = 5
	return nil
}

func (stubVisitRepo) VisitByID(ctx context.Context, tenantID, id int64) (*models.Visit, error) {
	return &models.Visit{ID: id, Status: models.VisitInProgress}, nil
}

func (stubVisitRepo) TransitionStart(ctx context.Context, tenantID, id int64, startedAt time.Time, lat, lon *float64) (bool, error) {
	return true, nil
}

func (stubVisitRepo) TransitionComplete(ctx context.Context, tenantID, id int64, outcome models.VisitOutcome, notes *string, photos []string, completedAt time.Time, lat, lon *float64) (bool, error) {
	return true, nil
}

func (stubVisitRepo) TransitionCancel(ctx context.Context, tenantID, id int64) (bool, error) {
	return true, nil
}

func (stubVisitRepo) Visits(ctx context.Context, tenantID int64, filter visits.Filter) ([]models.Visit, int64, error) {
	return nil, 0, nil
}

func visitTestRouter() *gin.Engine {
	h := NewVisitHandler(visits.NewLifecycle(stubVisitRepo{}, zerolog.Nop()), zerolog.Nop())
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.CtxTenantID, int64(1))
		c.Set(middleware.CtxUserID, int64(2))
	})
	r.POST("/visits", h.Create)
	r.PATCH("/visits/:id/start", h.Start)
	return r
}

func TestCreateVisitModeCheckedBeforeMalformedDate(t *testing.T) {
	payload := `{"customerId":7,"mode":"drive_by","plannedDate":"not-a-date"}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/visits", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	visitTestRouter().ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	assert.Equal(t, domain.CodeInvalidMode, body.Error.Code)
}

func TestCreateVisitMalformedDateAlone(t *testing.T) {
	payload := `{"customerId":7,"mode":"scheduled","plannedDate":"not-a-date"}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/visits", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	visitTestRouter().ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	assert.Equal(t, domain.CodeInvalidDate, body.Error.Code)
}

func TestStartVisitAcceptsEmptyBody(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/visits/5/start", nil)
	visitTestRouter().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Nil(t, body.Error)
}
