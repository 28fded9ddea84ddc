package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"fieldline/internal/database/models"
	"fieldline/internal/services/visits"
)

type VisitStore struct {
	db *gorm.DB
}

func NewVisitStore(db *gorm.DB) *VisitStore {
	return &VisitStore{db: db}
}

func (s *VisitStore) CreateVisit(ctx context.Context, visit *models.Visit) error {
	return s.db.WithContext(ctx).Create(visit).Error
}

func (s *VisitStore) VisitByID(ctx context.Context, tenantID, id int64) (*models.Visit, error) {
	var visit models.Visit
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&visit).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &visit, nil
}

// TransitionStart flips planned → in_progress guarded on the prior
// status. Returns false when the row was absent or in another status.
func (s *VisitStore) TransitionStart(ctx context.Context, tenantID, id int64, startedAt time.Time, lat, lon *float64) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Visit{}).
		Where("tenant_id = ? AND id = ? AND status = ?", tenantID, id, models.VisitPlanned).
		Updates(map[string]interface{}{
			"status":     models.VisitInProgress,
			"started_at": startedAt,
			"start_lat":  lat,
			"start_lon":  lon,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *VisitStore) TransitionComplete(ctx context.Context, tenantID, id int64, outcome models.VisitOutcome, notes *string, photos []string, completedAt time.Time, lat, lon *float64) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Visit{}).
		Where("tenant_id = ? AND id = ? AND status = ?", tenantID, id, models.VisitInProgress).
		Updates(map[string]interface{}{
			"status":        models.VisitCompleted,
			"outcome":       outcome,
			"outcome_notes": notes,
			"photos":        models.StringArray(photos),
			"completed_at":  completedAt,
			"end_lat":       lat,
			"end_lon":       lon,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *VisitStore) TransitionCancel(ctx context.Context, tenantID, id int64) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Visit{}).
		Where("tenant_id = ? AND id = ? AND status IN ?", tenantID, id,
			[]models.VisitStatus{models.VisitPlanned, models.VisitInProgress}).
		Update("status", models.VisitCancelled)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *VisitStore) Visits(ctx context.Context, tenantID int64, filter visits.Filter) ([]models.Visit, int64, error) {
	query := s.db.WithContext(ctx).
		Model(&models.Visit{}).
		Where("tenant_id = ?", tenantID)

	if filter.SalesRepID != nil {
		query = query.Where("sales_rep_id = ?", *filter.SalesRepID)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Date != nil {
		query = query.Where("planned_date = ?", *filter.Date)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}

	var rows []models.Visit
	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}
