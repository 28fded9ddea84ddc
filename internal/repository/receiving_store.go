package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"fieldline/internal/database/models"
	"fieldline/internal/services/receiving"
)

type ReceivingStore struct {
	db       *gorm.DB
	products *ProductStore
}

func NewReceivingStore(db *gorm.DB, products *ProductStore) *ReceivingStore {
	return &ReceivingStore{db: db, products: products}
}

func (s *ReceivingStore) ProductByBarcode(ctx context.Context, tenantID int64, barcode string) (*models.Product, error) {
	return s.products.ProductByBarcode(ctx, tenantID, barcode)
}

func (s *ReceivingStore) CreatePO(ctx context.Context, po *models.PurchaseOrder) error {
	return s.db.WithContext(ctx).Create(po).Error
}

func (s *ReceivingStore) POWithLines(ctx context.Context, tenantID, id int64) (*models.PurchaseOrder, error) {
	var po models.PurchaseOrder
	err := s.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&po).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &po, nil
}

// AccumulateLine adds qty to the line's received count in a single
// statement and returns the fresh row. Concurrent scans against the
// same line both land, neither overwrites the other.
func (s *ReceivingStore) AccumulateLine(ctx context.Context, lineID int64, qty int) (*models.PurchaseOrderLine, error) {
	if err := s.db.WithContext(ctx).
		Model(&models.PurchaseOrderLine{}).
		Where("id = ?", lineID).
		UpdateColumn("qty_received", gorm.Expr("qty_received + ?", qty)).Error; err != nil {
		return nil, err
	}

	var line models.PurchaseOrderLine
	if err := s.db.WithContext(ctx).First(&line, lineID).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

func (s *ReceivingStore) UpdatePOStatus(ctx context.Context, tenantID, id int64, status models.POStatus) error {
	return s.db.WithContext(ctx).
		Model(&models.PurchaseOrder{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Update("status", status).Error
}

// ReplaceLines swaps the full line set of a draft purchase order.
func (s *ReceivingStore) ReplaceLines(ctx context.Context, tenantID, poID int64, lines []models.PurchaseOrderLine) error {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Where("purchase_order_id = ?", poID).
		Delete(&models.PurchaseOrderLine{}).Error; err != nil {
		tx.Rollback()
		return err
	}

	for i := range lines {
		lines[i].PurchaseOrderID = poID
	}
	if len(lines) > 0 {
		if err := tx.Create(&lines).Error; err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit().Error
}

func (s *ReceivingStore) PurchaseOrders(ctx context.Context, tenantID int64, filter receiving.Filter) ([]models.PurchaseOrder, int64, error) {
	query := s.db.WithContext(ctx).
		Model(&models.PurchaseOrder{}).
		Where("tenant_id = ?", tenantID)

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
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

	var pos []models.PurchaseOrder
	if err := query.
		Preload("Lines").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&pos).Error; err != nil {
		return nil, 0, err
	}

	return pos, total, nil
}
