package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"fieldline/internal/database/models"
	"fieldline/internal/domain"
	"fieldline/internal/services/checkout"
)

type OrderStore struct {
	db       *gorm.DB
	products *ProductStore
}

func NewOrderStore(db *gorm.DB, products *ProductStore) *OrderStore {
	return &OrderStore{db: db, products: products}
}

func (s *OrderStore) ProductsByIDs(ctx context.Context, tenantID int64, ids []int64) (map[int64]models.Product, error) {
	return s.products.ProductsByIDs(ctx, tenantID, ids)
}

// CreateOrderWithStock decrements stock for every line and inserts the
// order in one transaction. The decrement is a single conditional
// update; two concurrent checkouts for the last unit see exactly one
// success and one INSUFFICIENT_STOCK.
func (s *OrderStore) CreateOrderWithStock(ctx context.Context, order *models.Order) error {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	for _, item := range order.Items {
		res := tx.Model(&models.Stock{}).
			Where("tenant_id = ? AND product_id = ? AND quantity >= ?",
				order.TenantID, item.ProductID, item.Quantity).
			UpdateColumn("quantity", gorm.Expr("quantity - ?", item.Quantity))
		if res.Error != nil {
			tx.Rollback()
			return res.Error
		}
		if res.RowsAffected == 0 {
			tx.Rollback()
			return domain.NewError(domain.CodeInsufficientStock,
				fmt.Sprintf("insufficient stock for product %d", item.ProductID))
		}
	}

	if err := tx.Create(order).Error; err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return err
	}

	ids := make([]int64, len(order.Items))
	for i, item := range order.Items {
		ids[i] = item.ProductID
	}
	s.products.InvalidateProduct(ctx, order.TenantID, ids...)

	return nil
}

// CancelPendingOrder flips pending → cancelled guarded on the prior
// status and restores stock in the same transaction. Returns false when
// the guard did not match.
func (s *OrderStore) CancelPendingOrder(ctx context.Context, tenantID, id int64, items []models.OrderItem) (bool, error) {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return false, tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	res := tx.Model(&models.Order{}).
		Where("tenant_id = ? AND id = ? AND status = ?", tenantID, id, models.OrderPending).
		Update("status", models.OrderCancelled)
	if res.Error != nil {
		tx.Rollback()
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return false, nil
	}

	for _, item := range items {
		if err := tx.Model(&models.Stock{}).
			Where("tenant_id = ? AND product_id = ?", tenantID, item.ProductID).
			UpdateColumn("quantity", gorm.Expr("quantity + ?", item.Quantity)).Error; err != nil {
			tx.Rollback()
			return false, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return false, err
	}

	ids := make([]int64, len(items))
	for i, item := range items {
		ids[i] = item.ProductID
	}
	s.products.InvalidateProduct(ctx, tenantID, ids...)

	return true, nil
}

func (s *OrderStore) OrderByID(ctx context.Context, tenantID, id int64) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *OrderStore) UpdateOrderStatus(ctx context.Context, tenantID, id int64, status models.OrderStatus) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Update("status", status)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *OrderStore) Orders(ctx context.Context, tenantID int64, filter checkout.OrderFilter) ([]models.Order, int64, error) {
	query := s.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("tenant_id = ?", tenantID)

	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
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

	var orders []models.Order
	if err := query.
		Preload("Items").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}
