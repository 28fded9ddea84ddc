package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"fieldline/internal/database/models"
)

const (
	productCacheKeyFmt = "catalog:product:%d:%d"
	productCacheTTL    = 30 * time.Minute
)

type ProductStore struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewProductStore(db *gorm.DB, redisClient *redis.Client) *ProductStore {
	return &ProductStore{db: db, redis: redisClient}
}

func (s *ProductStore) ProductsByIDs(ctx context.Context, tenantID int64, ids []int64) (map[int64]models.Product, error) {
	var products []models.Product
	if err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Find(&products).Error; err != nil {
		return nil, err
	}

	byID := make(map[int64]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID, nil
}

func (s *ProductStore) ProductByID(ctx context.Context, tenantID, id int64) (*models.Product, error) {
	cacheKey := fmt.Sprintf(productCacheKeyFmt, tenantID, id)

	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, cacheKey).Bytes(); err == nil {
			var product models.Product
			if err := json.Unmarshal(cached, &product); err == nil {
				return &product, nil
			}
		}
	}

	var product models.Product
	err := s.db.WithContext(ctx).
		Preload("Stock").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if payload, err := json.Marshal(product); err == nil {
			_ = s.redis.Set(ctx, cacheKey, payload, productCacheTTL).Err()
		}
	}

	return &product, nil
}

func (s *ProductStore) ProductByBarcode(ctx context.Context, tenantID int64, barcode string) (*models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND barcode = ?", tenantID, barcode).
		First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *ProductStore) Products(ctx context.Context, tenantID int64, search string, page, pageSize int) ([]models.Product, int64, error) {
	query := s.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("tenant_id = ? AND is_active = ?", tenantID, true)

	if search != "" {
		term := "%" + search + "%"
		query = query.Where("sku ILIKE ? OR name ILIKE ?", term, term)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if pageSize <= 0 {
		pageSize = 20
	}
	if page <= 0 {
		page = 1
	}

	var products []models.Product
	if err := query.
		Preload("Stock").
		Order("name").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// InvalidateProduct drops a cached product after a stock or price write.
func (s *ProductStore) InvalidateProduct(ctx context.Context, tenantID int64, productIDs ...int64) {
	if s.redis == nil {
		return
	}
	for _, id := range productIDs {
		_ = s.redis.Del(ctx, fmt.Sprintf(productCacheKeyFmt, tenantID, id))
	}
}
