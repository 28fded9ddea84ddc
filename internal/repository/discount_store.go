package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"fieldline/internal/database/models"
)

const (
	discountCacheKeyFmt = "pricing:discounts:%d"
	discountCacheTTL    = 5 * time.Minute
)

// DiscountStore reads discount configuration. The active set is cached
// per tenant; preview runs on every cart change, so the read path stays
// off the database most of the time.
type DiscountStore struct {
	db     *gorm.DB
	redis  *redis.Client
	logger zerolog.Logger
}

func NewDiscountStore(db *gorm.DB, redisClient *redis.Client, logger zerolog.Logger) *DiscountStore {
	return &DiscountStore{
		db:     db,
		redis:  redisClient,
		logger: logger.With().Str("store", "discount").Logger(),
	}
}

func (s *DiscountStore) ActiveDiscounts(ctx context.Context, tenantID int64) ([]models.Discount, error) {
	cacheKey := fmt.Sprintf(discountCacheKeyFmt, tenantID)

	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, cacheKey).Bytes(); err == nil {
			var discounts []models.Discount
			if err := json.Unmarshal(cached, &discounts); err == nil {
				return discounts, nil
			}
		}
	}

	var discounts []models.Discount
	if err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND active = ?", tenantID, true).
		Order("id").
		Find(&discounts).Error; err != nil {
		return nil, err
	}

	if s.redis != nil {
		if payload, err := json.Marshal(discounts); err == nil {
			if err := s.redis.Set(ctx, cacheKey, payload, discountCacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to cache discounts")
			}
		}
	}

	return discounts, nil
}

func (s *DiscountStore) DiscountByCode(ctx context.Context, tenantID int64, code string) (*models.Discount, error) {
	var discount models.Discount
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND code = ?", tenantID, code).
		First(&discount).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &discount, nil
}

func (s *DiscountStore) DiscountByID(ctx context.Context, tenantID, id int64) (*models.Discount, error) {
	var discount models.Discount
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&discount).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &discount, nil
}
