package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/qs3c/kidcare_server/internal/model"
)

type PromotionRepository struct {
	db *gorm.DB
}

func NewPromotionRepository(db *gorm.DB) *PromotionRepository {
	return &PromotionRepository{db: db}
}

// WithTx 返回绑定到事务的副本
func (r *PromotionRepository) WithTx(tx *gorm.DB) *PromotionRepository {
	return &PromotionRepository{db: tx}
}

func (r *PromotionRepository) GetByID(ctx context.Context, id int64) (*model.Promotion, error) {
	var promo model.Promotion
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&promo).Error
	if err != nil {
		return nil, err
	}
	return &promo, nil
}

// GetActiveByCode 按优惠码查找启用中的优惠
func (r *PromotionRepository) GetActiveByCode(ctx context.Context, code string) (*model.Promotion, error) {
	var promo model.Promotion
	err := r.db.WithContext(ctx).Where("code = ? AND is_active = ?", code, true).First(&promo).Error
	if err != nil {
		return nil, err
	}
	return &promo, nil
}

// TryIncrementUsage 条件自增使用次数，达到上限或已停用时返回 false
func (r *PromotionRepository) TryIncrementUsage(ctx context.Context, id int64) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Promotion{}).
		Where("id = ? AND is_active = ? AND (max_uses IS NULL OR used_count < max_uses)", id, true).
		Update("used_count", gorm.Expr("used_count + 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
