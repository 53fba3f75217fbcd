package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/qs3c/kidcare_server/internal/model"
)

type ChildProfileRepository struct {
	db *gorm.DB
}

func NewChildProfileRepository(db *gorm.DB) *ChildProfileRepository {
	return &ChildProfileRepository{db: db}
}

func (r *ChildProfileRepository) WithTx(tx *gorm.DB) *ChildProfileRepository {
	return &ChildProfileRepository{db: tx}
}

func (r *ChildProfileRepository) Create(ctx context.Context, profile *model.ChildProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *ChildProfileRepository) GetBySubscriptionID(ctx context.Context, subscriptionID int64) (*model.ChildProfile, error) {
	var profile model.ChildProfile
	err := r.db.WithContext(ctx).Where("subscription_id = ?", subscriptionID).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
