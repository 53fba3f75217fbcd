package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/qs3c/kidcare_server/internal/model"
)

// BookingRepository 旧版预约镜像
type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) WithTx(tx *gorm.DB) *BookingRepository {
	return &BookingRepository{db: tx}
}

func (r *BookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *BookingRepository) GetBySubscriptionID(ctx context.Context, subscriptionID int64) (*model.Booking, error) {
	var booking model.Booking
	err := r.db.WithContext(ctx).Where("subscription_id = ?", subscriptionID).First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// UpdateStatusBySubscription 镜像状态跟随订阅
func (r *BookingRepository) UpdateStatusBySubscription(ctx context.Context, subscriptionID int64, status string) error {
	return r.db.WithContext(ctx).Model(&model.Booking{}).
		Where("subscription_id = ?", subscriptionID).
		Update("status", status).Error
}
