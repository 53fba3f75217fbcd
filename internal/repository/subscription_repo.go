package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/kidcare_server/internal/model"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// WithTx 返回绑定到事务的副本
func (r *SubscriptionRepository) WithTx(tx *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: tx}
}

func (r *SubscriptionRepository) Create(ctx context.Context, sub *model.Subscription) error {
	return r.db.WithContext(ctx).Omit("Service").Create(sub).Error
}

func (r *SubscriptionRepository) GetByID(ctx context.Context, id int64) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.WithContext(ctx).Preload("Service").Where("id = ?", id).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepository) GetByCode(ctx context.Context, code string) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.WithContext(ctx).Preload("Service").Where("code = ?", code).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListByUserID 分页获取用户的订阅
func (r *SubscriptionRepository) ListByUserID(ctx context.Context, userID int64, page, pageSize int) ([]*model.Subscription, int64, error) {
	var subs []*model.Subscription
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Subscription{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Service").
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&subs).Error

	return subs, total, err
}

// CountAdmitted 统计某服务某月占用名额的订阅数
func (r *SubscriptionRepository) CountAdmitted(ctx context.Context, serviceID int64, year, month int) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Subscription{}).
		Where("service_id = ? AND start_year = ? AND start_month = ? AND status IN ?",
			serviceID, year, month, model.AdmittedStatuses).
		Count(&count).Error
	return count, err
}

// UpdateStatusFrom 仅当当前状态为 from 时更新，返回是否更新成功
func (r *SubscriptionRepository) UpdateStatusFrom(ctx context.Context, id int64, from, to string, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Subscription{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ListStalePending 获取开始月份早于 (year, month) 且仍未生效的订阅
func (r *SubscriptionRepository) ListStalePending(ctx context.Context, year, month, limit int) ([]*model.Subscription, error) {
	var subs []*model.Subscription
	err := r.db.WithContext(ctx).
		Where("status = ? AND (start_year < ? OR (start_year = ? AND start_month < ?))",
			model.SubscriptionStatusPending, year, year, month).
		Order("id ASC").
		Limit(limit).
		Find(&subs).Error
	return subs, err
}

// BucketCount 某服务某月占用名额数
type BucketCount struct {
	ServiceID  int64
	StartYear  int
	StartMonth int
	Admitted   int
}

// CountAdmittedByBucket 按 (服务, 年, 月) 汇总占用名额数
func (r *SubscriptionRepository) CountAdmittedByBucket(ctx context.Context) ([]BucketCount, error) {
	var rows []BucketCount
	err := r.db.WithContext(ctx).Model(&model.Subscription{}).
		Select("service_id, start_year, start_month, COUNT(*) AS admitted").
		Where("status IN ?", model.AdmittedStatuses).
		Group("service_id, start_year, start_month").
		Scan(&rows).Error
	return rows, err
}
