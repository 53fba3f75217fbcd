package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qs3c/kidcare_server/internal/model"
)

// CapacityRepository 维护 (服务, 年, 月) 的名额计数行
type CapacityRepository struct {
	db *gorm.DB
}

func NewCapacityRepository(db *gorm.DB) *CapacityRepository {
	return &CapacityRepository{db: db}
}

func (r *CapacityRepository) WithTx(tx *gorm.DB) *CapacityRepository {
	return &CapacityRepository{db: tx}
}

// TryReserve 在调用方事务内原子地占用一个名额。
// 计数行不存在时先以当前占用数初始化，低于当前占用数时先抬到当前值，
// 再做 admitted < capacity 的条件自增。capacity 为 nil 时不设上限，只计数。
// 返回值 ok=false 表示已满，admitted 为占用数。
func (r *CapacityRepository) TryReserve(ctx context.Context, serviceID int64, year, month int, capacity *int, now time.Time) (bool, int, error) {
	db := r.db.WithContext(ctx)

	var current int64
	err := db.Model(&model.Subscription{}).
		Where("service_id = ? AND start_year = ? AND start_month = ? AND status IN ?",
			serviceID, year, month, model.AdmittedStatuses).
		Count(&current).Error
	if err != nil {
		return false, 0, err
	}

	seed := &model.CapacityReservation{
		ServiceID: serviceID,
		Year:      year,
		Month:     month,
		Admitted:  int(current),
		UpdatedAt: now,
	}
	err = db.Clauses(clause.OnConflict{DoNothing: true}).Create(seed).Error
	if err != nil {
		return false, 0, err
	}

	// 服务曾经不限名额或计数行漂移时，计数可能低于实际占用
	err = db.Model(&model.CapacityReservation{}).
		Where("service_id = ? AND year = ? AND month = ? AND admitted < ?", serviceID, year, month, current).
		Updates(map[string]interface{}{"admitted": current, "updated_at": now}).Error
	if err != nil {
		return false, 0, err
	}

	reserve := db.Model(&model.CapacityReservation{}).
		Where("service_id = ? AND year = ? AND month = ?", serviceID, year, month)
	if capacity != nil {
		reserve = reserve.Where("admitted < ?", *capacity)
	}
	result := reserve.Updates(map[string]interface{}{
		"admitted":   gorm.Expr("admitted + 1"),
		"updated_at": now,
	})
	if result.Error != nil {
		return false, 0, result.Error
	}

	admitted, err := r.Admitted(ctx, serviceID, year, month)
	if err != nil {
		return false, 0, err
	}
	return result.RowsAffected == 1, admitted, nil
}

// Release 释放一个名额，计数不会小于 0
func (r *CapacityRepository) Release(ctx context.Context, serviceID int64, year, month int, now time.Time) error {
	return r.db.WithContext(ctx).Model(&model.CapacityReservation{}).
		Where("service_id = ? AND year = ? AND month = ?", serviceID, year, month).
		Updates(map[string]interface{}{
			"admitted":   gorm.Expr("CASE WHEN admitted > 0 THEN admitted - 1 ELSE 0 END"),
			"updated_at": now,
		}).Error
}

// Admitted 读取计数行，不存在时为 0
func (r *CapacityRepository) Admitted(ctx context.Context, serviceID int64, year, month int) (int, error) {
	var row model.CapacityReservation
	err := r.db.WithContext(ctx).
		Where("service_id = ? AND year = ? AND month = ?", serviceID, year, month).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return 0, err
	}
	return row.Admitted, nil
}

// Reconcile 用订阅表的实际占用数重写计数行，返回被修正的行数。
// 计数在 UPDATE 语句内以关联子查询求得，与改写处于同一快照。
func (r *CapacityRepository) Reconcile(ctx context.Context, now time.Time) (int, error) {
	var corrected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		buckets, err := NewSubscriptionRepository(tx).CountAdmittedByBucket(ctx)
		if err != nil {
			return err
		}
		if len(buckets) > 0 {
			rows := make([]*model.CapacityReservation, 0, len(buckets))
			for _, b := range buckets {
				rows = append(rows, &model.CapacityReservation{
					ServiceID: b.ServiceID,
					Year:      b.StartYear,
					Month:     b.StartMonth,
					UpdatedAt: now,
				})
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
				return err
			}
		}

		result := tx.Model(&model.CapacityReservation{}).
			Where("admitted <> (?)", admittedSubquery(tx)).
			Updates(map[string]interface{}{
				"admitted":   admittedSubquery(tx),
				"updated_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		corrected = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int(corrected), nil
}

// admittedSubquery 按外层计数行的 (服务, 年, 月) 统计占用名额的订阅数
func admittedSubquery(tx *gorm.DB) *gorm.DB {
	return tx.Session(&gorm.Session{NewDB: true}).
		Model(&model.Subscription{}).
		Select("COUNT(*)").
		Where("subscriptions.service_id = capacity_reservations.service_id").
		Where("subscriptions.start_year = capacity_reservations.year").
		Where("subscriptions.start_month = capacity_reservations.month").
		Where("subscriptions.status IN ?", model.AdmittedStatuses)
}
