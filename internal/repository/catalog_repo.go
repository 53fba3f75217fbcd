package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/qs3c/kidcare_server/internal/model"
)

// CatalogRepository 服务与时段目录（只读）
type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) GetByID(ctx context.Context, id int64) (*model.Service, error) {
	var svc model.Service
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&svc).Error
	if err != nil {
		return nil, err
	}
	return &svc, nil
}

// GetActiveByID 获取启用中的服务
func (r *CatalogRepository) GetActiveByID(ctx context.Context, id int64) (*model.Service, error) {
	var svc model.Service
	err := r.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&svc).Error
	if err != nil {
		return nil, err
	}
	return &svc, nil
}

// ScheduleRepository 服务时段
type ScheduleRepository struct {
	db *gorm.DB
}

func NewScheduleRepository(db *gorm.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

func (r *ScheduleRepository) GetByID(ctx context.Context, id int64) (*model.ScheduleSlot, error) {
	var slot model.ScheduleSlot
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&slot).Error
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

// GetByIDs 批量获取时段，返回 id -> slot，不存在的 id 不出现在结果里
func (r *ScheduleRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*model.ScheduleSlot, error) {
	result := make(map[int64]*model.ScheduleSlot, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var slots []*model.ScheduleSlot
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&slots).Error; err != nil {
		return nil, err
	}
	for _, s := range slots {
		result[s.ID] = s
	}
	return result, nil
}

// ListByService 获取服务下启用的时段
func (r *ScheduleRepository) ListByService(ctx context.Context, serviceID int64) ([]*model.ScheduleSlot, error) {
	var slots []*model.ScheduleSlot
	err := r.db.WithContext(ctx).
		Where("service_id = ? AND is_active = ?", serviceID, true).
		Order("day_of_week ASC, start_time ASC").
		Find(&slots).Error
	return slots, err
}
