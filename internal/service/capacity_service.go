package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/qs3c/kidcare_server/internal/model"
	"github.com/qs3c/kidcare_server/internal/repository"
)

// CapacityStatus 某服务某月的名额情况，Max 为 nil 表示不限
type CapacityStatus struct {
	OK      bool
	Current int
	Max     *int
}

// Remaining 剩余名额，不限时返回 nil
func (s *CapacityStatus) Remaining() *int {
	if s.Max == nil {
		return nil
	}
	left := *s.Max - s.Current
	if left < 0 {
		left = 0
	}
	return &left
}

type CapacityService struct {
	catalogRepo      *repository.CatalogRepository
	subscriptionRepo *repository.SubscriptionRepository
}

func NewCapacityService(
	catalogRepo *repository.CatalogRepository,
	subscriptionRepo *repository.SubscriptionRepository,
) *CapacityService {
	return &CapacityService{
		catalogRepo:      catalogRepo,
		subscriptionRepo: subscriptionRepo,
	}
}

// CheckCapacity 查询服务某月已占用名额并与容量比较
func (s *CapacityService) CheckCapacity(ctx context.Context, serviceID int64, month, year int) (*CapacityStatus, error) {
	svc, err := s.catalogRepo.GetByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceUnavailable
		}
		return nil, err
	}
	return s.CheckServiceCapacity(ctx, svc, month, year)
}

// CheckServiceCapacity 对已加载的服务做名额检查
func (s *CapacityService) CheckServiceCapacity(ctx context.Context, svc *model.Service, month, year int) (*CapacityStatus, error) {
	count, err := s.subscriptionRepo.CountAdmitted(ctx, svc.ID, year, month)
	if err != nil {
		return nil, err
	}

	status := &CapacityStatus{OK: true, Current: int(count), Max: svc.Capacity}
	if svc.Capacity != nil && status.Current >= *svc.Capacity {
		status.OK = false
	}
	return status, nil
}
