package service

import (
	"context"
	"log"

	"github.com/qs3c/kidcare_server/internal/model"
	"github.com/qs3c/kidcare_server/internal/pkg/clock"
	"github.com/qs3c/kidcare_server/internal/repository"
)

const stalePendingBatch = 500

// MaintenanceService 定时维护任务
type MaintenanceService struct {
	subscriptionService *SubscriptionService
	repos               *repository.Repositories
	clock               clock.Clock
}

func NewMaintenanceService(
	subscriptionService *SubscriptionService,
	repos *repository.Repositories,
	clk clock.Clock,
) *MaintenanceService {
	return &MaintenanceService{
		subscriptionService: subscriptionService,
		repos:               repos,
		clock:               clk,
	}
}

// CancelStalePending 取消开始月份已过仍未生效的订阅，返回处理数量
func (s *MaintenanceService) CancelStalePending(ctx context.Context, dryRun bool) (int, error) {
	now := s.clock.Now()
	subs, err := s.repos.Subscription.ListStalePending(ctx, now.Year(), int(now.Month()), stalePendingBatch)
	if err != nil {
		return 0, err
	}

	if dryRun {
		for _, sub := range subs {
			log.Printf("  - would cancel %s (start %02d/%d)", sub.Code, sub.StartMonth, sub.StartYear)
		}
		return len(subs), nil
	}

	cancelled := 0
	for _, sub := range subs {
		if err := s.subscriptionService.transition(ctx, sub, model.SubscriptionStatusCancelled); err != nil {
			log.Printf("Failed to cancel stale subscription %s: %v", sub.Code, err)
			continue
		}
		cancelled++
	}
	return cancelled, nil
}

// ReconcileCapacity 用订阅表重算名额计数行，返回偏离实际占用的计数行数。
// dryRun 只比较并打印，不改写。
func (s *MaintenanceService) ReconcileCapacity(ctx context.Context, dryRun bool) (int, error) {
	if !dryRun {
		return s.repos.Capacity.Reconcile(ctx, s.clock.Now())
	}

	counts, err := s.repos.Subscription.CountAdmittedByBucket(ctx)
	if err != nil {
		return 0, err
	}

	drifted := 0
	for _, c := range counts {
		admitted, err := s.repos.Capacity.Admitted(ctx, c.ServiceID, c.StartYear, c.StartMonth)
		if err != nil {
			return 0, err
		}
		if admitted != c.Admitted {
			log.Printf("  - service %d %02d/%d: counter=%d actual=%d",
				c.ServiceID, c.StartMonth, c.StartYear, admitted, c.Admitted)
			drifted++
		}
	}
	return drifted, nil
}
