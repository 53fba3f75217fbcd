package cron

import (
	"context"
	"log"
	"sync"
	"time"
)

// Maintainer 定时执行的维护任务
type Maintainer interface {
	CancelStalePending(ctx context.Context, dryRun bool) (int, error)
	ReconcileCapacity(ctx context.Context, dryRun bool) (int, error)
}

// 每日执行时刻（UTC）
const (
	staleHour     = 0
	staleMinute   = 5
	reconcileHour = 3
	taskTimeout   = 10 * time.Minute
)

type Service struct {
	maintainer Maintainer
	now        func() time.Time
	stopChan   chan struct{}
	stopOnce   sync.Once
}

func NewService(maintainer Maintainer) *Service {
	return &Service{
		maintainer: maintainer,
		now:        time.Now,
		stopChan:   make(chan struct{}),
	}
}

// Start 启动定时任务
func (s *Service) Start() {
	go s.runDaily("stale pending cancellation", staleHour, staleMinute, s.cancelStalePending)
	go s.runDaily("capacity reconciliation", reconcileHour, 0, s.reconcileCapacity)
	log.Println("Cron service started (stale pending cancellation + capacity reconciliation)")
}

// Stop 停止定时任务，可重复调用
func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
		log.Println("Cron service stopped")
	})
}

// untilNext 距离下一个 hour:minute（UTC）的时长
func untilNext(now time.Time, hour, minute int) time.Duration {
	now = now.UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next.Sub(now)
}

// runDaily 每天在固定时刻执行一次
func (s *Service) runDaily(name string, hour, minute int, task func()) {
	timer := time.NewTimer(untilNext(s.now(), hour, minute))

	for {
		select {
		case <-s.stopChan:
			timer.Stop()
			return
		case <-timer.C:
			log.Printf("Starting %s...", name)
			task()
			timer.Reset(untilNext(s.now(), hour, minute))
		}
	}
}

func (s *Service) cancelStalePending() {
	ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
	defer cancel()

	n, err := s.maintainer.CancelStalePending(ctx, false)
	if err != nil {
		log.Printf("Failed to cancel stale pending subscriptions: %v", err)
		return
	}
	log.Printf("Stale pending cancellation completed: %d cancelled", n)
}

func (s *Service) reconcileCapacity() {
	ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
	defer cancel()

	n, err := s.maintainer.ReconcileCapacity(ctx, false)
	if err != nil {
		log.Printf("Failed to reconcile capacity counters: %v", err)
		return
	}
	log.Printf("Capacity reconciliation completed: %d counters corrected", n)
}

// RunNow 立即执行全部维护任务（用于测试或手动触发）
func (s *Service) RunNow(ctx context.Context) error {
	log.Println("Manual maintenance triggered...")
	if _, err := s.maintainer.CancelStalePending(ctx, false); err != nil {
		return err
	}
	_, err := s.maintainer.ReconcileCapacity(ctx, false)
	return err
}
