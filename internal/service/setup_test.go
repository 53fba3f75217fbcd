package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/qs3c/kidcare_server/config"
	"github.com/qs3c/kidcare_server/internal/pkg/clock"
	"github.com/qs3c/kidcare_server/internal/pkg/queue"
	"github.com/qs3c/kidcare_server/internal/repository"
	"github.com/qs3c/kidcare_server/internal/testutil"
)

// fakeNotifier 记录收到的通知任务
type fakeNotifier struct {
	mu       sync.Mutex
	messages []*queue.NotificationMessage
	warnings []string
	err      error
}

func (n *fakeNotifier) Notify(_ context.Context, msg *queue.NotificationMessage) ([]string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
	return append([]string(nil), n.warnings...), n.err
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages)
}

type testEnv struct {
	db           *gorm.DB
	repos        *repository.Repositories
	clock        *clock.Mock
	notifier     *fakeNotifier
	cfg          *config.Config
	capacity     *CapacityService
	pricing      *PricingService
	promotions   *PromotionService
	subscription *SubscriptionService
	maintenance  *MaintenanceService
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	env := &testEnv{
		db:       db,
		repos:    repository.NewRepositories(db),
		clock:    clock.NewMock(time.Now().UTC().Truncate(time.Second)),
		notifier: &fakeNotifier{},
		cfg:      (&config.Config{}).WithDefaults(),
	}
	env.capacity = NewCapacityService(env.repos.Catalog, env.repos.Subscription)
	env.pricing = NewPricingService(env.repos.Catalog, env.cfg)
	env.promotions = NewPromotionService(env.repos.Promotion, env.pricing, env.clock)
	env.subscription = NewSubscriptionService(db, env.repos, env.capacity, env.promotions, env.notifier, env.clock, env.cfg)
	env.maintenance = NewMaintenanceService(env.subscription, env.repos, env.clock)
	return env
}

// nextMonth 返回相对 mock 时钟的下个月
func (e *testEnv) nextMonth() (int, int) {
	next := e.clock.Now().AddDate(0, 1, 0)
	return int(next.Month()), next.Year()
}

func (e *testEnv) input(serviceID int64, schedule map[int]*int64) *CreateSubscriptionInput {
	month, year := e.nextMonth()
	return &CreateSubscriptionInput{
		ServiceID:        serviceID,
		ChildName:        "Mia",
		ChildAgeMonths:   24,
		ParentName:       "Jordan Lee",
		ParentEmail:      "jordan@example.com",
		ParentPhone:      "555-0100",
		StartMonth:       month,
		StartYear:        year,
		WeeklySchedule:   schedule,
		SessionsPerMonth: 8,
	}
}

func int64Ptr(v int64) *int64 { return &v }

func intPtr(v int) *int { return &v }

func assertMoney(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.Equal(t, expected, actual.StringFixed(2))
}

// assertNothingProvisioned 开通失败后不应留下任何记录
func assertNothingProvisioned(t *testing.T, db *gorm.DB) {
	t.Helper()
	for _, table := range testutil.ProvisionedTables {
		assert.Equal(t, int64(0), testutil.CountRows(t, db, table), "table %s should be empty", table)
	}
}
