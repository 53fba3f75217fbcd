package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/qs3c/kidcare_server/internal/model"
)

// TestService 创建测试服务
func TestService(t *testing.T, db *gorm.DB, opts ...func(*model.Service)) *model.Service {
	t.Helper()

	svc := &model.Service{
		Name:             fmt.Sprintf("Toddler Care %d", time.Now().UnixNano()%10000),
		BasePrice:        decimal.RequireFromString("150.00"),
		IncludedSessions: model.DefaultIncludedSessions,
		IsActive:         true,
	}

	for _, opt := range opts {
		opt(svc)
	}

	if err := db.Create(svc).Error; err != nil {
		t.Fatalf("Failed to create test service: %v", err)
	}

	return svc
}

// WithBasePrice 设置基础月费
func WithBasePrice(price string) func(*model.Service) {
	return func(s *model.Service) {
		s.BasePrice = decimal.RequireFromString(price)
	}
}

// WithCapacity 设置每月容量
func WithCapacity(capacity int) func(*model.Service) {
	return func(s *model.Service) {
		s.Capacity = &capacity
	}
}

// WithIncludedSessions 设置包含课时数
func WithIncludedSessions(n int) func(*model.Service) {
	return func(s *model.Service) {
		s.IncludedSessions = n
	}
}

// WithServiceInactive 设置为停用
func WithServiceInactive() func(*model.Service) {
	return func(s *model.Service) {
		s.IsActive = false
	}
}

// TestSlot 创建测试时段
func TestSlot(t *testing.T, db *gorm.DB, serviceID int64, dayOfWeek int, start, end string) *model.ScheduleSlot {
	t.Helper()

	slot := &model.ScheduleSlot{
		ServiceID: serviceID,
		DayOfWeek: dayOfWeek,
		StartTime: start,
		EndTime:   end,
		IsActive:  true,
	}

	if err := db.Create(slot).Error; err != nil {
		t.Fatalf("Failed to create test slot: %v", err)
	}

	return slot
}

// TestPromotion 创建测试优惠
func TestPromotion(t *testing.T, db *gorm.DB, code string, opts ...func(*model.Promotion)) *model.Promotion {
	t.Helper()

	now := time.Now()
	promo := &model.Promotion{
		Code:          code,
		Name:          "Promotion " + code,
		DiscountType:  model.DiscountTypePercentage,
		DiscountValue: decimal.NewFromInt(20),
		StartDate:     now.AddDate(0, -1, 0),
		EndDate:       now.AddDate(0, 1, 0),
		IsActive:      true,
	}

	for _, opt := range opts {
		opt(promo)
	}

	if err := db.Create(promo).Error; err != nil {
		t.Fatalf("Failed to create test promotion: %v", err)
	}

	return promo
}

// WithDiscount 设置折扣类型和数值
func WithDiscount(discountType, value string) func(*model.Promotion) {
	return func(p *model.Promotion) {
		p.DiscountType = discountType
		p.DiscountValue = decimal.RequireFromString(value)
	}
}

// WithMaxUses 设置使用上限和已用次数
func WithMaxUses(maxUses, used int) func(*model.Promotion) {
	return func(p *model.Promotion) {
		p.MaxUses = &maxUses
		p.UsedCount = used
	}
}

// WithAgeRange 设置年龄范围（月）
func WithAgeRange(minAge, maxAge *int) func(*model.Promotion) {
	return func(p *model.Promotion) {
		p.MinAgeMonths = minAge
		p.MaxAgeMonths = maxAge
	}
}

// WithApplicableServices 设置适用服务
func WithApplicableServices(ids ...int64) func(*model.Promotion) {
	return func(p *model.Promotion) {
		p.ApplicableServices = datatypes.JSONSlice[int64](ids)
	}
}

// WithValidity 设置有效期
func WithValidity(start, end time.Time) func(*model.Promotion) {
	return func(p *model.Promotion) {
		p.StartDate = start
		p.EndDate = end
	}
}

// WithPromotionInactive 设置为停用
func WithPromotionInactive() func(*model.Promotion) {
	return func(p *model.Promotion) {
		p.IsActive = false
	}
}

// TestSubscription 直接落库一条订阅（绕过开通流程），用于容量相关测试
func TestSubscription(t *testing.T, db *gorm.DB, serviceID int64, year, month int, status string) *model.Subscription {
	t.Helper()

	slotID := int64(1)
	sub := &model.Subscription{
		Code:              fmt.Sprintf("SUB-TEST-%d", time.Now().UnixNano()),
		UserID:            1,
		ServiceID:         serviceID,
		ChildName:         "Test Child",
		ChildAgeMonths:    24,
		ParentName:        "Test Parent",
		ParentEmail:       "parent@example.com",
		ParentPhone:       "555-0100",
		StartYear:         year,
		StartMonth:        month,
		WeeklySchedule:    datatypes.NewJSONType(model.WeeklySchedule{1: &slotID}),
		SessionsPerMonth:  8,
		BaseMonthlyPrice:  decimal.RequireFromString("150"),
		DiscountAmount:    decimal.Zero,
		FinalMonthlyPrice: decimal.RequireFromString("150"),
		Status:            status,
	}

	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("Failed to create test subscription: %v", err)
	}

	return sub
}
