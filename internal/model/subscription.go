package model

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	SubscriptionStatusPending   = "pending"
	SubscriptionStatusActive    = "active"
	SubscriptionStatusCompleted = "completed"
	SubscriptionStatusCancelled = "cancelled"
)

// AdmittedStatuses 占用名额的订阅状态
var AdmittedStatuses = []string{SubscriptionStatusPending, SubscriptionStatusActive}

// IsAdmittedStatus 判断状态是否计入容量
func IsAdmittedStatus(status string) bool {
	for _, s := range AdmittedStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// WeeklySchedule 星期(0=周日..6=周六) -> 时段 ID，值为 nil 的天视为未选
type WeeklySchedule map[int]*int64

// SelectedDays 按星期升序返回所有选了时段的天
func (w WeeklySchedule) SelectedDays() []int {
	days := make([]int, 0, len(w))
	for day, id := range w {
		if id != nil {
			days = append(days, day)
		}
	}
	sort.Ints(days)
	return days
}

// SlotIDs 按星期顺序返回选中的时段 ID
func (w WeeklySchedule) SlotIDs() []int64 {
	days := w.SelectedDays()
	ids := make([]int64, 0, len(days))
	for _, day := range days {
		ids = append(ids, *w[day])
	}
	return ids
}

// HasSlot 至少有一天选了时段
func (w WeeklySchedule) HasSlot() bool {
	return len(w.SelectedDays()) > 0
}

type Subscription struct {
	ID                int64                              `gorm:"primaryKey" json:"id"`
	Code              string                             `gorm:"size:40;uniqueIndex;not null" json:"code"`
	UserID            int64                              `gorm:"not null;index" json:"user_id"`
	ServiceID         int64                              `gorm:"not null;index:idx_subscription_bucket,priority:1" json:"service_id"`
	Service           *Service                           `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	ChildName         string                             `gorm:"size:100;not null" json:"child_name"`
	ChildAgeMonths    int                                `gorm:"not null" json:"child_age_months"`
	ParentName        string                             `gorm:"size:100;not null" json:"parent_name"`
	ParentEmail       string                             `gorm:"size:100;not null" json:"parent_email"`
	ParentPhone       string                             `gorm:"size:30;not null" json:"parent_phone"`
	StartYear         int                                `gorm:"not null;index:idx_subscription_bucket,priority:2" json:"start_year"`
	StartMonth        int                                `gorm:"not null;index:idx_subscription_bucket,priority:3" json:"start_month"`
	WeeklySchedule    datatypes.JSONType[WeeklySchedule] `json:"weekly_schedule"`
	SessionsPerMonth  int                                `gorm:"not null" json:"sessions_per_month"`
	SpecialRequests   string                             `gorm:"type:text" json:"special_requests,omitempty"`
	BaseMonthlyPrice  decimal.Decimal                    `gorm:"type:decimal(10,2);not null" json:"base_monthly_price"`
	DiscountAmount    decimal.Decimal                    `gorm:"type:decimal(10,2);not null" json:"discount_amount"`
	FinalMonthlyPrice decimal.Decimal                    `gorm:"type:decimal(10,2);not null" json:"final_monthly_price"`
	PromotionID       *int64                             `gorm:"index" json:"promotion_id,omitempty"`
	PromotionCode     string                             `gorm:"size:50" json:"promotion_code,omitempty"`
	Status            string                             `gorm:"size:20;not null;index" json:"status"` // pending, active, completed, cancelled
	CreatedAt         time.Time                          `json:"created_at"`
	UpdatedAt         time.Time                          `json:"updated_at"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

// Schedule 反序列化后的每周时间表
func (s *Subscription) Schedule() WeeklySchedule {
	return s.WeeklySchedule.Data()
}
