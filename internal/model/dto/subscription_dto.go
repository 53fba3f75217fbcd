package dto

import (
	"github.com/shopspring/decimal"
)

// CreateSubscriptionRequest 创建订阅请求，字段校验在 service 层完成
type CreateSubscriptionRequest struct {
	ServiceID        int64             `json:"service_id" binding:"required"`
	ChildName        string            `json:"child_name"`
	ChildAgeMonths   *int              `json:"child_age_months"`
	ParentName       string            `json:"parent_name"`
	ParentEmail      string            `json:"parent_email"`
	ParentPhone      string            `json:"parent_phone"`
	StartMonth       int               `json:"start_month"`
	StartYear        int               `json:"start_year"`
	WeeklySchedule   map[string]*int64 `json:"weekly_schedule" binding:"weekly_schedule"` // "0".."6" -> slot id
	SessionsPerMonth int               `json:"sessions_per_month"`
	SpecialRequests  string            `json:"special_requests,omitempty"`
	PromotionCode    string            `json:"promotion_code,omitempty"`
}

// SubscriptionDetail 订阅详情
type SubscriptionDetail struct {
	ID                 int64             `json:"id"`
	Code               string            `json:"code"`
	Status             string            `json:"status"`
	ServiceID          int64             `json:"service_id"`
	ServiceName        string            `json:"service_name,omitempty"`
	ChildName          string            `json:"child_name"`
	ChildAgeMonths     int               `json:"child_age_months"`
	ParentName         string            `json:"parent_name"`
	ParentEmail        string            `json:"parent_email"`
	ParentPhone        string            `json:"parent_phone"`
	StartMonth         int               `json:"start_month"`
	StartYear          int               `json:"start_year"`
	WeeklySchedule     map[string]*int64 `json:"weekly_schedule"`
	SessionsPerMonth   int               `json:"sessions_per_month"`
	SpecialRequests    string            `json:"special_requests,omitempty"`
	PricingDescription string            `json:"pricing_description,omitempty"`
	BaseMonthlyPrice   decimal.Decimal   `json:"base_monthly_price"`
	DiscountAmount     decimal.Decimal   `json:"discount_amount"`
	FinalMonthlyPrice  decimal.Decimal   `json:"final_monthly_price"`
	PromotionCode      string            `json:"promotion_code,omitempty"`
	InvoiceNumber      string            `json:"invoice_number,omitempty"`
	CreatedAt          string            `json:"created_at"`
	UpdatedAt          string            `json:"updated_at"`
	Warnings           []string          `json:"warnings,omitempty"`
}

// SubscriptionListItem 订阅列表项
type SubscriptionListItem struct {
	Code              string          `json:"code"`
	Status            string          `json:"status"`
	ServiceName       string          `json:"service_name,omitempty"`
	ChildName         string          `json:"child_name"`
	StartMonth        int             `json:"start_month"`
	StartYear         int             `json:"start_year"`
	SessionsPerMonth  int             `json:"sessions_per_month"`
	FinalMonthlyPrice decimal.Decimal `json:"final_monthly_price"`
	CreatedAt         string          `json:"created_at"`
}

// UpdateSubscriptionStatusRequest 订阅状态变更
type UpdateSubscriptionStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active completed cancelled"`
}
