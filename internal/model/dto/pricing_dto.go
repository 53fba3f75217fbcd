package dto

import (
	"github.com/qs3c/kidcare_server/internal/pricing"
)

// PricingQuote 报价
type PricingQuote struct {
	ServiceID   int64  `json:"service_id"`
	ServiceName string `json:"service_name"`
	Description string `json:"description"`
	pricing.Breakdown
}

// SessionOptionsResponse 可选课时列表
type SessionOptionsResponse struct {
	ServiceID        int64                   `json:"service_id"`
	IncludedSessions int                     `json:"included_sessions"`
	Options          []pricing.SessionOption `json:"options"`
}

// CapacityResponse 某月名额情况
type CapacityResponse struct {
	ServiceID int64 `json:"service_id"`
	Month     int   `json:"month"`
	Year      int   `json:"year"`
	OK        bool  `json:"ok"`
	Current   int   `json:"current"`
	Max       *int  `json:"max"` // null = 不限
	Remaining *int  `json:"remaining"`
}
