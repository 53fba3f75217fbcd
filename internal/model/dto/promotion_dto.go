package dto

import (
	"github.com/shopspring/decimal"
)

// PromotionPreviewRequest 优惠码预览
type PromotionPreviewRequest struct {
	Code             string `json:"code" binding:"required,max=50"`
	ServiceID        int64  `json:"service_id" binding:"required"`
	ChildAgeMonths   int    `json:"child_age_months" binding:"min=0"`
	SessionsPerMonth int    `json:"sessions_per_month" binding:"required"`
}

// PromotionPreviewResponse 预览结果，不占用使用次数
type PromotionPreviewResponse struct {
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Eligible       bool            `json:"eligible"`
	Reason         string          `json:"reason,omitempty"`
	Message        string          `json:"message,omitempty"`
	OriginalPrice  decimal.Decimal `json:"original_price"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	FinalPrice     decimal.Decimal `json:"final_price"`
	IsFreeService  bool            `json:"is_free_service"`
}
