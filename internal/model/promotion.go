package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	DiscountTypePercentage  = "percentage"
	DiscountTypeFixedAmount = "fixed_amount"
	DiscountTypeFreeService = "free_service"
)

type Promotion struct {
	ID                 int64                      `gorm:"primaryKey" json:"id"`
	Code               string                     `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Name               string                     `gorm:"size:100;not null" json:"name"`
	Description        string                     `gorm:"type:text" json:"description"`
	DiscountType       string                     `gorm:"size:20;not null" json:"discount_type"` // percentage, fixed_amount, free_service
	DiscountValue      decimal.Decimal            `gorm:"type:decimal(10,2);not null" json:"discount_value"`
	MinAgeMonths       *int                       `json:"min_age_months,omitempty"`
	MaxAgeMonths       *int                       `json:"max_age_months,omitempty"`
	ApplicableServices datatypes.JSONSlice[int64] `json:"applicable_services,omitempty"` // 为空表示全部服务
	StartDate          time.Time                  `gorm:"not null" json:"start_date"`
	EndDate            time.Time                  `gorm:"not null" json:"end_date"`
	MaxUses            *int                       `json:"max_uses,omitempty"`
	UsedCount          int                        `gorm:"not null;default:0" json:"used_count"`
	IsActive           bool                       `gorm:"not null;index" json:"is_active"`
	CreatedAt          time.Time                  `json:"created_at"`
	UpdatedAt          time.Time                  `json:"updated_at"`
}

func (Promotion) TableName() string {
	return "promotions"
}
