package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Booking 旧版单日期预约结构，仅为兼容老的读取路径而保留，数据来源于 Subscription
type Booking struct {
	ID              int64           `gorm:"primaryKey" json:"id"`
	BookingCode     string          `gorm:"size:40;uniqueIndex;not null" json:"booking_code"`
	SubscriptionID  int64           `gorm:"not null;uniqueIndex" json:"subscription_id"`
	UserID          int64           `gorm:"not null;index" json:"user_id"`
	ServiceID       int64           `gorm:"not null;index" json:"service_id"`
	ChildName       string          `gorm:"size:100;not null" json:"child_name"`
	ChildAge        int             `gorm:"not null" json:"child_age"`
	ParentName      string          `gorm:"size:100;not null" json:"parent_name"`
	ParentEmail     string          `gorm:"size:100;not null" json:"parent_email"`
	ParentPhone     string          `gorm:"size:30;not null" json:"parent_phone"`
	BookingDate     time.Time       `gorm:"not null" json:"booking_date"`
	BookingTime     string          `gorm:"size:5;not null" json:"booking_time"`
	SpecialRequests string          `gorm:"type:text" json:"special_requests,omitempty"`
	TotalPrice      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_price"`
	Status          string          `gorm:"size:20;not null;index" json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (Booking) TableName() string {
	return "bookings"
}
