package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const DefaultIncludedSessions = 8

// Service 可订阅的托育服务（目录数据，本模块只读）
type Service struct {
	ID               int64           `gorm:"primaryKey" json:"id"`
	Name             string          `gorm:"size:100;not null" json:"name"`
	Description      string          `gorm:"type:text" json:"description"`
	BasePrice        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"base_price"`
	IncludedSessions int             `gorm:"not null;default:8" json:"included_sessions"`
	Capacity         *int            `json:"capacity,omitempty"` // nil = unlimited
	IsActive         bool            `gorm:"not null;index" json:"is_active"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (Service) TableName() string {
	return "services"
}

// Included 返回价格中包含的课时数，未配置时回落到默认值
func (s *Service) Included() int {
	if s.IncludedSessions <= 0 {
		return DefaultIncludedSessions
	}
	return s.IncludedSessions
}

type ScheduleSlot struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	ServiceID int64     `gorm:"not null;index" json:"service_id"`
	DayOfWeek int       `gorm:"not null" json:"day_of_week"`       // 0=Sunday..6=Saturday
	StartTime string    `gorm:"size:5;not null" json:"start_time"` // HH:MM
	EndTime   string    `gorm:"size:5;not null" json:"end_time"`
	IsActive  bool      `gorm:"not null" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (ScheduleSlot) TableName() string {
	return "schedule_slots"
}
