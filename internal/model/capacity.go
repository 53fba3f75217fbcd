package model

import "time"

// CapacityReservation 每个服务每月已占用名额的计数行，用于原子的条件预占
type CapacityReservation struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	ServiceID int64     `gorm:"not null;uniqueIndex:idx_capacity_bucket,priority:1" json:"service_id"`
	Year      int       `gorm:"not null;uniqueIndex:idx_capacity_bucket,priority:2" json:"year"`
	Month     int       `gorm:"not null;uniqueIndex:idx_capacity_bucket,priority:3" json:"month"`
	Admitted  int       `gorm:"not null;default:0" json:"admitted"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CapacityReservation) TableName() string {
	return "capacity_reservations"
}
