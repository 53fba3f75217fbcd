package model

import (
	"time"

	"gorm.io/datatypes"
)

type ChildProfile struct {
	ID                int64          `gorm:"primaryKey" json:"id"`
	SubscriptionID    int64          `gorm:"not null;uniqueIndex" json:"subscription_id"`
	UserID            int64          `gorm:"not null;index" json:"user_id"`
	Name              string         `gorm:"size:100;not null" json:"name"`
	BirthDate         time.Time      `gorm:"not null" json:"birth_date"`
	Allergies         datatypes.JSON `json:"allergies"`          // []
	MedicalInfo       datatypes.JSON `json:"medical_info"`       // {}
	EmergencyContacts datatypes.JSON `json:"emergency_contacts"` // []
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

func (ChildProfile) TableName() string {
	return "child_profiles"
}
