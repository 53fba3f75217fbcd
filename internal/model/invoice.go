package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	InvoiceTypeRegistration = "registration"

	InvoiceStatusPending = "pending"
	InvoiceStatusPaid    = "paid"
)

type Invoice struct {
	ID             int64           `gorm:"primaryKey" json:"id"`
	InvoiceNumber  string          `gorm:"size:40;uniqueIndex;not null" json:"invoice_number"`
	SubscriptionID int64           `gorm:"not null;index" json:"subscription_id"`
	UserID         int64           `gorm:"not null;index" json:"user_id"`
	Type           string          `gorm:"size:20;not null" json:"type"`
	Status         string          `gorm:"size:20;not null;index" json:"status"`
	CustomerName   string          `gorm:"size:100;not null" json:"customer_name"`
	CustomerEmail  string          `gorm:"size:100;not null" json:"customer_email"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"discount_amount"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	IssuedAt       time.Time       `gorm:"not null" json:"issued_at"`
	DueDate        time.Time       `gorm:"not null" json:"due_date"`
	Items          []InvoiceItem   `gorm:"foreignKey:InvoiceID" json:"items,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (Invoice) TableName() string {
	return "invoices"
}

type InvoiceItem struct {
	ID          int64           `gorm:"primaryKey" json:"id"`
	InvoiceID   int64           `gorm:"not null;index" json:"invoice_id"`
	Description string          `gorm:"size:255;not null" json:"description"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Amount      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (InvoiceItem) TableName() string {
	return "invoice_items"
}
