package invoicepdf

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/kidcare_server/internal/model"
)

func TestRender(t *testing.T) {
	issued := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	doc := &Document{
		SiteName:         "Little Steps",
		ServiceName:      "Toddler Care",
		ChildName:        "Mia",
		SubscriptionCode: "SUB-1",
		Invoice: &model.Invoice{
			InvoiceNumber:  "INV-260901100000-ABC123",
			CustomerName:   "Jordan Lee",
			CustomerEmail:  "jordan@example.com",
			Subtotal:       decimal.RequireFromString("150"),
			DiscountAmount: decimal.RequireFromString("30"),
			TotalAmount:    decimal.RequireFromString("120"),
			IssuedAt:       issued,
			DueDate:        issued.AddDate(0, 0, 7),
			Items: []model.InvoiceItem{{
				Description: "Toddler Care: 8 sessions per month (standard price) - 150.00",
				Quantity:    1,
				UnitPrice:   decimal.RequireFromString("120"),
				Amount:      decimal.RequireFromString("120"),
			}},
		},
	}

	data, err := Render(doc)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
	assert.True(t, bytes.Contains(data, []byte("%%EOF")))
}

func TestRender_NilInvoice(t *testing.T) {
	_, err := Render(&Document{})
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	long := strings.Repeat("a", 70)
	assert.Len(t, truncate(long, 60), 60)
}
