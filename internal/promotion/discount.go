package promotion

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/qs3c/kidcare_server/internal/model"
)

var hundred = decimal.NewFromInt(100)

type Discount struct {
	OriginalPrice  decimal.Decimal `json:"original_price"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	FinalPrice     decimal.Decimal `json:"final_price"`
	IsFreeService  bool            `json:"is_free_service"`
}

// ComputeDiscount 计算折扣金额，保证 0 <= discount <= original 且 final = original - discount
func ComputeDiscount(p *model.Promotion, originalPrice decimal.Decimal) (Discount, error) {
	if originalPrice.IsNegative() {
		return Discount{}, ErrNegativePrice
	}

	var amount decimal.Decimal
	free := false

	switch p.DiscountType {
	case model.DiscountTypePercentage:
		amount = originalPrice.Mul(p.DiscountValue).Div(hundred).Round(2)
	case model.DiscountTypeFixedAmount:
		amount = decimal.Min(p.DiscountValue, originalPrice)
	case model.DiscountTypeFreeService:
		amount = originalPrice
		free = true
	default:
		return Discount{}, fmt.Errorf("%w: %q", ErrUnknownDiscountType, p.DiscountType)
	}

	amount = clamp(amount, originalPrice)

	return Discount{
		OriginalPrice:  originalPrice,
		DiscountAmount: amount,
		FinalPrice:     originalPrice.Sub(amount),
		IsFreeService:  free,
	}, nil
}

func clamp(amount, max decimal.Decimal) decimal.Decimal {
	if amount.IsNegative() {
		return decimal.Zero
	}
	if amount.GreaterThan(max) {
		return max
	}
	return amount
}
