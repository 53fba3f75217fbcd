package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// SessionOption 前端下拉框使用的课时选项
type SessionOption struct {
	Sessions    int             `json:"sessions"`
	Label       string          `json:"label"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	Regime      Regime          `json:"regime"`
	Recommended bool            `json:"recommended"`
}

// Describe 生成价格说明文字
func Describe(b Breakdown) string {
	switch b.Regime {
	case RegimeReduced:
		return fmt.Sprintf("%d sessions per month (reduced: %d/%d of the monthly price) - %s",
			b.Sessions, b.Sessions, b.IncludedSessions, b.TotalPrice.StringFixed(currencyPlaces))
	case RegimeAdditional:
		return fmt.Sprintf("%d sessions per month (%d included + %d additional at %s each) - %s",
			b.Sessions, b.BaseSessions, b.AdditionalSessions,
			b.PerSessionRate.StringFixed(currencyPlaces), b.TotalPrice.StringFixed(currencyPlaces))
	default:
		return fmt.Sprintf("%d sessions per month (standard price) - %s",
			b.Sessions, b.TotalPrice.StringFixed(currencyPlaces))
	}
}

// SessionOptions 列出区间内每个可选课时数及对应价格
func (b Bounds) SessionOptions(basePrice decimal.Decimal, includedSessions int) ([]SessionOption, error) {
	options := make([]SessionOption, 0, b.Max-b.Min+1)
	for n := b.Min; n <= b.Max; n++ {
		breakdown, err := b.Compute(basePrice, n, includedSessions)
		if err != nil {
			return nil, err
		}
		options = append(options, SessionOption{
			Sessions:    n,
			Label:       Describe(breakdown),
			TotalPrice:  breakdown.TotalPrice,
			Regime:      breakdown.Regime,
			Recommended: n == includedSessions,
		})
	}
	return options, nil
}

// SessionOptions 使用默认区间
func SessionOptions(basePrice decimal.Decimal, includedSessions int) ([]SessionOption, error) {
	return DefaultBounds.SessionOptions(basePrice, includedSessions)
}
