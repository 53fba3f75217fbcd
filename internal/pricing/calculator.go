// Package pricing 计算按课时数订阅的月度价格。
//
// 两种计价区间：
//   - 标准/加课：sessions >= included，超出部分按 base/included 的单价加收
//   - 减课：MinSessions <= sessions < included，按 sessions/included 的比例折算
//
// 所有函数都是纯函数，不做任何 I/O。
package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	DefaultIncludedSessions = 8
	MinSessions             = 4
	MaxSessions             = 20

	currencyPlaces = 2
)

var (
	ErrInvalidSessionCount     = errors.New("invalid session count")
	ErrNegativePrice           = errors.New("base price must not be negative")
	ErrInvalidIncludedSessions = errors.New("included sessions must be at least 1")
)

type Regime string

const (
	RegimeStandard   Regime = "standard"
	RegimeAdditional Regime = "additional"
	RegimeReduced    Regime = "reduced"
)

// Breakdown 价格明细
type Breakdown struct {
	BasePrice          decimal.Decimal `json:"base_price"`
	PerSessionRate     decimal.Decimal `json:"per_session_rate"`
	AdditionalPrice    decimal.Decimal `json:"additional_price"`
	TotalPrice         decimal.Decimal `json:"total_price"`
	Sessions           int             `json:"sessions"`
	IncludedSessions   int             `json:"included_sessions"`
	BaseSessions       int             `json:"base_sessions"`
	AdditionalSessions int             `json:"additional_sessions"`
	Regime             Regime          `json:"regime"`
}

// Bounds 可选课时区间
type Bounds struct {
	Min int
	Max int
}

// DefaultBounds 默认的课时区间 [4, 20]
var DefaultBounds = Bounds{Min: MinSessions, Max: MaxSessions}

// Contains 判断课时数是否落在区间内
func (b Bounds) Contains(sessions int) bool {
	return sessions >= b.Min && sessions <= b.Max
}

// ComputeSessionPricing 使用默认课时区间计算价格
func ComputeSessionPricing(basePrice decimal.Decimal, sessions, includedSessions int) (Breakdown, error) {
	return DefaultBounds.Compute(basePrice, sessions, includedSessions)
}

// Compute 按给定区间计算价格明细
func (b Bounds) Compute(basePrice decimal.Decimal, sessions, includedSessions int) (Breakdown, error) {
	if basePrice.IsNegative() {
		return Breakdown{}, ErrNegativePrice
	}
	if includedSessions < 1 {
		return Breakdown{}, ErrInvalidIncludedSessions
	}
	if sessions < 1 || !b.Contains(sessions) {
		return Breakdown{}, fmt.Errorf("%w: %d (allowed %d-%d)", ErrInvalidSessionCount, sessions, b.Min, b.Max)
	}

	included := decimal.NewFromInt(int64(includedSessions))
	rate := basePrice.Div(included)

	if sessions < includedSessions {
		// 减课：按比例折算，四舍五入到分
		total := basePrice.Mul(decimal.NewFromInt(int64(sessions))).Div(included).Round(currencyPlaces)
		return Breakdown{
			BasePrice:          basePrice,
			PerSessionRate:     rate.Round(currencyPlaces),
			AdditionalPrice:    decimal.Zero,
			TotalPrice:         total,
			Sessions:           sessions,
			IncludedSessions:   includedSessions,
			BaseSessions:       sessions,
			AdditionalSessions: 0,
			Regime:             RegimeReduced,
		}, nil
	}

	additional := sessions - includedSessions
	additionalPrice := basePrice.Mul(decimal.NewFromInt(int64(additional))).Div(included).Round(currencyPlaces)

	regime := RegimeStandard
	if additional > 0 {
		regime = RegimeAdditional
	}

	return Breakdown{
		BasePrice:          basePrice,
		PerSessionRate:     rate.Round(currencyPlaces),
		AdditionalPrice:    additionalPrice,
		TotalPrice:         basePrice.Add(additionalPrice),
		Sessions:           sessions,
		IncludedSessions:   includedSessions,
		BaseSessions:       includedSessions,
		AdditionalSessions: additional,
		Regime:             regime,
	}, nil
}
