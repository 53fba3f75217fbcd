// Package promotion 校验优惠码资格并计算折扣金额，纯函数实现。
package promotion

import (
	"errors"
	"fmt"
	"time"

	"github.com/qs3c/kidcare_server/internal/model"
)

var (
	ErrUnknownDiscountType = errors.New("unknown discount type")
	ErrNegativePrice       = errors.New("original price must not be negative")
)

// Reason 不符合资格的原因，按检查顺序排列
type Reason string

const (
	ReasonInactive             Reason = "inactive"
	ReasonOutsideValidity      Reason = "outside_validity_window"
	ReasonServiceNotApplicable Reason = "service_not_applicable"
	ReasonBelowMinAge          Reason = "below_min_age"
	ReasonAboveMaxAge          Reason = "above_max_age"
	ReasonUsageLimitReached    Reason = "usage_limit_reached"
)

// Reasons 全部原因，顺序即检查顺序
var Reasons = []Reason{
	ReasonInactive,
	ReasonOutsideValidity,
	ReasonServiceNotApplicable,
	ReasonBelowMinAge,
	ReasonAboveMaxAge,
	ReasonUsageLimitReached,
}

type Eligibility struct {
	Eligible bool   `json:"eligible"`
	Reason   Reason `json:"reason,omitempty"`
	Message  string `json:"message,omitempty"`
}

func ineligible(reason Reason, format string, args ...interface{}) Eligibility {
	return Eligibility{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// CheckEligibility 依次检查启用状态、有效期、适用服务、年龄上下限和使用次数
func CheckEligibility(p *model.Promotion, serviceID int64, childAgeMonths int, now time.Time) Eligibility {
	if p == nil || !p.IsActive {
		return ineligible(ReasonInactive, "promotion is not active")
	}

	if now.Before(p.StartDate) {
		return ineligible(ReasonOutsideValidity, "promotion starts on %s", p.StartDate.Format("2006-01-02"))
	}
	if now.After(validUntil(p.EndDate)) {
		return ineligible(ReasonOutsideValidity, "promotion expired on %s", p.EndDate.Format("2006-01-02"))
	}

	if len(p.ApplicableServices) > 0 && !containsService(p.ApplicableServices, serviceID) {
		return ineligible(ReasonServiceNotApplicable, "promotion does not apply to this service")
	}

	if p.MinAgeMonths != nil && childAgeMonths < *p.MinAgeMonths {
		return ineligible(ReasonBelowMinAge, "child must be at least %d months old", *p.MinAgeMonths)
	}
	if p.MaxAgeMonths != nil && childAgeMonths > *p.MaxAgeMonths {
		return ineligible(ReasonAboveMaxAge, "child must be at most %d months old", *p.MaxAgeMonths)
	}

	if p.MaxUses != nil && p.UsedCount >= *p.MaxUses {
		return ineligible(ReasonUsageLimitReached, "promotion usage limit reached")
	}

	return Eligibility{Eligible: true}
}

// validUntil 仅有日期（零点）的结束时间视为包含当天
func validUntil(end time.Time) time.Time {
	if end.Hour() == 0 && end.Minute() == 0 && end.Second() == 0 && end.Nanosecond() == 0 {
		return end.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return end
}

func containsService(ids []int64, serviceID int64) bool {
	for _, id := range ids {
		if id == serviceID {
			return true
		}
	}
	return false
}
