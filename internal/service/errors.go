package service

import (
	"errors"
	"fmt"

	"github.com/qs3c/kidcare_server/internal/promotion"
)

var (
	ErrValidation           = errors.New("invalid subscription request")
	ErrNoScheduleSelected   = errors.New("select at least one day in the weekly schedule")
	ErrServiceUnavailable   = errors.New("service not found or not available")
	ErrInvalidPromotionCode = errors.New("invalid promotion code")
	ErrPromotionIneligible  = errors.New("promotion code cannot be applied")
	ErrCapacityExceeded     = errors.New("service is fully booked for the selected month")
	ErrPersistence          = errors.New("failed to save subscription")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrInvalidTransition    = errors.New("invalid subscription status transition")
)

// ValidationError 请求字段校验失败
type ValidationError struct {
	Field string
	Msg   string
	Err   error // 更具体的原因，可为空
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func (e *ValidationError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrValidation, e.Err}
	}
	return []error{ErrValidation}
}

// CapacityError 名额已满
type CapacityError struct {
	ServiceID int64
	Month     int
	Year      int
	Current   int
	Max       int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("service is fully booked for %02d/%d (%d of %d places taken)", e.Month, e.Year, e.Current, e.Max)
}

func (e *CapacityError) Unwrap() error {
	return ErrCapacityExceeded
}

// PromotionError 优惠码不满足使用条件
type PromotionError struct {
	Code    string
	Reason  promotion.Reason
	Message string
}

func (e *PromotionError) Error() string {
	return fmt.Sprintf("promotion %s cannot be applied: %s", e.Code, e.Message)
}

func (e *PromotionError) Unwrap() error {
	return ErrPromotionIneligible
}
