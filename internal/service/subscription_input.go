package service

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/qs3c/kidcare_server/internal/model"
	"github.com/qs3c/kidcare_server/internal/model/dto"
)

// CreateSubscriptionInput 开通订阅的输入
type CreateSubscriptionInput struct {
	ServiceID        int64                `json:"service_id" validate:"required,gt=0"`
	ChildName        string               `json:"child_name" validate:"required,max=100"`
	ChildAgeMonths   int                  `json:"child_age_months" validate:"gte=0,lte=216"`
	ParentName       string               `json:"parent_name" validate:"required,max=100"`
	ParentEmail      string               `json:"parent_email" validate:"required,email,max=100"`
	ParentPhone      string               `json:"parent_phone" validate:"required,max=30"`
	StartMonth       int                  `json:"start_month" validate:"required,min=1,max=12"`
	StartYear        int                  `json:"start_year" validate:"required,min=2000,max=2100"`
	WeeklySchedule   model.WeeklySchedule `json:"weekly_schedule" validate:"dive,keys,min=0,max=6,endkeys"`
	SessionsPerMonth int                  `json:"sessions_per_month" validate:"required"`
	SpecialRequests  string               `json:"special_requests" validate:"max=2000"`
	PromotionCode    string               `json:"promotion_code" validate:"max=50"`
}

var inputValidator = newInputValidator()

func newInputValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate 校验必填字段和取值范围，再检查每周时间表
func (in *CreateSubscriptionInput) Validate() error {
	in.ChildName = strings.TrimSpace(in.ChildName)
	in.ParentName = strings.TrimSpace(in.ParentName)
	in.ParentEmail = strings.TrimSpace(in.ParentEmail)
	in.ParentPhone = strings.TrimSpace(in.ParentPhone)
	in.PromotionCode = strings.TrimSpace(in.PromotionCode)

	if err := inputValidator.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return fieldError(fieldErrs[0])
		}
		return &ValidationError{Msg: err.Error()}
	}

	if !in.WeeklySchedule.HasSlot() {
		return &ValidationError{Field: "weekly_schedule", Msg: ErrNoScheduleSelected.Error(), Err: ErrNoScheduleSelected}
	}
	return nil
}

func fieldError(fe validator.FieldError) *ValidationError {
	field := fe.Field()
	// map key 的错误字段形如 weekly_schedule[7]
	if i := strings.IndexByte(field, '['); i > 0 {
		field = field[:i]
	}

	var msg string
	switch fe.Tag() {
	case "required":
		msg = "is required"
	case "email":
		msg = "must be a valid email address"
	case "min", "gte":
		msg = fmt.Sprintf("must be at least %s", fe.Param())
	case "max", "lte":
		if fe.Kind() == reflect.String {
			msg = fmt.Sprintf("must be at most %s characters", fe.Param())
		} else {
			msg = fmt.Sprintf("must be at most %s", fe.Param())
		}
	case "gt":
		msg = fmt.Sprintf("must be greater than %s", fe.Param())
	default:
		msg = "is invalid"
	}
	if field == "weekly_schedule" {
		msg = "day of week must be between 0 (Sunday) and 6 (Saturday)"
	}
	return &ValidationError{Field: field, Msg: msg}
}

// InputFromRequest 把 HTTP 请求转换为开通输入，星期键必须是 0-6 的数字
func InputFromRequest(req *dto.CreateSubscriptionRequest) (*CreateSubscriptionInput, error) {
	if req.ChildAgeMonths == nil {
		return nil, &ValidationError{Field: "child_age_months", Msg: "is required"}
	}

	schedule, err := ParseWeeklySchedule(req.WeeklySchedule)
	if err != nil {
		return nil, err
	}

	return &CreateSubscriptionInput{
		ServiceID:        req.ServiceID,
		ChildName:        req.ChildName,
		ChildAgeMonths:   *req.ChildAgeMonths,
		ParentName:       req.ParentName,
		ParentEmail:      req.ParentEmail,
		ParentPhone:      req.ParentPhone,
		StartMonth:       req.StartMonth,
		StartYear:        req.StartYear,
		WeeklySchedule:   schedule,
		SessionsPerMonth: req.SessionsPerMonth,
		SpecialRequests:  req.SpecialRequests,
		PromotionCode:    req.PromotionCode,
	}, nil
}

// ParseWeeklySchedule 解析 {"1": 12, "3": null} 形式的时间表
func ParseWeeklySchedule(raw map[string]*int64) (model.WeeklySchedule, error) {
	schedule := make(model.WeeklySchedule, len(raw))
	for key, slotID := range raw {
		day, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil || day < 0 || day > 6 {
			return nil, &ValidationError{Field: "weekly_schedule", Msg: fmt.Sprintf("invalid day of week %q", key)}
		}
		// "1"、" 1"、"01" 都指周一，保留哪个取决于 map 遍历顺序
		if _, dup := schedule[day]; dup {
			return nil, &ValidationError{Field: "weekly_schedule", Msg: fmt.Sprintf("day of week %d listed more than once", day)}
		}
		schedule[day] = slotID
	}
	return schedule, nil
}

// FormatWeeklySchedule ParseWeeklySchedule 的逆操作
func FormatWeeklySchedule(schedule model.WeeklySchedule) map[string]*int64 {
	out := make(map[string]*int64, len(schedule))
	for day, slotID := range schedule {
		out[strconv.Itoa(day)] = slotID
	}
	return out
}
