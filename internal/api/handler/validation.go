package handler

import (
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators 注册自定义 binding 规则，可重复调用
func RegisterValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("weekly_schedule", validateWeeklySchedule)
		}
	})
}

// validateWeeklySchedule 时间表的键必须是 "0".."6"，且每天只出现一次
func validateWeeklySchedule(fl validator.FieldLevel) bool {
	schedule, ok := fl.Field().Interface().(map[string]*int64)
	if !ok {
		return false
	}
	seen := make(map[int]bool, len(schedule))
	for key, slotID := range schedule {
		day, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil || day < 0 || day > 6 || seen[day] {
			return false
		}
		seen[day] = true
		if slotID != nil && *slotID <= 0 {
			return false
		}
	}
	return true
}
