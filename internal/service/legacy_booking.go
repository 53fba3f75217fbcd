package service

import (
	"time"

	"github.com/qs3c/kidcare_server/internal/model"
)

// ProjectBooking 把订阅投影为旧版单日期预约。
// 日期取开始月份的 1 号，时间取按星期升序第一个能解析到的时段开始时间，都解析不到时用 defaultTime。
func ProjectBooking(sub *model.Subscription, slots map[int64]*model.ScheduleSlot, defaultTime string) *model.Booking {
	bookingTime := defaultTime
	for _, id := range sub.Schedule().SlotIDs() {
		if slot, ok := slots[id]; ok && slot.StartTime != "" {
			bookingTime = slot.StartTime
			break
		}
	}

	return &model.Booking{
		BookingCode:     sub.Code,
		SubscriptionID:  sub.ID,
		UserID:          sub.UserID,
		ServiceID:       sub.ServiceID,
		ChildName:       sub.ChildName,
		ChildAge:        sub.ChildAgeMonths,
		ParentName:      sub.ParentName,
		ParentEmail:     sub.ParentEmail,
		ParentPhone:     sub.ParentPhone,
		BookingDate:     time.Date(sub.StartYear, time.Month(sub.StartMonth), 1, 0, 0, 0, 0, time.UTC),
		BookingTime:     bookingTime,
		SpecialRequests: sub.SpecialRequests,
		TotalPrice:      sub.FinalMonthlyPrice,
		Status:          sub.Status,
	}
}
