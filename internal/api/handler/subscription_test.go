package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/kidcare_server/internal/model/dto"
	"github.com/qs3c/kidcare_server/internal/pkg/response"
	"github.com/qs3c/kidcare_server/internal/testutil"
)

func subscriptionRouter(env *handlerEnv, userID int64) *gin.Engine {
	r := gin.New()
	g := r.Group("/subscriptions", mockAuth(userID))
	g.POST("", env.subscription.Create)
	g.GET("", env.subscription.List)
	g.GET("/:code", env.subscription.Get)
	g.POST("/:code/cancel", env.subscription.Cancel)
	return r
}

func createBody(serviceID, slotID int64) gin.H {
	month, year := nextMonth()
	return gin.H{
		"service_id":         serviceID,
		"child_name":         "Mia",
		"child_age_months":   24,
		"parent_name":        "Jordan Lee",
		"parent_email":       "jordan@example.com",
		"parent_phone":       "555-0100",
		"start_month":        month,
		"start_year":         year,
		"weekly_schedule":    gin.H{"1": slotID, "3": nil},
		"sessions_per_month": 8,
	}
}

func TestSubscriptionHandler_Create(t *testing.T) {
	env := setupHandlers(t)
	svc := testutil.TestService(t, env.db)
	slot := testutil.TestSlot(t, env.db, svc.ID, 1, "08:30", "12:00")

	w := performRequest(subscriptionRouter(env, 7), http.MethodPost, "/subscriptions", createBody(svc.ID, slot.ID))

	assert.Equal(t, http.StatusOK, w.Code)
	resp := parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code, resp.Message)

	var detail dto.SubscriptionDetail
	decodeData(t, resp, &detail)
	assert.Regexp(t, `^SUB-\d{12}-[0-9A-F]{6}$`, detail.Code)
	assert.Equal(t, "pending", detail.Status)
	assert.True(t, decimal.RequireFromString("150").Equal(detail.FinalMonthlyPrice))
	assert.Equal(t, "8 sessions per month (standard price) - 150.00", detail.PricingDescription)
	assert.NotEmpty(t, detail.InvoiceNumber)
	require.Contains(t, detail.WeeklySchedule, "1")
	assert.Equal(t, slot.ID, *detail.WeeklySchedule["1"])

	assert.Equal(t, int64(1), testutil.CountRows(t, env.db, "subscriptions"))
}

func TestSubscriptionHandler_Create_BadRequests(t *testing.T) {
	env := setupHandlers(t)
	svc := testutil.TestService(t, env.db)
	slot := testutil.TestSlot(t, env.db, svc.ID, 1, "08:30", "12:00")

	tests := []struct {
		name   string
		mutate func(gin.H)
		code   int
	}{
		{"invalid json field type", func(b gin.H) { b["service_id"] = "abc" }, response.CodeParamError},
		{"day key out of range", func(b gin.H) { b["weekly_schedule"] = gin.H{"9": slot.ID} }, response.CodeParamError},
		{"same day listed twice", func(b gin.H) { b["weekly_schedule"] = gin.H{"1": slot.ID, " 1": nil} }, response.CodeParamError},
		{"no day selected", func(b gin.H) { b["weekly_schedule"] = gin.H{"1": nil} }, response.CodeParamError},
		{"missing child age", func(b gin.H) { delete(b, "child_age_months") }, response.CodeParamError},
		{"bad email", func(b gin.H) { b["parent_email"] = "not-an-email" }, response.CodeParamError},
		{"sessions out of range", func(b gin.H) { b["sessions_per_month"] = 30 }, response.CodeParamError},
		{"unknown service", func(b gin.H) { b["service_id"] = svc.ID + 100 }, response.CodeResourceNotFound},
		{"unknown promotion", func(b gin.H) { b["promotion_code"] = "NOPE" }, response.CodePromotionInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := createBody(svc.ID, slot.ID)
			tt.mutate(body)

			w := performRequest(subscriptionRouter(env, 7), http.MethodPost, "/subscriptions", body)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.code, parseResponse(t, w).Code)
		})
	}

	assert.Equal(t, int64(0), testutil.CountRows(t, env.db, "subscriptions"))
}

func TestSubscriptionHandler_Create_CapacityFull(t *testing.T) {
	env := setupHandlers(t)
	svc := testutil.TestService(t, env.db, testutil.WithCapacity(1))
	slot := testutil.TestSlot(t, env.db, svc.ID, 1, "08:30", "12:00")
	month, year := nextMonth()
	testutil.TestSubscription(t, env.db, svc.ID, year, month, "active")

	w := performRequest(subscriptionRouter(env, 7), http.MethodPost, "/subscriptions", createBody(svc.ID, slot.ID))

	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeCapacityFull, resp.Code)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(1), data["current"])
	assert.Equal(t, float64(1), data["max"])
}

func TestSubscriptionHandler_Create_IneligiblePromotion(t *testing.T) {
	env := setupHandlers(t)
	svc := testutil.TestService(t, env.db)
	slot := testutil.TestSlot(t, env.db, svc.ID, 1, "08:30", "12:00")
	testutil.TestPromotion(t, env.db, "FULL", testutil.WithMaxUses(1, 1))

	body := createBody(svc.ID, slot.ID)
	body["promotion_code"] = "FULL"
	w := performRequest(subscriptionRouter(env, 7), http.MethodPost, "/subscriptions", body)

	resp := parseResponse(t, w)
	assert.Equal(t, response.CodePromotionInvalid, resp.Code)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "FULL", data["code"])
	assert.NotEmpty(t, data["reason"])
}

func TestSubscriptionHandler_GetListCancel(t *testing.T) {
	env := setupHandlers(t)
	svc := testutil.TestService(t, env.db, testutil.WithCapacity(1))
	slot := testutil.TestSlot(t, env.db, svc.ID, 1, "08:30", "12:00")
	owner := subscriptionRouter(env, 7)
	stranger := subscriptionRouter(env, 8)

	w := performRequest(owner, http.MethodPost, "/subscriptions", createBody(svc.ID, slot.ID))
	var created dto.SubscriptionDetail
	decodeData(t, parseResponse(t, w), &created)
	require.NotEmpty(t, created.Code)

	// 详情只对本人可见
	w = performRequest(owner, http.MethodGet, "/subscriptions/"+created.Code, nil)
	assert.Equal(t, response.CodeSuccess, parseResponse(t, w).Code)
	w = performRequest(stranger, http.MethodGet, "/subscriptions/"+created.Code, nil)
	assert.Equal(t, response.CodeResourceNotFound, parseResponse(t, w).Code)

	w = performRequest(owner, http.MethodGet, "/subscriptions?page=1&page_size=10", nil)
	var page response.PageData
	decodeData(t, parseResponse(t, w), &page)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 10, page.PageSize)

	w = performRequest(stranger, http.MethodPost, "/subscriptions/"+created.Code+"/cancel", nil)
	assert.Equal(t, response.CodeResourceNotFound, parseResponse(t, w).Code)

	w = performRequest(owner, http.MethodPost, "/subscriptions/"+created.Code+"/cancel", nil)
	var cancelled dto.SubscriptionDetail
	decodeData(t, parseResponse(t, w), &cancelled)
	assert.Equal(t, "cancelled", cancelled.Status)

	// 再取消一次属于非法状态变更
	w = performRequest(owner, http.MethodPost, "/subscriptions/"+created.Code+"/cancel", nil)
	assert.Equal(t, response.CodeStateConflict, parseResponse(t, w).Code)

	// 名额已释放，可以再次开通
	w = performRequest(owner, http.MethodPost, "/subscriptions", createBody(svc.ID, slot.ID))
	assert.Equal(t, response.CodeSuccess, parseResponse(t, w).Code)
}

func TestSubscriptionHandler_RequiresUser(t *testing.T) {
	env := setupHandlers(t)
	r := gin.New()
	r.GET("/subscriptions", env.subscription.List)

	w := performRequest(r, http.MethodGet, "/subscriptions", nil)
	assert.Equal(t, response.CodeAuthFailed, parseResponse(t, w).Code)
}

func TestSubscriptionHandler_List_ClampsPageSize(t *testing.T) {
	env := setupHandlers(t)
	w := performRequest(subscriptionRouter(env, 7), http.MethodGet, "/subscriptions?page=0&page_size=500", nil)

	var page response.PageData
	decodeData(t, parseResponse(t, w), &page)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.PageSize)
	assert.Equal(t, int64(0), page.Total)
	assert.Empty(t, page.Items)
}
