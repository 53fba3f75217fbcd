package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/kidcare_server/internal/api/middleware"
	"github.com/qs3c/kidcare_server/internal/model/dto"
	"github.com/qs3c/kidcare_server/internal/pkg/response"
	"github.com/qs3c/kidcare_server/internal/service"
)

type SubscriptionHandler struct {
	subscriptionService *service.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
	}
}

// Create 开通订阅
// POST /api/v1/subscriptions
func (h *SubscriptionHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	in, err := service.InputFromRequest(&req)
	if err != nil {
		writeError(c, err)
		return
	}

	detail, err := h.subscriptionService.Create(c.Request.Context(), userID, in)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, detail)
}

// List 当前用户的订阅列表
// GET /api/v1/subscriptions
func (h *SubscriptionHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 50 {
		pageSize = 20
	}

	items, total, err := h.subscriptionService.ListByUser(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		writeError(c, err)
		return
	}

	response.SuccessPage(c, total, page, pageSize, items)
}

// Get 订阅详情
// GET /api/v1/subscriptions/:code
func (h *SubscriptionHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	detail, err := h.subscriptionService.GetByCode(c.Request.Context(), userID, c.Param("code"))
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, detail)
}

// Cancel 取消订阅并释放名额
// POST /api/v1/subscriptions/:code/cancel
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	detail, err := h.subscriptionService.Cancel(c.Request.Context(), userID, c.Param("code"))
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, detail)
}
