package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/kidcare_server/internal/model/dto"
	"github.com/qs3c/kidcare_server/internal/pkg/response"
	"github.com/qs3c/kidcare_server/internal/service"
)

type PromotionHandler struct {
	promotionService *service.PromotionService
}

func NewPromotionHandler(promotionService *service.PromotionService) *PromotionHandler {
	return &PromotionHandler{
		promotionService: promotionService,
	}
}

// Preview 预览优惠码，不符合条件时 eligible=false 并给出原因
// POST /api/v1/promotions/preview
func (h *PromotionHandler) Preview(c *gin.Context) {
	var req dto.PromotionPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.promotionService.Preview(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, resp)
}
