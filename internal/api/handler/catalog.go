package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/kidcare_server/internal/model/dto"
	"github.com/qs3c/kidcare_server/internal/pkg/response"
	"github.com/qs3c/kidcare_server/internal/service"
)

// CatalogHandler 服务的报价、课时选项和名额查询
type CatalogHandler struct {
	pricingService  *service.PricingService
	capacityService *service.CapacityService
}

func NewCatalogHandler(pricingService *service.PricingService, capacityService *service.CapacityService) *CatalogHandler {
	return &CatalogHandler{
		pricingService:  pricingService,
		capacityService: capacityService,
	}
}

func serviceID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.ParamError(c, "invalid service id")
		return 0, false
	}
	return id, true
}

// Quote 报价
// GET /api/v1/services/:id/pricing?sessions=N
func (h *CatalogHandler) Quote(c *gin.Context) {
	id, ok := serviceID(c)
	if !ok {
		return
	}

	sessions, err := strconv.Atoi(c.Query("sessions"))
	if err != nil {
		response.ParamError(c, "sessions must be a number")
		return
	}

	quote, err := h.pricingService.Quote(c.Request.Context(), id, sessions)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, quote)
}

// SessionOptions 可选课时
// GET /api/v1/services/:id/session-options
func (h *CatalogHandler) SessionOptions(c *gin.Context) {
	id, ok := serviceID(c)
	if !ok {
		return
	}

	options, err := h.pricingService.SessionOptions(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, options)
}

// Capacity 某月名额
// GET /api/v1/services/:id/capacity?month=&year=
func (h *CatalogHandler) Capacity(c *gin.Context) {
	id, ok := serviceID(c)
	if !ok {
		return
	}

	month, err := strconv.Atoi(c.Query("month"))
	if err != nil || month < 1 || month > 12 {
		response.ParamError(c, "month must be between 1 and 12")
		return
	}
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil || year < 2000 || year > 2100 {
		response.ParamError(c, "invalid year")
		return
	}

	status, err := h.capacityService.CheckCapacity(c.Request.Context(), id, month, year)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, &dto.CapacityResponse{
		ServiceID: id,
		Month:     month,
		Year:      year,
		OK:        status.OK,
		Current:   status.Current,
		Max:       status.Max,
		Remaining: status.Remaining(),
	})
}
