package handler

import (
	"errors"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/kidcare_server/internal/pkg/response"
	"github.com/qs3c/kidcare_server/internal/service"
)

// writeError 把 service 层错误映射为响应码
func writeError(c *gin.Context, err error) {
	var (
		validationErr *service.ValidationError
		capacityErr   *service.CapacityError
		promotionErr  *service.PromotionError
	)

	switch {
	case errors.As(err, &validationErr):
		response.ParamError(c, validationErr.Error())
	case errors.As(err, &capacityErr):
		response.CapacityError(c, capacityErr.Error(), gin.H{
			"service_id": capacityErr.ServiceID,
			"month":      capacityErr.Month,
			"year":       capacityErr.Year,
			"current":    capacityErr.Current,
			"max":        capacityErr.Max,
		})
	case errors.As(err, &promotionErr):
		response.PromotionError(c, promotionErr.Message, gin.H{
			"code":   promotionErr.Code,
			"reason": promotionErr.Reason,
		})
	case errors.Is(err, service.ErrInvalidPromotionCode):
		response.PromotionError(c, err.Error(), nil)
	case errors.Is(err, service.ErrServiceUnavailable),
		errors.Is(err, service.ErrSubscriptionNotFound):
		response.NotFoundError(c, err.Error())
	case errors.Is(err, service.ErrInvalidTransition):
		response.StateConflictError(c, err.Error())
	case errors.Is(err, service.ErrPersistence):
		response.ServerError(c, err.Error())
	default:
		log.Printf("Unhandled error on %s %s: %v", c.Request.Method, c.FullPath(), err)
		response.ServerError(c, "")
	}
}
