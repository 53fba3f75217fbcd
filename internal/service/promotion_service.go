package service

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/qs3c/kidcare_server/internal/model"
	"github.com/qs3c/kidcare_server/internal/model/dto"
	"github.com/qs3c/kidcare_server/internal/pkg/clock"
	"github.com/qs3c/kidcare_server/internal/promotion"
	"github.com/qs3c/kidcare_server/internal/repository"
)

type PromotionService struct {
	promotionRepo  *repository.PromotionRepository
	pricingService *PricingService
	clock          clock.Clock
}

func NewPromotionService(
	promotionRepo *repository.PromotionRepository,
	pricingService *PricingService,
	clk clock.Clock,
) *PromotionService {
	return &PromotionService{
		promotionRepo:  promotionRepo,
		pricingService: pricingService,
		clock:          clk,
	}
}

// Resolve 查找优惠码并校验资格，不符合时返回 ErrInvalidPromotionCode 或 *PromotionError
func (s *PromotionService) Resolve(ctx context.Context, code string, serviceID int64, childAgeMonths int) (*model.Promotion, error) {
	promo, err := s.promotionRepo.GetActiveByCode(ctx, normalizeCode(code))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidPromotionCode
		}
		return nil, err
	}

	result := promotion.CheckEligibility(promo, serviceID, childAgeMonths, s.clock.Now())
	if !result.Eligible {
		return nil, &PromotionError{Code: promo.Code, Reason: result.Reason, Message: result.Message}
	}
	return promo, nil
}

// Preview 预览优惠效果，不写库
func (s *PromotionService) Preview(ctx context.Context, req *dto.PromotionPreviewRequest) (*dto.PromotionPreviewResponse, error) {
	quote, err := s.pricingService.Quote(ctx, req.ServiceID, req.SessionsPerMonth)
	if err != nil {
		return nil, err
	}

	resp := &dto.PromotionPreviewResponse{
		Code:           normalizeCode(req.Code),
		OriginalPrice:  quote.TotalPrice,
		DiscountAmount: decimal.Zero,
		FinalPrice:     quote.TotalPrice,
	}

	promo, err := s.Resolve(ctx, req.Code, req.ServiceID, req.ChildAgeMonths)
	if err != nil {
		var pe *PromotionError
		if errors.As(err, &pe) {
			resp.Reason = string(pe.Reason)
			resp.Message = pe.Message
			return resp, nil
		}
		return nil, err
	}

	discount, err := promotion.ComputeDiscount(promo, quote.TotalPrice)
	if err != nil {
		return nil, err
	}

	resp.Name = promo.Name
	resp.Eligible = true
	resp.DiscountAmount = discount.DiscountAmount
	resp.FinalPrice = discount.FinalPrice
	resp.IsFreeService = discount.IsFreeService
	return resp, nil
}

func normalizeCode(code string) string {
	return strings.TrimSpace(code)
}
