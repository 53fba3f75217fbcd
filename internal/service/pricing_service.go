package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/qs3c/kidcare_server/config"
	"github.com/qs3c/kidcare_server/internal/model"
	"github.com/qs3c/kidcare_server/internal/model/dto"
	"github.com/qs3c/kidcare_server/internal/pricing"
	"github.com/qs3c/kidcare_server/internal/repository"
)

type PricingService struct {
	catalogRepo *repository.CatalogRepository
	bounds      pricing.Bounds
}

func NewPricingService(catalogRepo *repository.CatalogRepository, cfg *config.Config) *PricingService {
	return &PricingService{
		catalogRepo: catalogRepo,
		bounds:      sessionBounds(cfg),
	}
}

func sessionBounds(cfg *config.Config) pricing.Bounds {
	bounds := pricing.DefaultBounds
	if cfg != nil {
		if cfg.Pricing.MinSessions > 0 {
			bounds.Min = cfg.Pricing.MinSessions
		}
		if cfg.Pricing.MaxSessions > 0 {
			bounds.Max = cfg.Pricing.MaxSessions
		}
	}
	return bounds
}

// Quote 按服务的包含课时数计算报价
func (s *PricingService) Quote(ctx context.Context, serviceID int64, sessions int) (*dto.PricingQuote, error) {
	svc, err := s.activeService(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	breakdown, err := s.bounds.Compute(svc.BasePrice, sessions, svc.Included())
	if err != nil {
		return nil, sessionError(err)
	}

	return &dto.PricingQuote{
		ServiceID:   svc.ID,
		ServiceName: svc.Name,
		Description: pricing.Describe(breakdown),
		Breakdown:   breakdown,
	}, nil
}

// SessionOptions 列出服务所有可选课时数
func (s *PricingService) SessionOptions(ctx context.Context, serviceID int64) (*dto.SessionOptionsResponse, error) {
	svc, err := s.activeService(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	options, err := s.bounds.SessionOptions(svc.BasePrice, svc.Included())
	if err != nil {
		return nil, err
	}

	return &dto.SessionOptionsResponse{
		ServiceID:        svc.ID,
		IncludedSessions: svc.Included(),
		Options:          options,
	}, nil
}

func (s *PricingService) activeService(ctx context.Context, serviceID int64) (*model.Service, error) {
	svc, err := s.catalogRepo.GetActiveByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceUnavailable
		}
		return nil, err
	}
	return svc, nil
}

// sessionError 课时数不合法转为字段校验错误
func sessionError(err error) error {
	if errors.Is(err, pricing.ErrInvalidSessionCount) {
		return &ValidationError{Field: "sessions_per_month", Msg: err.Error(), Err: pricing.ErrInvalidSessionCount}
	}
	return err
}
