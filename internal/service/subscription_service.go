package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/qs3c/kidcare_server/config"
	"github.com/qs3c/kidcare_server/internal/model"
	"github.com/qs3c/kidcare_server/internal/model/dto"
	"github.com/qs3c/kidcare_server/internal/pkg/clock"
	"github.com/qs3c/kidcare_server/internal/pkg/queue"
	"github.com/qs3c/kidcare_server/internal/pricing"
	"github.com/qs3c/kidcare_server/internal/promotion"
	"github.com/qs3c/kidcare_server/internal/repository"
)

// 允许的状态流转
var transitions = map[string][]string{
	model.SubscriptionStatusPending: {model.SubscriptionStatusActive, model.SubscriptionStatusCancelled},
	model.SubscriptionStatusActive:  {model.SubscriptionStatusCompleted, model.SubscriptionStatusCancelled},
}

// CanTransition 判断状态流转是否合法
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type SubscriptionService struct {
	db               *gorm.DB
	repos            *repository.Repositories
	capacityService  *CapacityService
	promotionService *PromotionService
	notifier         Notifier
	clock            clock.Clock
	bounds           pricing.Bounds
	cfg              *config.Config
}

func NewSubscriptionService(
	db *gorm.DB,
	repos *repository.Repositories,
	capacityService *CapacityService,
	promotionService *PromotionService,
	notifier Notifier,
	clk clock.Clock,
	cfg *config.Config,
) *SubscriptionService {
	return &SubscriptionService{
		db:               db,
		repos:            repos,
		capacityService:  capacityService,
		promotionService: promotionService,
		notifier:         notifier,
		clock:            clk,
		bounds:           sessionBounds(cfg),
		cfg:              cfg,
	}
}

// quote 开通前计算出的价格，事务内不再变化
type quote struct {
	service   *model.Service
	breakdown pricing.Breakdown
	promotion *model.Promotion
	discount  promotion.Discount
	slots     map[int64]*model.ScheduleSlot
}

// provisioned 事务提交后的结果
type provisioned struct {
	subscription *model.Subscription
	invoice      *model.Invoice
}

// Create 校验、定价、检查名额和优惠后，在一个事务内写入订阅、旧版预约、儿童档案、发票及明细并占用优惠次数
func (s *SubscriptionService) Create(ctx context.Context, userID int64, in *CreateSubscriptionInput) (*dto.SubscriptionDetail, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	svc, err := s.repos.Catalog.GetActiveByID(ctx, in.ServiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceUnavailable
		}
		return nil, err
	}

	capacity, err := s.capacityService.CheckServiceCapacity(ctx, svc, in.StartMonth, in.StartYear)
	if err != nil {
		return nil, err
	}
	if !capacity.OK {
		return nil, &CapacityError{
			ServiceID: svc.ID,
			Month:     in.StartMonth,
			Year:      in.StartYear,
			Current:   capacity.Current,
			Max:       *capacity.Max,
		}
	}

	q, err := s.buildQuote(ctx, svc, in)
	if err != nil {
		return nil, err
	}

	result, err := s.provisionWithRetry(ctx, userID, in, q)
	if err != nil {
		return nil, err
	}

	warnings := s.notify(ctx, result)

	detail := toSubscriptionDetail(result.subscription)
	detail.ServiceName = svc.Name
	detail.PricingDescription = pricing.Describe(q.breakdown)
	detail.InvoiceNumber = result.invoice.InvoiceNumber
	detail.Warnings = warnings
	return detail, nil
}

// buildQuote 计算价格、解析优惠码并预先读取时段
func (s *SubscriptionService) buildQuote(ctx context.Context, svc *model.Service, in *CreateSubscriptionInput) (*quote, error) {
	breakdown, err := s.bounds.Compute(svc.BasePrice, in.SessionsPerMonth, svc.Included())
	if err != nil {
		return nil, sessionError(err)
	}

	q := &quote{
		service:   svc,
		breakdown: breakdown,
		discount: promotion.Discount{
			OriginalPrice:  breakdown.TotalPrice,
			DiscountAmount: decimal.Zero,
			FinalPrice:     breakdown.TotalPrice,
		},
	}

	if in.PromotionCode != "" {
		promo, err := s.promotionService.Resolve(ctx, in.PromotionCode, svc.ID, in.ChildAgeMonths)
		if err != nil {
			return nil, err
		}
		discount, err := promotion.ComputeDiscount(promo, breakdown.TotalPrice)
		if err != nil {
			return nil, err
		}
		q.promotion = promo
		q.discount = discount
	}

	q.slots, err = s.repos.Schedule.GetByIDs(ctx, in.WeeklySchedule.SlotIDs())
	if err != nil {
		return nil, err
	}
	return q, nil
}

// provisionWithRetry 编号冲突时换新编号重试整个事务
func (s *SubscriptionService) provisionWithRetry(ctx context.Context, userID int64, in *CreateSubscriptionInput, q *quote) (*provisioned, error) {
	attempts := s.cfg.Billing.CodeRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := s.provision(ctx, userID, in, q)
		if err == nil {
			return result, nil
		}

		var capErr *CapacityError
		var promoErr *PromotionError
		switch {
		case errors.As(err, &capErr), errors.As(err, &promoErr):
			return nil, err
		case errors.Is(err, gorm.ErrDuplicatedKey):
			log.Printf("Subscription code collision (attempt %d/%d): %v", attempt, attempts, err)
			lastErr = err
			continue
		default:
			log.Printf("Failed to provision subscription for user %d: %v", userID, err)
			return nil, ErrPersistence
		}
	}

	log.Printf("Failed to provision subscription for user %d after %d attempts: %v", userID, attempts, lastErr)
	return nil, ErrPersistence
}

// provision 单个事务内完成全部写入，任何一步失败都整体回滚
func (s *SubscriptionService) provision(ctx context.Context, userID int64, in *CreateSubscriptionInput, q *quote) (*provisioned, error) {
	now := s.clock.Now()
	result := &provisioned{}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		svc := q.service
		// 不限名额的服务也计数，之后设置上限时计数行仍然准确
		ok, admitted, err := s.repos.Capacity.WithTx(tx).TryReserve(ctx, svc.ID, in.StartYear, in.StartMonth, svc.Capacity, now)
		if err != nil {
			return err
		}
		if !ok {
			return &CapacityError{
				ServiceID: svc.ID,
				Month:     in.StartMonth,
				Year:      in.StartYear,
				Current:   admitted,
				Max:       *svc.Capacity,
			}
		}

		sub := newSubscription(userID, in, q, generateCode(s.cfg.Billing.SubscriptionPrefix, now))
		if err := s.repos.Subscription.WithTx(tx).Create(ctx, sub); err != nil {
			return err
		}

		booking := ProjectBooking(sub, q.slots, s.cfg.Billing.DefaultBookingTime)
		if err := s.repos.Booking.WithTx(tx).Create(ctx, booking); err != nil {
			return err
		}

		if err := s.repos.ChildProfile.WithTx(tx).Create(ctx, newChildProfile(sub, now)); err != nil {
			return err
		}

		invoice := s.newInvoice(sub, q, now)
		invoices := s.repos.Invoice.WithTx(tx)
		if err := invoices.Create(ctx, invoice); err != nil {
			return err
		}
		item := &model.InvoiceItem{
			InvoiceID:   invoice.ID,
			Description: fmt.Sprintf("%s: %s", svc.Name, pricing.Describe(q.breakdown)),
			Quantity:    1,
			UnitPrice:   sub.FinalMonthlyPrice,
			Amount:      sub.FinalMonthlyPrice,
		}
		if err := invoices.CreateItem(ctx, item); err != nil {
			return err
		}
		invoice.Items = []model.InvoiceItem{*item}

		if q.promotion != nil {
			ok, err := s.repos.Promotion.WithTx(tx).TryIncrementUsage(ctx, q.promotion.ID)
			if err != nil {
				return err
			}
			if !ok {
				return &PromotionError{
					Code:    q.promotion.Code,
					Reason:  promotion.ReasonUsageLimitReached,
					Message: "promotion usage limit reached",
				}
			}
		}

		result.subscription = sub
		result.invoice = invoice
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func newSubscription(userID int64, in *CreateSubscriptionInput, q *quote, code string) *model.Subscription {
	sub := &model.Subscription{
		Code:              code,
		UserID:            userID,
		ServiceID:         q.service.ID,
		ChildName:         in.ChildName,
		ChildAgeMonths:    in.ChildAgeMonths,
		ParentName:        in.ParentName,
		ParentEmail:       in.ParentEmail,
		ParentPhone:       in.ParentPhone,
		StartYear:         in.StartYear,
		StartMonth:        in.StartMonth,
		WeeklySchedule:    datatypes.NewJSONType(in.WeeklySchedule),
		SessionsPerMonth:  in.SessionsPerMonth,
		SpecialRequests:   in.SpecialRequests,
		BaseMonthlyPrice:  q.breakdown.TotalPrice,
		DiscountAmount:    q.discount.DiscountAmount,
		FinalMonthlyPrice: q.breakdown.TotalPrice.Sub(q.discount.DiscountAmount),
		Status:            model.SubscriptionStatusPending,
	}
	if q.promotion != nil {
		sub.PromotionID = &q.promotion.ID
		sub.PromotionCode = q.promotion.Code
	}
	return sub
}

// newChildProfile 出生日期按今天减去月龄推算，其余字段为空占位
func newChildProfile(sub *model.Subscription, now time.Time) *model.ChildProfile {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return &model.ChildProfile{
		SubscriptionID:    sub.ID,
		UserID:            sub.UserID,
		Name:              sub.ChildName,
		BirthDate:         today.AddDate(0, -sub.ChildAgeMonths, 0),
		Allergies:         datatypes.JSON(`[]`),
		MedicalInfo:       datatypes.JSON(`{}`),
		EmergencyContacts: datatypes.JSON(`[]`),
	}
}

func (s *SubscriptionService) newInvoice(sub *model.Subscription, q *quote, now time.Time) *model.Invoice {
	return &model.Invoice{
		InvoiceNumber:  generateCode(s.cfg.Billing.InvoicePrefix, now),
		SubscriptionID: sub.ID,
		UserID:         sub.UserID,
		Type:           model.InvoiceTypeRegistration,
		Status:         model.InvoiceStatusPending,
		CustomerName:   sub.ParentName,
		CustomerEmail:  sub.ParentEmail,
		Subtotal:       q.breakdown.TotalPrice,
		DiscountAmount: sub.DiscountAmount,
		TotalAmount:    sub.FinalMonthlyPrice,
		IssuedAt:       now,
		DueDate:        now.AddDate(0, 0, s.cfg.Billing.InvoiceDueDays),
	}
}

// notify 事务已提交，通知失败只记录日志并作为警告返回
func (s *SubscriptionService) notify(ctx context.Context, result *provisioned) []string {
	if s.notifier == nil {
		return nil
	}

	msg := &queue.NotificationMessage{
		SubscriptionID:   result.subscription.ID,
		SubscriptionCode: result.subscription.Code,
		InvoiceID:        result.invoice.ID,
		InvoiceNumber:    result.invoice.InvoiceNumber,
		UserID:           result.subscription.UserID,
		EnqueuedAt:       s.clock.Now(),
	}

	warnings, err := s.notifier.Notify(ctx, msg)
	if err != nil {
		log.Printf("Failed to schedule notifications for subscription %s: %v", msg.SubscriptionCode, err)
		warnings = append(warnings, "confirmation emails could not be scheduled; your subscription is saved")
	}
	return warnings
}

// GetByCode 获取当前用户的订阅
func (s *SubscriptionService) GetByCode(ctx context.Context, userID int64, code string) (*dto.SubscriptionDetail, error) {
	sub, err := s.repos.Subscription.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	if sub.UserID != userID {
		return nil, ErrSubscriptionNotFound
	}

	detail := toSubscriptionDetail(sub)
	if invoice, err := s.repos.Invoice.GetBySubscriptionID(ctx, sub.ID); err == nil {
		detail.InvoiceNumber = invoice.InvoiceNumber
	}
	if sub.Service != nil {
		if breakdown, err := s.bounds.Compute(sub.Service.BasePrice, sub.SessionsPerMonth, sub.Service.Included()); err == nil {
			detail.PricingDescription = pricing.Describe(breakdown)
		}
	}
	return detail, nil
}

// ListByUser 分页列出当前用户的订阅
func (s *SubscriptionService) ListByUser(ctx context.Context, userID int64, page, pageSize int) ([]dto.SubscriptionListItem, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 50 {
		pageSize = 20
	}

	subs, total, err := s.repos.Subscription.ListByUserID(ctx, userID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	items := make([]dto.SubscriptionListItem, len(subs))
	for i, sub := range subs {
		items[i] = dto.SubscriptionListItem{
			Code:              sub.Code,
			Status:            sub.Status,
			ChildName:         sub.ChildName,
			StartMonth:        sub.StartMonth,
			StartYear:         sub.StartYear,
			SessionsPerMonth:  sub.SessionsPerMonth,
			FinalMonthlyPrice: sub.FinalMonthlyPrice,
			CreatedAt:         sub.CreatedAt.Format(time.RFC3339),
		}
		if sub.Service != nil {
			items[i].ServiceName = sub.Service.Name
		}
	}
	return items, total, nil
}

// Cancel 用户取消自己的订阅
func (s *SubscriptionService) Cancel(ctx context.Context, userID int64, code string) (*dto.SubscriptionDetail, error) {
	sub, err := s.repos.Subscription.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	if sub.UserID != userID {
		return nil, ErrSubscriptionNotFound
	}

	if err := s.transition(ctx, sub, model.SubscriptionStatusCancelled); err != nil {
		return nil, err
	}
	return toSubscriptionDetail(sub), nil
}

// UpdateStatus 按状态机变更订阅状态，离开 pending/active 时释放名额
func (s *SubscriptionService) UpdateStatus(ctx context.Context, code, to string) (*model.Subscription, error) {
	sub, err := s.repos.Subscription.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}

	if err := s.transition(ctx, sub, to); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *SubscriptionService) transition(ctx context.Context, sub *model.Subscription, to string) error {
	from := sub.Status
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	now := s.clock.Now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := s.repos.Subscription.WithTx(tx).UpdateStatusFrom(ctx, sub.ID, from, to, now)
		if err != nil {
			return err
		}
		if !ok {
			// 并发修改，状态已不是 from
			return fmt.Errorf("%w: %s is no longer %s", ErrInvalidTransition, sub.Code, from)
		}

		if err := s.repos.Booking.WithTx(tx).UpdateStatusBySubscription(ctx, sub.ID, to); err != nil {
			return err
		}

		if model.IsAdmittedStatus(from) && !model.IsAdmittedStatus(to) {
			return s.repos.Capacity.WithTx(tx).Release(ctx, sub.ServiceID, sub.StartYear, sub.StartMonth, now)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			return err
		}
		log.Printf("Failed to update subscription %s to %s: %v", sub.Code, to, err)
		return ErrPersistence
	}

	sub.Status = to
	return nil
}

func toSubscriptionDetail(sub *model.Subscription) *dto.SubscriptionDetail {
	detail := &dto.SubscriptionDetail{
		ID:                sub.ID,
		Code:              sub.Code,
		Status:            sub.Status,
		ServiceID:         sub.ServiceID,
		ChildName:         sub.ChildName,
		ChildAgeMonths:    sub.ChildAgeMonths,
		ParentName:        sub.ParentName,
		ParentEmail:       sub.ParentEmail,
		ParentPhone:       sub.ParentPhone,
		StartMonth:        sub.StartMonth,
		StartYear:         sub.StartYear,
		WeeklySchedule:    FormatWeeklySchedule(sub.Schedule()),
		SessionsPerMonth:  sub.SessionsPerMonth,
		SpecialRequests:   sub.SpecialRequests,
		BaseMonthlyPrice:  sub.BaseMonthlyPrice,
		DiscountAmount:    sub.DiscountAmount,
		FinalMonthlyPrice: sub.FinalMonthlyPrice,
		PromotionCode:     sub.PromotionCode,
		CreatedAt:         sub.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         sub.UpdatedAt.Format(time.RFC3339),
	}
	if sub.Service != nil {
		detail.ServiceName = sub.Service.Name
	}
	return detail
}
