package worker

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/qs3c/kidcare_server/config"
	"github.com/qs3c/kidcare_server/internal/model"
	"github.com/qs3c/kidcare_server/internal/pkg/email"
	"github.com/qs3c/kidcare_server/internal/pkg/invoicepdf"
	"github.com/qs3c/kidcare_server/internal/pkg/pubsub"
	"github.com/qs3c/kidcare_server/internal/pkg/queue"
	"github.com/qs3c/kidcare_server/internal/pricing"
)

// SubscriptionLoader 读取订阅（含服务）
type SubscriptionLoader interface {
	GetByID(ctx context.Context, id int64) (*model.Subscription, error)
}

// InvoiceLoader 读取发票及明细
type InvoiceLoader interface {
	GetByIDWithItems(ctx context.Context, id int64) (*model.Invoice, error)
}

// SlotLoader 批量读取时段
type SlotLoader interface {
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*model.ScheduleSlot, error)
}

// Archiver 归档发票 PDF
type Archiver interface {
	UploadInvoicePDF(userID int64, invoiceNumber string, issuedAt time.Time, data []byte) (string, error)
}

// Mailer 发送通知邮件
type Mailer interface {
	SendInvoice(m *email.InvoiceMail) error
	SendSubscriptionConfirmation(m *email.ConfirmationMail) error
}

// StatusPublisher 推送处理进度
type StatusPublisher interface {
	PublishStatus(ctx context.Context, msg *pubsub.StatusMessage) error
}

// 返回给下单用户的警告文案
const (
	WarnInvoicePDF     = "invoice PDF could not be generated"
	WarnInvoiceArchive = "invoice PDF could not be stored"
	WarnInvoiceEmail   = "invoice email could not be sent"
	WarnConfirmation   = "confirmation email could not be sent"
)

// Processor 开通提交后的通知处理：渲染发票、归档、发邮件、推送进度。
// 每一步都是尽力而为，失败只记为警告，不影响订阅本身。
type Processor struct {
	subscriptions SubscriptionLoader
	invoices      InvoiceLoader
	slots         SlotLoader
	archiver      Archiver // 可为 nil
	mailer        Mailer   // 可为 nil
	publisher     StatusPublisher
	render        func(*invoicepdf.Document) ([]byte, error)
	bounds        pricing.Bounds
	siteName      string
}

// NewProcessor 创建通知处理器
func NewProcessor(
	subscriptions SubscriptionLoader,
	invoices InvoiceLoader,
	slots SlotLoader,
	archiver Archiver,
	mailer Mailer,
	publisher StatusPublisher,
	cfg *config.Config,
) *Processor {
	bounds := pricing.DefaultBounds
	if cfg.Pricing.MinSessions > 0 {
		bounds.Min = cfg.Pricing.MinSessions
	}
	if cfg.Pricing.MaxSessions > 0 {
		bounds.Max = cfg.Pricing.MaxSessions
	}

	siteName := cfg.Email.SiteName
	if siteName == "" {
		siteName = "Kidcare"
	}

	return &Processor{
		subscriptions: subscriptions,
		invoices:      invoices,
		slots:         slots,
		archiver:      archiver,
		mailer:        mailer,
		publisher:     publisher,
		render:        invoicepdf.Render,
		bounds:        bounds,
		siteName:      siteName,
	}
}

// Process 处理一条通知任务，返回警告列表。
// 只有订阅或发票读取失败时返回 error。
func (p *Processor) Process(ctx context.Context, msg *queue.NotificationMessage) ([]string, error) {
	sub, err := p.subscriptions.GetByID(ctx, msg.SubscriptionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription %d: %w", msg.SubscriptionID, err)
	}
	invoice, err := p.invoices.GetByIDWithItems(ctx, msg.InvoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice %d: %w", msg.InvoiceID, err)
	}

	var warnings []string
	publish := func(step string) {
		p.publishStatus(ctx, &pubsub.StatusMessage{
			UserID:           sub.UserID,
			SubscriptionID:   sub.ID,
			SubscriptionCode: sub.Code,
			Step:             step,
			Warnings:         warnings,
		})
	}
	warn := func(step, warning string, err error) {
		log.Printf("Subscription %s: %s: %v", sub.Code, step, err)
		warnings = append(warnings, warning)
	}

	serviceName := ""
	if sub.Service != nil {
		serviceName = sub.Service.Name
	}

	// Step 1: 渲染发票
	publish(pubsub.StepRendering)
	pdf, err := p.render(&invoicepdf.Document{
		Invoice:          invoice,
		SiteName:         p.siteName,
		ServiceName:      serviceName,
		ChildName:        sub.ChildName,
		SubscriptionCode: sub.Code,
	})
	if err != nil {
		warn(pubsub.StepRendering, WarnInvoicePDF, err)
		pdf = nil
	}

	// Step 2: 归档
	var downloadURL string
	if pdf != nil && p.archiver != nil {
		publish(pubsub.StepArchiving)
		downloadURL, err = p.archiver.UploadInvoicePDF(sub.UserID, invoice.InvoiceNumber, invoice.IssuedAt, pdf)
		if err != nil {
			warn(pubsub.StepArchiving, WarnInvoiceArchive, err)
		}
	}

	// Step 3: 发票邮件
	publish(pubsub.StepInvoiceEmail)
	if p.mailer == nil {
		warn(pubsub.StepInvoiceEmail, WarnInvoiceEmail, fmt.Errorf("mailer not configured"))
	} else if err := p.mailer.SendInvoice(&email.InvoiceMail{
		To:            invoice.CustomerEmail,
		CustomerName:  firstName(invoice.CustomerName),
		InvoiceNumber: invoice.InvoiceNumber,
		TotalAmount:   invoice.TotalAmount.StringFixed(2),
		DueDate:       invoice.DueDate.Format("2006-01-02"),
		DownloadURL:   downloadURL,
		PDF:           pdf,
	}); err != nil {
		warn(pubsub.StepInvoiceEmail, WarnInvoiceEmail, err)
	}

	// Step 4: 确认邮件
	publish(pubsub.StepConfirmation)
	if p.mailer == nil {
		warn(pubsub.StepConfirmation, WarnConfirmation, fmt.Errorf("mailer not configured"))
	} else if err := p.mailer.SendSubscriptionConfirmation(p.confirmation(ctx, sub, serviceName)); err != nil {
		warn(pubsub.StepConfirmation, WarnConfirmation, err)
	}

	publish(pubsub.StepDone)
	log.Printf("Subscription %s: notifications processed, warnings=%d", sub.Code, len(warnings))
	return warnings, nil
}

func (p *Processor) confirmation(ctx context.Context, sub *model.Subscription, serviceName string) *email.ConfirmationMail {
	m := &email.ConfirmationMail{
		To:                sub.ParentEmail,
		ParentName:        firstName(sub.ParentName),
		ChildName:         sub.ChildName,
		ServiceName:       serviceName,
		SubscriptionCode:  sub.Code,
		StartMonth:        fmt.Sprintf("%s %d", time.Month(sub.StartMonth), sub.StartYear),
		FinalMonthlyPrice: sub.FinalMonthlyPrice.StringFixed(2),
	}

	if sub.Service != nil {
		if b, err := p.bounds.Compute(sub.Service.BasePrice, sub.SessionsPerMonth, sub.Service.Included()); err == nil {
			m.PricingDescription = pricing.Describe(b)
		}
	}

	schedule := sub.Schedule()
	slots, err := p.slots.GetByIDs(ctx, schedule.SlotIDs())
	if err != nil {
		log.Printf("Subscription %s: failed to load slots: %v", sub.Code, err)
	}
	for _, day := range schedule.SelectedDays() {
		line := time.Weekday(day).String()
		if slot, ok := slots[*schedule[day]]; ok {
			line = fmt.Sprintf("%s %s-%s", line, slot.StartTime, slot.EndTime)
		}
		m.Schedule = append(m.Schedule, line)
	}
	return m
}

func (p *Processor) publishStatus(ctx context.Context, msg *pubsub.StatusMessage) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.PublishStatus(ctx, msg); err != nil {
		log.Printf("Failed to publish status for subscription %s: %v", msg.SubscriptionCode, err)
	}
}

// firstName 邮件称呼只用名
func firstName(full string) string {
	fields := strings.Fields(full)
	if len(fields) == 0 {
		return full
	}
	return fields[0]
}
