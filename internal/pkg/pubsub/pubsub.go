package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const (
	ChannelNotificationStatus = "notification_status"
)

// StatusMessage 通知处理进度
type StatusMessage struct {
	Type             string   `json:"type"`
	UserID           int64    `json:"user_id"`
	SubscriptionID   int64    `json:"subscription_id"`
	SubscriptionCode string   `json:"subscription_code"`
	Step             string   `json:"step"`
	Progress         int      `json:"progress"`
	Message          string   `json:"message,omitempty"`
	Warnings         []string `json:"warnings,omitempty"`
}

// 通知阶段常量
const (
	StepRendering    = "rendering_invoice"
	StepArchiving    = "archiving_invoice"
	StepInvoiceEmail = "sending_invoice"
	StepConfirmation = "sending_confirmation"
	StepDone         = "done"
)

// 阶段对应的进度百分比
var StepProgress = map[string]int{
	StepRendering:    20,
	StepArchiving:    40,
	StepInvoiceEmail: 60,
	StepConfirmation: 80,
	StepDone:         100,
}

// 阶段对应的消息
var StepMessages = map[string]string{
	StepRendering:    "Preparing your invoice",
	StepArchiving:    "Storing your invoice",
	StepInvoiceEmail: "Emailing your invoice",
	StepConfirmation: "Emailing your confirmation",
	StepDone:         "Notifications sent",
}

// Publisher Redis 发布者
type Publisher struct {
	client *redis.Client
}

// NewPublisher 创建发布者
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// PublishStatus 发布通知进度
func (p *Publisher) PublishStatus(ctx context.Context, msg *StatusMessage) error {
	Fill(msg)

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal status message: %w", err)
	}

	return p.client.Publish(ctx, ChannelNotificationStatus, data).Err()
}

// Fill 按阶段补全类型、进度和消息
func Fill(msg *StatusMessage) {
	msg.Type = "notification_status"
	if msg.Progress == 0 && msg.Step != "" {
		if progress, ok := StepProgress[msg.Step]; ok {
			msg.Progress = progress
		}
	}
	if msg.Message == "" && msg.Step != "" {
		if message, ok := StepMessages[msg.Step]; ok {
			msg.Message = message
		}
	}
}

// Subscriber Redis 订阅者
type Subscriber struct {
	client *redis.Client
}

// NewSubscriber 创建订阅者
func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// Subscribe 订阅通知进度
func (s *Subscriber) Subscribe(ctx context.Context, handler func(*StatusMessage)) error {
	pubsub := s.client.Subscribe(ctx, ChannelNotificationStatus)
	defer pubsub.Close()

	// 等待订阅确认，避免丢失紧随其后的消息
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var statusMsg StatusMessage
			if err := json.Unmarshal([]byte(msg.Payload), &statusMsg); err != nil {
				continue // 忽略解析错误
			}

			handler(&statusMsg)
		}
	}
}
