package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// pendingTTL 去重标记的过期时间，消费端异常退出时标记最终会自行失效
const pendingTTL = 24 * time.Hour

// ErrAlreadyQueued 同一订阅的通知仍在队列中等待处理
var ErrAlreadyQueued = errors.New("notification already queued")

// Queue 订阅通知队列。每个订阅同一时间最多只有一条待处理通知。
type Queue struct {
	client    *redis.Client
	queueName string
}

// NotificationMessage 订阅开通提交后的通知任务
type NotificationMessage struct {
	SubscriptionID   int64     `json:"subscription_id"`
	SubscriptionCode string    `json:"subscription_code"`
	InvoiceID        int64     `json:"invoice_id"`
	InvoiceNumber    string    `json:"invoice_number"`
	UserID           int64     `json:"user_id"`
	EnqueuedAt       time.Time `json:"enqueued_at"`
}

// dedupeKey 优先按订阅编号去重，没有编号时退回订阅 ID
func (m *NotificationMessage) dedupeKey() string {
	if m.SubscriptionCode != "" {
		return m.SubscriptionCode
	}
	return fmt.Sprintf("id:%d", m.SubscriptionID)
}

func NewQueue(client *redis.Client, queueName string) *Queue {
	return &Queue{
		client:    client,
		queueName: queueName,
	}
}

func (q *Queue) pendingKey(msg *NotificationMessage) string {
	return q.queueName + ":pending:" + msg.dedupeKey()
}

// Push 将订阅通知加入队列，该订阅已有待处理通知时返回 ErrAlreadyQueued
func (q *Queue) Push(ctx context.Context, msg *NotificationMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	key := q.pendingKey(msg)
	ok, err := q.client.SetNX(ctx, key, msg.InvoiceNumber, pendingTTL).Result()
	if err != nil {
		return fmt.Errorf("failed to mark notification pending: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrAlreadyQueued, msg.dedupeKey())
	}

	if err := q.client.LPush(ctx, q.queueName, data).Err(); err != nil {
		q.client.Del(ctx, key)
		return fmt.Errorf("failed to push notification: %w", err)
	}
	return nil
}

// Pop 从队列获取通知（阻塞），取出后清除该订阅的去重标记
func (q *Queue) Pop(ctx context.Context, timeout time.Duration) (*NotificationMessage, error) {
	result, err := q.client.BRPop(ctx, timeout, q.queueName).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // 超时，无任务
		}
		return nil, fmt.Errorf("failed to pop from queue: %w", err)
	}

	if len(result) < 2 {
		return nil, nil
	}

	var msg NotificationMessage
	if err := json.Unmarshal([]byte(result[1]), &msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message: %w", err)
	}

	// 清除失败时标记按 pendingTTL 过期
	q.client.Del(ctx, q.pendingKey(&msg))
	return &msg, nil
}

// Length 获取队列长度
func (q *Queue) Length(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.queueName).Result()
}
