package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/qs3c/kidcare_server/internal/pkg/queue"
)

const defaultNotifyTimeout = 60 * time.Second

// InlineNotifier 在后台 goroutine 中处理通知，请求立即返回
type InlineNotifier struct {
	processor *Processor
	timeout   time.Duration
	wg        sync.WaitGroup
}

func NewInlineNotifier(processor *Processor, timeout time.Duration) *InlineNotifier {
	if timeout <= 0 {
		timeout = defaultNotifyTimeout
	}
	return &InlineNotifier{processor: processor, timeout: timeout}
}

func (n *InlineNotifier) Notify(_ context.Context, msg *queue.NotificationMessage) ([]string, error) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()

		// 不继承请求的 ctx，请求结束后仍要继续发送
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()

		if _, err := n.processor.Process(ctx, msg); err != nil {
			log.Printf("Inline notification for subscription %s failed: %v", msg.SubscriptionCode, err)
		}
	}()
	return nil, nil
}

// Wait 等待所有进行中的通知完成，用于优雅关闭和测试
func (n *InlineNotifier) Wait() {
	n.wg.Wait()
}

// SyncNotifier 在请求内同步处理，警告随响应返回
type SyncNotifier struct {
	processor *Processor
	timeout   time.Duration
}

func NewSyncNotifier(processor *Processor, timeout time.Duration) *SyncNotifier {
	if timeout <= 0 {
		timeout = defaultNotifyTimeout
	}
	return &SyncNotifier{processor: processor, timeout: timeout}
}

func (n *SyncNotifier) Notify(ctx context.Context, msg *queue.NotificationMessage) ([]string, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
	defer cancel()
	return n.processor.Process(ctx, msg)
}

// QueueNotifier 推入 Redis 队列，由 cmd/worker 消费
type QueueNotifier struct {
	queue *queue.Queue
}

func NewQueueNotifier(q *queue.Queue) *QueueNotifier {
	return &QueueNotifier{queue: q}
}

// Notify 同一订阅已有待处理通知时不重复入队，只返回警告
func (n *QueueNotifier) Notify(ctx context.Context, msg *queue.NotificationMessage) ([]string, error) {
	err := n.queue.Push(ctx, msg)
	if errors.Is(err, queue.ErrAlreadyQueued) {
		return []string{fmt.Sprintf("notifications for %s are already queued", msg.SubscriptionCode)}, nil
	}
	return nil, err
}
