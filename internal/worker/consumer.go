package worker

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/qs3c/kidcare_server/internal/pkg/queue"
)

const popTimeout = 5 * time.Second

// Consumer 从 Redis 队列消费通知任务
type Consumer struct {
	queue     *queue.Queue
	processor *Processor
	workers   int
}

func NewConsumer(q *queue.Queue, processor *Processor, workers int) *Consumer {
	if workers < 1 {
		workers = 1
	}
	return &Consumer{queue: q, processor: processor, workers: workers}
}

// Run 启动 worker 循环，ctx 取消后等待全部 worker 退出
func (c *Consumer) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			c.loop(ctx, workerID)
		}(i)
	}
	wg.Wait()
}

func (c *Consumer) loop(ctx context.Context, workerID int) {
	for {
		select {
		case <-ctx.Done():
			log.Printf("Worker %d shutting down", workerID)
			return
		default:
		}

		msg, err := c.queue.Pop(ctx, popTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("Worker %d: failed to pop notification: %v", workerID, err)
			time.Sleep(time.Second)
			continue
		}
		if msg == nil {
			continue // 超时，继续等待
		}

		log.Printf("Worker %d: processing notifications for subscription %s", workerID, msg.SubscriptionCode)
		warnings, err := c.processor.Process(ctx, msg)
		if err != nil {
			log.Printf("Worker %d: subscription %s failed: %v", workerID, msg.SubscriptionCode, err)
			continue
		}
		if len(warnings) > 0 {
			log.Printf("Worker %d: subscription %s finished with warnings: %v", workerID, msg.SubscriptionCode, warnings)
		}
	}
}
