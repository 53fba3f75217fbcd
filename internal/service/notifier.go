package service

import (
	"context"

	"github.com/qs3c/kidcare_server/internal/pkg/queue"
)

// Notifier 接收开通提交后的通知任务。
// 返回的 warnings 是同步执行时产生的非致命问题；err 表示任务没能交出去。
// 两者都不会影响已经提交的订阅。
type Notifier interface {
	Notify(ctx context.Context, msg *queue.NotificationMessage) (warnings []string, err error)
}
