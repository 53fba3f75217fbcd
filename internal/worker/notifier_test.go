package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/kidcare_server/internal/pkg/queue"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestSyncNotifier(t *testing.T) {
	env := setupProcessor(t)
	env.mailer.invoiceErr = errors.New("smtp down")
	n := NewSyncNotifier(env.processor, time.Second)

	warnings, err := n.Notify(context.Background(), testMessage())
	require.NoError(t, err)
	assert.Equal(t, []string{WarnInvoiceEmail}, warnings)
}

func TestSyncNotifier_IgnoresCancelledRequest(t *testing.T) {
	env := setupProcessor(t)
	n := NewSyncNotifier(env.processor, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := n.Notify(ctx, testMessage())
	require.NoError(t, err)
	invoices, _ := env.mailer.sent()
	assert.Equal(t, 1, invoices)
}

func TestInlineNotifier(t *testing.T) {
	env := setupProcessor(t)
	n := NewInlineNotifier(env.processor, 0)

	ctx, cancel := context.WithCancel(context.Background())
	warnings, err := n.Notify(ctx, testMessage())
	cancel()
	require.NoError(t, err)
	assert.Nil(t, warnings)

	n.Wait()
	invoices, confirmations := env.mailer.sent()
	assert.Equal(t, 1, invoices)
	assert.Equal(t, 1, confirmations)
}

func TestQueueNotifier(t *testing.T) {
	client := setupRedis(t)
	q := queue.NewQueue(client, "notification_jobs")
	n := NewQueueNotifier(q)

	warnings, err := n.Notify(context.Background(), testMessage())
	require.NoError(t, err)
	assert.Nil(t, warnings)

	// 同一订阅的通知尚未被消费，不重复入队
	warnings, err = n.Notify(context.Background(), testMessage())
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "SUB-1")

	length, err := q.Length(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), length)

	client.Close()
	_, err = n.Notify(context.Background(), testMessage())
	assert.Error(t, err)
}

func TestConsumer_Run(t *testing.T) {
	client := setupRedis(t)
	q := queue.NewQueue(client, "notification_jobs")
	env := setupProcessor(t)

	require.NoError(t, q.Push(context.Background(), testMessage()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewConsumer(q, env.processor, 2).Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		_, confirmations := env.mailer.sent()
		return confirmations == 1
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("consumer did not stop")
	}
}
