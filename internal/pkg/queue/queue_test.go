package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return client, cleanup
}

func TestQueue_Push(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	q := NewQueue(client, "test_queue")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err := q.Push(ctx, &NotificationMessage{SubscriptionID: int64(i)})
		require.NoError(t, err)
	}

	length, err := q.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), length)
}

func TestQueue_Push_OnePendingPerSubscription(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	q := NewQueue(client, "test_dedupe_queue")
	ctx := context.Background()
	msg := &NotificationMessage{SubscriptionID: 42, SubscriptionCode: "SUB-261019143005-A1B2C3", InvoiceNumber: "INV-1"}

	require.NoError(t, q.Push(ctx, msg))
	err := q.Push(ctx, msg)
	assert.True(t, errors.Is(err, ErrAlreadyQueued))

	// 其他订阅不受影响
	require.NoError(t, q.Push(ctx, &NotificationMessage{SubscriptionID: 43, SubscriptionCode: "SUB-261019143005-FFFFFF"}))

	length, err := q.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), length)

	ttl, err := client.TTL(ctx, "test_dedupe_queue:pending:SUB-261019143005-A1B2C3").Result()
	require.NoError(t, err)
	assert.True(t, ttl > 0 && ttl <= pendingTTL)

	// 取出后同一订阅可以再次入队
	popped, err := q.Pop(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, popped)
	assert.Equal(t, "SUB-261019143005-A1B2C3", popped.SubscriptionCode)

	require.NoError(t, q.Push(ctx, msg))
}

func TestQueue_Push_FailedPushClearsMark(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	q := NewQueue(client, "test_wrongtype_queue")
	// 队列键类型错误时 LPUSH 失败
	require.NoError(t, client.Set(ctx, "test_wrongtype_queue", "x", 0).Err())

	msg := &NotificationMessage{SubscriptionCode: "SUB-1"}
	require.Error(t, q.Push(ctx, msg))

	exists, err := client.Exists(ctx, "test_wrongtype_queue:pending:SUB-1").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), exists)
}

func TestQueue_Pop(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()

	t.Run("pop keeps all fields", func(t *testing.T) {
		q := NewQueue(client, "test_pop_queue")
		enqueued := time.Date(2026, 10, 19, 14, 30, 5, 0, time.UTC)

		err := q.Push(ctx, &NotificationMessage{
			SubscriptionID:   42,
			SubscriptionCode: "SUB-261019143005-A1B2C3",
			InvoiceID:        7,
			InvoiceNumber:    "INV-261019143005-D4E5F6",
			UserID:           20,
			EnqueuedAt:       enqueued,
		})
		require.NoError(t, err)

		result, err := q.Pop(ctx, time.Second)
		require.NoError(t, err)
		require.NotNil(t, result)

		assert.Equal(t, int64(42), result.SubscriptionID)
		assert.Equal(t, "SUB-261019143005-A1B2C3", result.SubscriptionCode)
		assert.Equal(t, int64(7), result.InvoiceID)
		assert.Equal(t, "INV-261019143005-D4E5F6", result.InvoiceNumber)
		assert.Equal(t, int64(20), result.UserID)
		assert.True(t, enqueued.Equal(result.EnqueuedAt))
	})

	t.Run("pop FIFO order", func(t *testing.T) {
		q := NewQueue(client, "test_fifo_queue")

		for i := 1; i <= 3; i++ {
			require.NoError(t, q.Push(ctx, &NotificationMessage{SubscriptionID: int64(i)}))
		}

		for i := 1; i <= 3; i++ {
			result, err := q.Pop(ctx, time.Second)
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, int64(i), result.SubscriptionID)
		}
	})

	t.Run("pop from empty queue times out", func(t *testing.T) {
		q := NewQueue(client, "test_empty_queue")

		result, err := q.Pop(ctx, 10*time.Millisecond)

		// miniredis 对 BRPop 超时的支持不完整，只检查无消息
		if err == nil {
			assert.Nil(t, result)
		}
	})

	t.Run("malformed payload", func(t *testing.T) {
		q := NewQueue(client, "test_bad_queue")
		require.NoError(t, client.LPush(ctx, "test_bad_queue", "not-json").Err())

		_, err := q.Pop(ctx, time.Second)
		assert.Error(t, err)
	})
}

func TestQueue_MultipleQueues(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()

	q1 := NewQueue(client, "queue_1")
	q2 := NewQueue(client, "queue_2")

	require.NoError(t, q1.Push(ctx, &NotificationMessage{SubscriptionID: 1}))
	require.NoError(t, q2.Push(ctx, &NotificationMessage{SubscriptionID: 2}))

	len1, _ := q1.Length(ctx)
	len2, _ := q2.Length(ctx)
	assert.Equal(t, int64(1), len1)
	assert.Equal(t, int64(1), len2)

	result1, _ := q1.Pop(ctx, time.Second)
	result2, _ := q2.Pop(ctx, time.Second)

	assert.Equal(t, int64(1), result1.SubscriptionID)
	assert.Equal(t, int64(2), result2.SubscriptionID)
}
