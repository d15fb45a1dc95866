package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBus_PublishSubscribe 测试事件发布订阅回路
func TestBus_PublishSubscribe(t *testing.T) {
	bus := NewBus(zerolog.Nop())
	t.Cleanup(func() { bus.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	messages, err := bus.Subscribe(ctx)
	require.NoError(t, err)

	event := NewExecutionEvent(EventExecutionCompleted, "order-lookup")
	event.Trigger = "http"
	event.Success = true
	bus.Publish(event)

	select {
	case msg := <-messages:
		var got ExecutionEvent
		require.NoError(t, json.Unmarshal(msg.Payload, &got))
		msg.Ack()

		assert.Equal(t, event.ID, got.ID)
		assert.Equal(t, EventExecutionCompleted, got.Type)
		assert.Equal(t, "order-lookup", got.FunctionName)
		assert.True(t, got.Success)
	case <-time.After(2 * time.Second):
		t.Fatal("未在期限内收到事件")
	}
}

// TestBus_PublishWithoutSubscribers 测试无订阅者时发布不阻塞不报错
func TestBus_PublishWithoutSubscribers(t *testing.T) {
	bus := NewBus(zerolog.Nop())
	t.Cleanup(func() { bus.Close() })

	bus.Publish(NewExecutionEvent(EventExecutionStarted, "lonely"))
}

// TestNewExecutionEvent 测试事件构造填充ID与时间戳
func TestNewExecutionEvent(t *testing.T) {
	event := NewExecutionEvent(EventMiddlewareRejected, "guarded")

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, EventMiddlewareRejected, event.Type)
	assert.Equal(t, "guarded", event.FunctionName)
	assert.False(t, event.Timestamp.IsZero())
}
