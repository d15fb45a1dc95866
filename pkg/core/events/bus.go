package events

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog"
)

// TopicExecution 执行事件主题
const TopicExecution = "function.execution"

// Bus 进程内事件总线（对外导出）
// 实时推送给管理端，不做持久化
type Bus struct {
	pubsub *gochannel.GoChannel
	logger zerolog.Logger
}

// NewBus 创建事件总线
func NewBus(logger zerolog.Logger) *Bus {
	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 64,
	}, watermill.NopLogger{})

	return &Bus{pubsub: pubsub, logger: logger}
}

// Publish 发布执行事件（尽力而为，失败只记日志）
func (b *Bus) Publish(event *ExecutionEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		b.logger.Warn().Err(err).Msg("marshal execution event failed")
		return
	}

	msg := message.NewMessage(event.ID, payload)
	if err := b.pubsub.Publish(TopicExecution, msg); err != nil {
		b.logger.Warn().Err(err).Msg("publish execution event failed")
	}
}

// Subscribe 订阅执行事件流
func (b *Bus) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, TopicExecution)
}

// Close 关闭事件总线
func (b *Bus) Close() error {
	return b.pubsub.Close()
}
