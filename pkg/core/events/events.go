// Package events 提供函数执行生命周期的事件发布订阅支持
package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType 事件类型
type EventType string

const (
	// 执行生命周期事件
	EventExecutionStarted   EventType = "execution.started"   // 执行开始
	EventExecutionCompleted EventType = "execution.completed" // 执行完成（含业务失败）
	EventExecutionFaulted   EventType = "execution.faulted"   // 代码故障
	EventExecutionTimeout   EventType = "execution.timeout"   // 执行超时

	// 守卫与后端事件
	EventMiddlewareRejected EventType = "middleware.rejected" // 中间件否决
	EventBackendUnavailable EventType = "backend.unavailable" // 执行后端不可用
)

// ExecutionEvent 执行生命周期事件
type ExecutionEvent struct {
	ID           string    `json:"id"`            // 事件ID（UUID）
	Type         EventType `json:"type"`          // 事件类型
	FunctionName string    `json:"function_name"` // 函数名
	Language     string    `json:"language"`      // 执行后端
	Trigger      string    `json:"trigger"`       // 触发来源（http/cron）
	Success      bool      `json:"success"`       // 信封success标志
	Message      string    `json:"message"`       // 信封消息
	DurationMS   int64     `json:"duration_ms"`   // 执行耗时
	Timestamp    time.Time `json:"timestamp"`     // 事件时间
}

// NewExecutionEvent 创建执行事件
func NewExecutionEvent(eventType EventType, functionName string) *ExecutionEvent {
	return &ExecutionEvent{
		ID:           uuid.NewString(),
		Type:         eventType,
		FunctionName: functionName,
		Timestamp:    time.Now(),
	}
}
