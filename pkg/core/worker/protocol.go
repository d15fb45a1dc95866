package worker

import "github.com/LENAX/function-engine/pkg/core/execution"

// ExecutePayload Sidecar Worker回环协议的请求体
// POST / {code, context:{request, method, headers, response}, timeout_ms}
type ExecutePayload struct {
	Code      string         `json:"code"`
	Context   PayloadContext `json:"context"`
	TimeoutMS int64          `json:"timeout_ms"`
}

// PayloadContext 随调用传给Worker的执行上下文快照
// DB句柄不过线，Worker使用自己的连接池
type PayloadContext struct {
	Request  map[string]any    `json:"request"`
	Method   string            `json:"method"`
	Headers  map[string]string `json:"headers"`
	Response map[string]any    `json:"response"`
}

// NewExecutePayload 从执行上下文构造协议请求体
func NewExecutePayload(code string, ec *execution.Context, timeoutMS int64) *ExecutePayload {
	return &ExecutePayload{
		Code: code,
		Context: PayloadContext{
			Request:  ec.Request,
			Method:   ec.Method,
			Headers:  ec.Headers,
			Response: ec.Response,
		},
		TimeoutMS: timeoutMS,
	}
}
