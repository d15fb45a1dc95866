package execution

// Envelope 统一响应信封（对外导出）
// 所有调用的领域级结果都以该结构返回，success字段（而非HTTP状态码）是权威的结果信号
type Envelope struct {
	Success    bool   `json:"success"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Error      any    `json:"error,omitempty"`
	ErrorType  string `json:"error_type,omitempty"`
	Middleware string `json:"middleware,omitempty"`
}

// 错误分类常量
const (
	ErrorTypeSyntax             = "syntax_error"
	ErrorTypeRuntime            = "runtime_error"
	ErrorTypeTimeout            = "timeout"
	ErrorTypeBackendUnavailable = "backend_unavailable"
)

// 固定的用户可见消息（超时与后端不可用对调用方必须稳定可判别）
const (
	MessageTimeout            = "execution time exceeded"
	MessageBackendUnavailable = "execution backend unavailable"
)

// NewScaffold 创建函数执行用的响应脚手架
// 提交代码通过response引用就地修改该结构
func NewScaffold() map[string]any {
	return map[string]any{
		"success": false,
		"data":    nil,
		"message": "",
		"error":   nil,
	}
}

// NewMiddlewareScaffold 创建中间件执行用的独立响应脚手架
// 初始success为true：中间件只有显式置success=false才构成否决，未触碰即放行
func NewMiddlewareScaffold() map[string]any {
	return map[string]any{
		"success": true,
		"data":    nil,
		"message": "",
		"error":   nil,
	}
}

// EnvelopeFromScaffold 从脚手架读回信封
func EnvelopeFromScaffold(m map[string]any) *Envelope {
	env := &Envelope{}
	if v, ok := m["success"].(bool); ok {
		env.Success = v
	}
	env.Data = m["data"]
	if v, ok := m["message"].(string); ok {
		env.Message = v
	}
	if v, ok := m["error"]; ok && v != nil {
		env.Error = v
	}
	return env
}

// FaultEnvelope 构造代码故障信封（消息已脱敏）
func FaultEnvelope(message, errorType string) *Envelope {
	return &Envelope{
		Success:   false,
		Data:      nil,
		Message:   message,
		ErrorType: errorType,
	}
}

// TimeoutEnvelope 构造超时信封
func TimeoutEnvelope() *Envelope {
	return &Envelope{Success: false, Data: nil, Message: MessageTimeout, ErrorType: ErrorTypeTimeout}
}

// BackendUnavailableEnvelope 构造后端不可用信封
func BackendUnavailableEnvelope() *Envelope {
	return &Envelope{Success: false, Data: nil, Message: MessageBackendUnavailable, ErrorType: ErrorTypeBackendUnavailable}
}
