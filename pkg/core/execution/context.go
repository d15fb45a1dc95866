package execution

import (
	"net/http"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Context 单次调用的执行上下文（临时对象，随调用创建和丢弃）
// DB为宿主应用共享的连接池引用，不归Context所有
type Context struct {
	Request  map[string]any
	Method   string
	Headers  map[string]string
	DB       *sqlx.DB
	Response map[string]any
}

// BuildContext 组装执行上下文
// GET请求的Request恒为空map（查询参数不合并进请求体）
func BuildContext(method string, body map[string]any, headers http.Header, db *sqlx.DB) *Context {
	request := body
	if strings.EqualFold(method, http.MethodGet) || request == nil {
		request = map[string]any{}
	}

	return &Context{
		Request:  request,
		Method:   strings.ToUpper(method),
		Headers:  NormalizeHeaders(headers),
		DB:       db,
		Response: NewScaffold(),
	}
}

// WithScaffold 返回共享同一请求/方法/头/DB绑定、但响应脚手架独立的Context
func (c *Context) WithScaffold(scaffold map[string]any) *Context {
	return &Context{
		Request:  c.Request,
		Method:   c.Method,
		Headers:  c.Headers,
		DB:       c.DB,
		Response: scaffold,
	}
}

// NormalizeHeaders 将HTTP头归一化为小写键的map
func NormalizeHeaders(headers http.Header) map[string]string {
	normalized := make(map[string]string, len(headers))
	for key, values := range headers {
		if len(values) == 0 {
			continue
		}
		normalized[strings.ToLower(key)] = values[0]
	}
	return normalized
}
