package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/LENAX/function-engine/pkg/core/engine"
)

// ExecuteHandler 函数执行API处理器
type ExecuteHandler struct {
	engine *engine.Engine
}

// NewExecuteHandler 创建ExecuteHandler
func NewExecuteHandler(eng *engine.Engine) *ExecuteHandler {
	return &ExecuteHandler{engine: eng}
}

// Handle 执行函数
// ANY /cloud-functions/execute?function=<name>
// ANY /cloud-functions/execute/<name>
func (h *ExecuteHandler) Handle(c *gin.Context) {
	method := c.Request.Method

	// 请求体按可选JSON对象解析，解析失败等同空体
	var body map[string]any
	if method != http.MethodGet && c.Request.Body != nil {
		raw, err := io.ReadAll(c.Request.Body)
		if err == nil && len(raw) > 0 {
			_ = json.Unmarshal(raw, &body)
		}
	}

	// 名称优先级：查询参数 → 请求体字段 → 路径尾段
	name := c.Query("function")
	if name == "" && body != nil {
		if v, ok := body["function"].(string); ok {
			name = v
		}
	}
	if name == "" {
		name = strings.Trim(c.Param("function"), "/")
	}

	status, env := h.engine.Execute(c.Request.Context(), &engine.Call{
		Name:    name,
		Method:  method,
		Headers: c.Request.Header,
		Body:    body,
		Trigger: engine.TriggerHTTP,
	})

	c.JSON(status, env)
}
