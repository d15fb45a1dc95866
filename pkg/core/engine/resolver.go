package engine

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/LENAX/function-engine/pkg/storage"
)

// RoutingError 路由类错误（对外导出）
// 唯一允许携带非200状态码的错误类别
type RoutingError struct {
	Status  int
	Message string
}

func (e *RoutingError) Error() string {
	return e.Message
}

// 路由错误构造
func routingErrNameRequired() *RoutingError {
	return &RoutingError{Status: http.StatusBadRequest, Message: "function name required"}
}

// 不存在与disabled对调用方必须不可区分，消息保持同一条
func routingErrNotFound() *RoutingError {
	return &RoutingError{Status: http.StatusNotFound, Message: "function not found"}
}

func routingErrMethodNotAllowed(expected string) *RoutingError {
	return &RoutingError{
		Status:  http.StatusMethodNotAllowed,
		Message: fmt.Sprintf("method not allowed, expected %s", expected),
	}
}

// 存储故障不是路由结论：与"不存在"严格区分，运维侧才能分辨死库和缺函数
func routingErrStoreUnavailable() *RoutingError {
	return &RoutingError{Status: http.StatusInternalServerError, Message: "definition store unavailable"}
}

// ResolvedCall 路由解析结果
type ResolvedCall struct {
	Function   *storage.FunctionDefinition
	Middleware *storage.MiddlewareDefinition // nil表示无需守卫
}

// resolve 将入站调用映射为函数定义并应用可见性/方法规则
func (e *Engine) resolve(ctx context.Context, name, method string) (*ResolvedCall, *RoutingError) {
	if strings.TrimSpace(name) == "" {
		return nil, routingErrNameRequired()
	}

	fn, err := e.repo.GetEnabledFunctionByName(ctx, name)
	if err != nil {
		e.logger.Error().Err(err).Str("function", name).Msg("function lookup failed")
		return nil, routingErrStoreUnavailable()
	}
	if fn == nil {
		return nil, routingErrNotFound()
	}

	if !strings.EqualFold(fn.HTTPMethod, method) {
		return nil, routingErrMethodNotAllowed(fn.HTTPMethod)
	}

	call := &ResolvedCall{Function: fn}

	// 关联中间件存在但disabled时静默跳过，与无守卫等价；
	// 查询报错则整体失败，绝不因存储故障让调用绕过守卫
	if fn.MiddlewareID != "" {
		mw, err := e.repo.GetEnabledMiddlewareByID(ctx, fn.MiddlewareID)
		if err != nil {
			e.logger.Error().Err(err).Str("middleware_id", fn.MiddlewareID).Msg("middleware lookup failed")
			return nil, routingErrStoreUnavailable()
		}
		if mw != nil {
			call.Middleware = mw
		}
	}

	return call, nil
}
