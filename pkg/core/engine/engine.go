package engine

import (
	"context"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"github.com/LENAX/function-engine/pkg/core/events"
	"github.com/LENAX/function-engine/pkg/core/execution"
	"github.com/LENAX/function-engine/pkg/storage"
)

// 触发来源标识
const (
	TriggerHTTP = "http"
	TriggerCron = "cron"
)

// Call 一次入站调用（对外导出）
type Call struct {
	Name    string
	Method  string
	Headers http.Header
	Body    map[string]any
	Trigger string
}

// Engine 执行引擎核心结构体（对外导出）
// 编排解析→上下文构建→中间件→分发→归一化的完整调用链；
// 除RoutingError外的所有结果都以200+结构化信封返回
type Engine struct {
	repo       storage.DefinitionRepository
	db         *sqlx.DB
	dispatcher *Dispatcher
	bus        *events.Bus
	logger     zerolog.Logger
}

// NewEngine 创建Engine实例（对外导出的工厂方法）
// db为宿主应用共享的连接池，同时作为提交代码可见的DB句柄
func NewEngine(repo storage.DefinitionRepository, db *sqlx.DB, dispatcher *Dispatcher, bus *events.Bus, logger zerolog.Logger) *Engine {
	return &Engine{
		repo:       repo,
		db:         db,
		dispatcher: dispatcher,
		bus:        bus,
		logger:     logger,
	}
}

// DB 获取共享数据库连接池
func (e *Engine) DB() *sqlx.DB {
	return e.db
}

// Repo 获取定义存储
func (e *Engine) Repo() storage.DefinitionRepository {
	return e.repo
}

// Execute 处理一次入站调用，返回HTTP状态码与响应信封
func (e *Engine) Execute(ctx context.Context, call *Call) (int, *execution.Envelope) {
	started := time.Now()

	resolved, routingErr := e.resolve(ctx, call.Name, call.Method)
	if routingErr != nil {
		return routingErr.Status, &execution.Envelope{
			Success: false,
			Data:    nil,
			Message: routingErr.Message,
		}
	}

	fn := resolved.Function
	ec := execution.BuildContext(call.Method, call.Body, call.Headers, e.db)

	e.publish(events.EventExecutionStarted, fn, call.Trigger, nil, started)

	// 中间件先行，函数在中间件完全结束前绝不开始
	if resolved.Middleware != nil {
		if status, env, done := e.runMiddleware(ctx, resolved.Middleware, fn, call.Trigger, ec, started); done {
			return status, env
		}
	}

	outcome := e.dispatcher.Dispatch(ctx, fn.Language, fn.Code, ec)
	e.publishOutcome(fn, call.Trigger, outcome, started)

	return e.normalize(outcome)
}

// runMiddleware 执行守卫中间件
// 返回done=true表示调用在此终结（否决或中间件自身故障），函数执行被整体跳过
func (e *Engine) runMiddleware(ctx context.Context, mw *storage.MiddlewareDefinition, fn *storage.FunctionDefinition, trigger string, ec *execution.Context, started time.Time) (int, *execution.Envelope, bool) {
	// 同样的request/method/headers/db绑定，独立的响应脚手架
	mwContext := ec.WithScaffold(execution.NewMiddlewareScaffold())

	outcome := e.dispatcher.Dispatch(ctx, mw.Language, mw.Code, mwContext)

	switch outcome.State {
	case execution.StateCompletedSuccess, execution.StateCompletedFailure:
		env := outcome.Envelope
		if !env.Success {
			// 显式否决：最终信封即中间件的脚手架，标注中间件名，状态保持200
			env.Middleware = mw.Name
			e.logger.Info().Str("function", fn.Name).Str("middleware", mw.Name).Msg("middleware rejected call")
			e.publish(events.EventMiddlewareRejected, fn, trigger, env, started)
			return http.StatusOK, env, true
		}
		// 放行：中间件产出的data向前合并为运行中的响应状态
		if env.Data != nil {
			ec.Response["data"] = env.Data
		}
		return 0, nil, false

	default:
		// 中间件内部故障在此边界捕获，函数执行仍被跳过
		outcome.Envelope.Middleware = mw.Name
		e.publishOutcome(fn, trigger, outcome, started)
		status, env := e.normalize(outcome)
		return status, env, true
	}
}

// normalize 将终态Outcome映射为HTTP状态码与信封
// 传输层状态码只保留给路由/契约违例，所有业务结果都是200
func (e *Engine) normalize(outcome execution.Outcome) (int, *execution.Envelope) {
	return http.StatusOK, outcome.Envelope
}

// publish 发布执行事件
func (e *Engine) publish(eventType events.EventType, fn *storage.FunctionDefinition, trigger string, env *execution.Envelope, started time.Time) {
	if e.bus == nil {
		return
	}
	event := events.NewExecutionEvent(eventType, fn.Name)
	event.Language = string(fn.Language)
	event.Trigger = trigger
	event.DurationMS = time.Since(started).Milliseconds()
	if env != nil {
		event.Success = env.Success
		event.Message = env.Message
	}
	e.bus.Publish(event)
}

// publishOutcome 按终态选择事件类型并发布
func (e *Engine) publishOutcome(fn *storage.FunctionDefinition, trigger string, outcome execution.Outcome, started time.Time) {
	var eventType events.EventType
	switch outcome.State {
	case execution.StateFaulted:
		eventType = events.EventExecutionFaulted
	case execution.StateTimedOut:
		eventType = events.EventExecutionTimeout
	case execution.StateBackendUnavailable:
		eventType = events.EventBackendUnavailable
	default:
		eventType = events.EventExecutionCompleted
	}
	e.publish(eventType, fn, trigger, outcome.Envelope, started)
}
