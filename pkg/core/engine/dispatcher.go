package engine

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/LENAX/function-engine/pkg/core/execution"
	"github.com/LENAX/function-engine/pkg/core/runtime"
	"github.com/LENAX/function-engine/pkg/core/worker"
	"github.com/LENAX/function-engine/pkg/storage"
)

// Dispatcher 语言分发器（对外导出）
// 按记录声明的language把执行请求路由到嵌入式运行时或Sidecar Worker客户端；
// 所有路径收敛到固定的终态集合，异常不越过该组件
type Dispatcher struct {
	embedded   *runtime.EmbeddedRuntime
	sidecar    *worker.Client
	supervisor *worker.Supervisor // 可为nil，此时Worker完全由外部管理
	logger     zerolog.Logger
}

// NewDispatcher 创建语言分发器
func NewDispatcher(embedded *runtime.EmbeddedRuntime, sidecar *worker.Client, supervisor *worker.Supervisor, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		embedded:   embedded,
		sidecar:    sidecar,
		supervisor: supervisor,
		logger:     logger,
	}
}

// Dispatch 执行一段提交代码并返回终态Outcome
func (d *Dispatcher) Dispatch(ctx context.Context, language storage.Language, code string, ec *execution.Context) execution.Outcome {
	state := execution.StatePending
	d.logger.Debug().Str("language", string(language)).Str("state", string(state)).Msg("execution pending")

	state = execution.StateDispatched
	d.logger.Debug().Str("language", string(language)).Str("state", string(state)).Msg("execution dispatched")

	var outcome execution.Outcome
	switch language {
	case storage.LanguageEmbedded:
		outcome = d.embedded.Execute(ctx, code, ec)
	case storage.LanguageSidecar:
		outcome = d.sidecar.Execute(ctx, code, ec)
		// 首次不可用时按需拉起Worker再试一次
		if outcome.State == execution.StateBackendUnavailable && d.supervisor != nil {
			if err := d.supervisor.EnsureRunning(ctx); err == nil {
				outcome = d.sidecar.Execute(ctx, code, ec)
			}
		}
	default:
		outcome = execution.Faulted(fmt.Sprintf("unsupported language: %s", language), execution.ErrorTypeRuntime)
	}

	if !outcome.State.Terminal() {
		// 防御收敛：非终态视为故障
		outcome = execution.Faulted("execution ended in non-terminal state", execution.ErrorTypeRuntime)
	}

	d.logger.Debug().Str("language", string(language)).Str("state", string(outcome.State)).Msg("execution settled")
	return outcome
}
