package runtime

import (
	"context"
	"errors"
	"time"

	"github.com/dop251/goja"

	"github.com/LENAX/function-engine/pkg/core/execution"
)

// EmbeddedRuntime 进程内嵌入式运行时（对外导出）
// 每次执行使用独立的goja.Runtime，绑定request/method/headers/db/response后同步运行提交代码；
// response通过引用绑定，提交代码就地修改脚手架
type EmbeddedRuntime struct {
	timeout time.Duration
}

// NewEmbeddedRuntime 创建嵌入式运行时
// timeout为单次执行的墙钟预算
func NewEmbeddedRuntime(timeout time.Duration) *EmbeddedRuntime {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &EmbeddedRuntime{timeout: timeout}
}

// Execute 执行提交代码并收敛为终态Outcome
// 任何解析/运行时故障都在此捕获，不向上层抛出
func (r *EmbeddedRuntime) Execute(ctx context.Context, code string, ec *execution.Context) execution.Outcome {
	vm := goja.New()
	vm.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))

	vm.Set("request", ec.Request)
	vm.Set("method", ec.Method)
	vm.Set("headers", ec.Headers)
	vm.Set("response", ec.Response)
	vm.Set("db", NewDBBinding(ec.DB))

	// 截止时间取配置预算与调用方deadline中更早者
	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	timer := time.AfterFunc(timeout, func() {
		vm.Interrupt(execution.MessageTimeout)
	})
	defer timer.Stop()

	if _, err := vm.RunScript("<eval>", code); err != nil {
		return classifyError(err)
	}

	return execution.Completed(execution.EnvelopeFromScaffold(ec.Response))
}

// classifyError 将goja错误映射为终态Outcome
func classifyError(err error) execution.Outcome {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return execution.TimedOut()
	}

	var syntaxErr *goja.CompilerSyntaxError
	if errors.As(err, &syntaxErr) {
		return execution.Faulted(FaultMessage(syntaxErr.Error(), ""), execution.ErrorTypeSyntax)
	}

	var exc *goja.Exception
	if errors.As(err, &exc) {
		return execution.Faulted(FaultMessage(exc.Value().String(), exc.String()), execution.ErrorTypeRuntime)
	}

	return execution.Faulted(FaultMessage(err.Error(), ""), execution.ErrorTypeRuntime)
}
