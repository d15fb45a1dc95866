package worker

import (
	"errors"
	"strings"
	"time"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/eventloop"

	"github.com/LENAX/function-engine/pkg/core/execution"
	jsruntime "github.com/LENAX/function-engine/pkg/core/runtime"
	coreworker "github.com/LENAX/function-engine/pkg/core/worker"
)

// executeCode 在事件循环上运行一段提交代码并读回信封
// 代码作为异步单元执行，可以await三个DB原语；每次执行使用独立的事件循环，
// 绑定全部按调用作用域注入
func (s *Server) executeCode(payload *coreworker.ExecutePayload) *execution.Envelope {
	db, err := s.pool.ensure()
	if err != nil {
		s.logger.Error().Err(err).Msg("database unavailable for execution")
		return execution.BackendUnavailableEnvelope()
	}

	scaffold := payload.Context.Response
	if scaffold == nil {
		scaffold = execution.NewScaffold()
	}
	request := payload.Context.Request
	if request == nil {
		request = map[string]any{}
	}
	headers := payload.Context.Headers
	if headers == nil {
		headers = map[string]string{}
	}

	timeout := time.Duration(payload.TimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = s.cfg.FunctionEngine.Execution.Timeout
	}

	loop := eventloop.NewEventLoop()
	loop.Start()
	defer loop.Stop()

	resultChan := make(chan *execution.Envelope, 1)

	loop.RunOnLoop(func(vm *goja.Runtime) {
		vm.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))
		vm.Set("request", request)
		vm.Set("method", payload.Context.Method)
		vm.Set("headers", headers)
		vm.Set("response", scaffold)
		bindAsyncDB(vm, loop, db)

		timer := time.AfterFunc(timeout, func() {
			vm.Interrupt(execution.MessageTimeout)
		})

		// 同一行拼接async包装，保持用户代码行号不偏移
		script := "(async () => {" + payload.Code + "\n})()"
		value, runErr := vm.RunScript("<eval>", script)
		if runErr != nil {
			timer.Stop()
			resultChan <- envelopeFromRunError(runErr)
			return
		}

		promiseObj := value.ToObject(vm)
		then, ok := goja.AssertFunction(promiseObj.Get("then"))
		if !ok {
			timer.Stop()
			resultChan <- execution.EnvelopeFromScaffold(scaffold)
			return
		}

		onSettled := func(call goja.FunctionCall) goja.Value {
			timer.Stop()
			resultChan <- execution.EnvelopeFromScaffold(scaffold)
			return goja.Undefined()
		}
		onRejected := func(call goja.FunctionCall) goja.Value {
			timer.Stop()
			resultChan <- envelopeFromRejection(vm, call.Argument(0))
			return goja.Undefined()
		}

		if _, err := then(promiseObj, vm.ToValue(onSettled), vm.ToValue(onRejected)); err != nil {
			timer.Stop()
			resultChan <- envelopeFromRunError(err)
		}
	})

	// 事件循环内的interrupt是第一道超时防线，这里兜底保证请求必有应答
	select {
	case env := <-resultChan:
		return env
	case <-time.After(timeout + 2*time.Second):
		s.logger.Warn().Msg("execution did not settle within budget")
		return execution.TimeoutEnvelope()
	}
}

// envelopeFromRunError 把goja错误映射为信封（消息已脱敏）
func envelopeFromRunError(err error) *execution.Envelope {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return execution.TimeoutEnvelope()
	}

	var syntaxErr *goja.CompilerSyntaxError
	if errors.As(err, &syntaxErr) {
		return execution.FaultEnvelope(jsruntime.FaultMessage(syntaxErr.Error(), ""), execution.ErrorTypeSyntax)
	}

	var exc *goja.Exception
	if errors.As(err, &exc) {
		return execution.FaultEnvelope(jsruntime.FaultMessage(exc.Value().String(), exc.String()), execution.ErrorTypeRuntime)
	}

	return execution.FaultEnvelope(jsruntime.FaultMessage(err.Error(), ""), execution.ErrorTypeRuntime)
}

// envelopeFromRejection 把async代码的Promise拒绝值映射为信封
func envelopeFromRejection(vm *goja.Runtime, reason goja.Value) *execution.Envelope {
	if rejectionIsInterrupt(reason) {
		return execution.TimeoutEnvelope()
	}

	message := reason.String()
	stack := ""
	if obj := reason.ToObject(vm); obj != nil {
		if v := obj.Get("stack"); v != nil && !goja.IsUndefined(v) {
			stack = v.String()
		}
	}

	return execution.FaultEnvelope(jsruntime.FaultMessage(message, stack), execution.ErrorTypeRuntime)
}

// rejectionIsInterrupt 判断拒绝值是否来自超时中断
// 按中断类型识别；用户Error即使消息与超时文案雷同也按代码故障处理
func rejectionIsInterrupt(reason goja.Value) bool {
	switch exported := reason.Export().(type) {
	case *goja.InterruptedError:
		return true
	case error:
		var interrupted *goja.InterruptedError
		return errors.As(exported, &interrupted)
	case string:
		// 事件循环回调中的interrupt可能只剩消息字符串浮出
		return strings.Contains(exported, execution.MessageTimeout)
	}
	return false
}
