package execution

// State 单次执行的状态机状态
// Pending → Dispatched → {CompletedSuccess, CompletedFailure, Faulted, TimedOut, BackendUnavailable}
type State string

const (
	StatePending            State = "PENDING"
	StateDispatched         State = "DISPATCHED"
	StateCompletedSuccess   State = "COMPLETED_SUCCESS"
	StateCompletedFailure   State = "COMPLETED_FAILURE"
	StateFaulted            State = "FAULTED"
	StateTimedOut           State = "TIMED_OUT"
	StateBackendUnavailable State = "BACKEND_UNAVAILABLE"
)

// Terminal 判断状态是否为终态
func (s State) Terminal() bool {
	switch s {
	case StateCompletedSuccess, StateCompletedFailure, StateFaulted, StateTimedOut, StateBackendUnavailable:
		return true
	}
	return false
}

// Outcome 一次代码执行的终态结果
// 任何执行路径都必须收敛到一个Outcome，不允许异常越过分发层
type Outcome struct {
	State    State
	Envelope *Envelope
}

// Completed 根据信封的success标志构造完成态Outcome
func Completed(env *Envelope) Outcome {
	if env.Success {
		return Outcome{State: StateCompletedSuccess, Envelope: env}
	}
	return Outcome{State: StateCompletedFailure, Envelope: env}
}

// Faulted 构造代码故障Outcome
func Faulted(message, errorType string) Outcome {
	return Outcome{State: StateFaulted, Envelope: FaultEnvelope(message, errorType)}
}

// TimedOut 构造超时Outcome
func TimedOut() Outcome {
	return Outcome{State: StateTimedOut, Envelope: TimeoutEnvelope()}
}

// BackendUnavailable 构造后端不可用Outcome
func BackendUnavailable() Outcome {
	return Outcome{State: StateBackendUnavailable, Envelope: BackendUnavailableEnvelope()}
}
