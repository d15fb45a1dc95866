package storage

import (
	"context"
	"time"
)

// Language 代码执行后端类型
type Language string

const (
	// LanguageEmbedded 进程内嵌入式运行时执行
	LanguageEmbedded Language = "embedded"
	// LanguageSidecar 委托给进程外Sidecar Worker执行
	LanguageSidecar Language = "sidecar"
)

// Valid 判断语言枚举是否合法
func (l Language) Valid() bool {
	return l == LanguageEmbedded || l == LanguageSidecar
}

// AllowedMethods 函数可绑定的HTTP方法集合
var AllowedMethods = map[string]bool{
	"GET":    true,
	"POST":   true,
	"PUT":    true,
	"DELETE": true,
	"PATCH":  true,
}

// FunctionDefinition 函数定义记录
// name与endpoint全局唯一，endpoint由name派生
type FunctionDefinition struct {
	ID           string
	Name         string
	Description  string
	Code         string
	Language     Language
	HTTPMethod   string
	Endpoint     string
	Enabled      bool
	MiddlewareID string // 为空表示未关联中间件
	CreatedBy    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// MiddlewareDefinition 中间件定义记录
// 可被零或多个函数引用；被引用时禁止删除
type MiddlewareDefinition struct {
	ID          string
	Name        string
	Description string
	Code        string
	Language    Language
	Enabled     bool
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ScheduleDefinition 定时调度定义记录
// 引擎启动时加载enabled记录并注册到Cron调度器
type ScheduleDefinition struct {
	ID         string
	FunctionID string
	CronExpr   string
	Enabled    bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ErrMiddlewareInUse 中间件仍被函数引用时的删除错误
type ErrMiddlewareInUse struct {
	MiddlewareID string
	RefCount     int
}

func (e *ErrMiddlewareInUse) Error() string {
	return "middleware is referenced by functions and cannot be deleted"
}

// DefinitionRepository 定义存储接口（对外导出）
// 引擎执行路径只做enabled过滤的读操作；写操作由外部管理界面与测试夹具使用
type DefinitionRepository interface {
	// 执行路径读接口
	GetEnabledFunctionByName(ctx context.Context, name string) (*FunctionDefinition, error)
	GetEnabledMiddlewareByID(ctx context.Context, id string) (*MiddlewareDefinition, error)
	ListEnabledSchedules(ctx context.Context) ([]*ScheduleDefinition, error)
	GetFunctionByID(ctx context.Context, id string) (*FunctionDefinition, error)

	// 管理接口
	SaveFunction(ctx context.Context, fn *FunctionDefinition) error
	DeleteFunction(ctx context.Context, id string) error
	SaveMiddleware(ctx context.Context, mw *MiddlewareDefinition) error
	DeleteMiddleware(ctx context.Context, id string) error
	SaveSchedule(ctx context.Context, sched *ScheduleDefinition) error
	DeleteSchedule(ctx context.Context, id string) error

	Close() error
}
