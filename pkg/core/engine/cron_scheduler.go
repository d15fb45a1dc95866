package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/LENAX/function-engine/pkg/storage"
)

// CronScheduler 定时调度器（对外导出）
// 将enabled的调度定义注册为Cron任务，触发时走与HTTP调用完全相同的分发路径
type CronScheduler struct {
	cron    *cron.Cron
	engine  *Engine
	entries map[string]cron.EntryID // scheduleID -> cron.EntryID映射
	logger  zerolog.Logger
	mu      sync.RWMutex
}

// NewCronScheduler 创建定时调度器（对外导出）
func NewCronScheduler(eng *Engine, logger zerolog.Logger) *CronScheduler {
	return &CronScheduler{
		cron:    cron.New(),
		engine:  eng,
		entries: make(map[string]cron.EntryID),
		logger:  logger,
	}
}

// LoadFromStore 从存储加载所有enabled调度定义并注册
func (cs *CronScheduler) LoadFromStore(ctx context.Context) error {
	schedules, err := cs.engine.Repo().ListEnabledSchedules(ctx)
	if err != nil {
		return fmt.Errorf("load schedules failed: %w", err)
	}

	for _, sched := range schedules {
		if err := cs.Register(ctx, sched); err != nil {
			cs.logger.Warn().Err(err).Str("schedule_id", sched.ID).Msg("skip invalid schedule")
		}
	}
	return nil
}

// Register 注册单条调度定义
func (cs *CronScheduler) Register(ctx context.Context, sched *storage.ScheduleDefinition) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if _, exists := cs.entries[sched.ID]; exists {
		return fmt.Errorf("schedule %s already registered", sched.ID)
	}

	fn, err := cs.engine.Repo().GetFunctionByID(ctx, sched.FunctionID)
	if err != nil {
		return fmt.Errorf("resolve scheduled function failed: %w", err)
	}
	if fn == nil {
		return fmt.Errorf("scheduled function %s not found", sched.FunctionID)
	}

	// 触发时按名称重新解析，定义变更/禁用在下次触发自然生效
	name := fn.Name
	method := fn.HTTPMethod
	entryID, err := cs.cron.AddFunc(sched.CronExpr, func() {
		cs.trigger(name, method)
	})
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", sched.CronExpr, err)
	}

	cs.entries[sched.ID] = entryID
	cs.logger.Info().Str("schedule_id", sched.ID).Str("function", name).Str("cron", sched.CronExpr).Msg("schedule registered")
	return nil
}

// Unregister 取消注册调度定义
func (cs *CronScheduler) Unregister(scheduleID string) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	entryID, exists := cs.entries[scheduleID]
	if !exists {
		return fmt.Errorf("schedule %s not registered", scheduleID)
	}

	cs.cron.Remove(entryID)
	delete(cs.entries, scheduleID)
	return nil
}

// trigger 触发一次定时执行
// 空请求体与空头，结果只进事件总线，不返回给任何调用方
func (cs *CronScheduler) trigger(name, method string) {
	status, env := cs.engine.Execute(context.Background(), &Call{
		Name:    name,
		Method:  method,
		Trigger: TriggerCron,
	})

	cs.logger.Info().
		Str("function", name).
		Int("status", status).
		Bool("success", env.Success).
		Msg("scheduled execution finished")
}

// Start 启动调度器
func (cs *CronScheduler) Start() {
	cs.cron.Start()
	cs.logger.Info().Int("schedules", len(cs.entries)).Msg("cron scheduler started")
}

// Stop 停止调度器，等待在途任务结束
func (cs *CronScheduler) Stop() {
	ctx := cs.cron.Stop()
	<-ctx.Done()
	cs.logger.Info().Msg("cron scheduler stopped")
}
