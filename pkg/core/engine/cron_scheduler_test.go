package engine

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LENAX/function-engine/pkg/storage"
)

// TestCronScheduler_RegisterAndUnregister 测试调度注册与注销
func TestCronScheduler_RegisterAndUnregister(t *testing.T) {
	eng, repo := newTestEngine(t)
	ctx := context.Background()

	fn := saveFunction(t, repo, "nightly-report", "POST", `response.success = true;`, "")
	sched := &storage.ScheduleDefinition{FunctionID: fn.ID, CronExpr: "0 2 * * *", Enabled: true}
	require.NoError(t, repo.SaveSchedule(ctx, sched))

	cs := NewCronScheduler(eng, zerolog.Nop())

	require.NoError(t, cs.Register(ctx, sched))
	// 重复注册被拒绝
	assert.Error(t, cs.Register(ctx, sched))

	require.NoError(t, cs.Unregister(sched.ID))
	assert.Error(t, cs.Unregister(sched.ID))
}

// TestCronScheduler_InvalidExpression 测试非法cron表达式注册失败
func TestCronScheduler_InvalidExpression(t *testing.T) {
	eng, repo := newTestEngine(t)
	ctx := context.Background()

	fn := saveFunction(t, repo, "misconfigured", "POST", `response.success = true;`, "")
	sched := &storage.ScheduleDefinition{FunctionID: fn.ID, CronExpr: "not a cron", Enabled: true}
	require.NoError(t, repo.SaveSchedule(ctx, sched))

	cs := NewCronScheduler(eng, zerolog.Nop())
	assert.Error(t, cs.Register(ctx, sched))
}

// TestCronScheduler_MissingFunction 测试指向不存在函数的调度注册失败
func TestCronScheduler_MissingFunction(t *testing.T) {
	eng, _ := newTestEngine(t)

	sched := &storage.ScheduleDefinition{ID: "orphan", FunctionID: "no-such-id", CronExpr: "* * * * *", Enabled: true}

	cs := NewCronScheduler(eng, zerolog.Nop())
	assert.Error(t, cs.Register(context.Background(), sched))
}

// TestCronScheduler_FiresScheduledFunction 测试调度触发走完整执行链
func TestCronScheduler_FiresScheduledFunction(t *testing.T) {
	eng, repo := newTestEngine(t)
	ctx := context.Background()

	// 函数通过db绑定写标记表，便于断言确实执行过
	_, err := eng.DB().Exec(`CREATE TABLE fired (id INTEGER PRIMARY KEY AUTOINCREMENT)`)
	require.NoError(t, err)

	fn := saveFunction(t, repo, "heartbeat", "POST", `
		db.execute("INSERT INTO fired DEFAULT VALUES", []);
		response.success = true;
	`, "")
	sched := &storage.ScheduleDefinition{FunctionID: fn.ID, CronExpr: "@every 200ms", Enabled: true}
	require.NoError(t, repo.SaveSchedule(ctx, sched))

	cs := NewCronScheduler(eng, zerolog.Nop())
	require.NoError(t, cs.LoadFromStore(ctx))
	cs.Start()
	t.Cleanup(cs.Stop)

	// 等待至少触发一次
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		var count int
		require.NoError(t, eng.DB().Get(&count, `SELECT COUNT(*) FROM fired`))
		if count > 0 {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatal("调度在期限内未触发")
}

// TestCronScheduler_LoadSkipsInvalid 测试加载时跳过非法调度而不中断
func TestCronScheduler_LoadSkipsInvalid(t *testing.T) {
	eng, repo := newTestEngine(t)
	ctx := context.Background()

	good := saveFunction(t, repo, "good-job", "POST", `response.success = true;`, "")
	require.NoError(t, repo.SaveSchedule(ctx, &storage.ScheduleDefinition{
		FunctionID: good.ID, CronExpr: "0 4 * * *", Enabled: true,
	}))
	require.NoError(t, repo.SaveSchedule(ctx, &storage.ScheduleDefinition{
		FunctionID: good.ID, CronExpr: "definitely broken", Enabled: true,
	}))

	cs := NewCronScheduler(eng, zerolog.Nop())
	assert.NoError(t, cs.LoadFromStore(ctx))
}
