package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupRepo 创建基于临时SQLite文件的定义存储
func setupRepo(t *testing.T) *DefinitionRepo {
	dbFile := filepath.Join(t.TempDir(), "definitions.db")

	db, dialect, err := Open("sqlite", dbFile, PoolOptions{})
	require.NoError(t, err)

	repo, err := NewDefinitionRepo(db, dialect)
	require.NoError(t, err)

	t.Cleanup(func() { repo.Close() })
	return repo
}

// TestDefinitionRepo_SaveAndGetFunction 测试函数定义保存与按名读取
func TestDefinitionRepo_SaveAndGetFunction(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	fn := &FunctionDefinition{
		Name:       "Order Lookup",
		Code:       `response.success = true;`,
		Language:   LanguageEmbedded,
		HTTPMethod: "post",
		Enabled:    true,
	}
	require.NoError(t, repo.SaveFunction(ctx, fn))

	// ID与派生字段在保存时填充
	assert.NotEmpty(t, fn.ID)
	assert.Equal(t, "POST", fn.HTTPMethod)
	assert.Equal(t, "order-lookup", fn.Endpoint)

	loaded, err := repo.GetEnabledFunctionByName(ctx, "Order Lookup")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, fn.ID, loaded.ID)
	assert.Equal(t, LanguageEmbedded, loaded.Language)
}

// TestDefinitionRepo_DisabledFunctionInvisible 测试disabled函数对执行路径不可见
func TestDefinitionRepo_DisabledFunctionInvisible(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	fn := &FunctionDefinition{
		Name:       "hidden",
		Code:       `response.success = true;`,
		Language:   LanguageEmbedded,
		HTTPMethod: "GET",
		Enabled:    false,
	}
	require.NoError(t, repo.SaveFunction(ctx, fn))

	loaded, err := repo.GetEnabledFunctionByName(ctx, "hidden")
	require.NoError(t, err)
	// 与不存在一样返回nil
	assert.Nil(t, loaded)

	// 按ID读取不过滤enabled，供调度器与管理接口使用
	byID, err := repo.GetFunctionByID(ctx, fn.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.False(t, byID.Enabled)
}

// TestDefinitionRepo_InvalidDefinitionsRejected 测试非法语言与方法被拒绝
func TestDefinitionRepo_InvalidDefinitionsRejected(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	err := repo.SaveFunction(ctx, &FunctionDefinition{
		Name: "bad-lang", Language: "ruby", HTTPMethod: "GET",
	})
	assert.Error(t, err)

	err = repo.SaveFunction(ctx, &FunctionDefinition{
		Name: "bad-method", Language: LanguageEmbedded, HTTPMethod: "TRACE",
	})
	assert.Error(t, err)
}

// TestDefinitionRepo_MiddlewareDeleteGuard 测试被函数引用的中间件禁止删除
func TestDefinitionRepo_MiddlewareDeleteGuard(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	mw := &MiddlewareDefinition{
		Name:     "auth-guard",
		Code:     `if (!headers["x-api-key"]) { response.success = false; }`,
		Language: LanguageEmbedded,
		Enabled:  true,
	}
	require.NoError(t, repo.SaveMiddleware(ctx, mw))

	fn := &FunctionDefinition{
		Name:         "guarded",
		Code:         `response.success = true;`,
		Language:     LanguageEmbedded,
		HTTPMethod:   "POST",
		Enabled:      true,
		MiddlewareID: mw.ID,
	}
	require.NoError(t, repo.SaveFunction(ctx, fn))

	// 仍被引用时删除失败
	err := repo.DeleteMiddleware(ctx, mw.ID)
	require.Error(t, err)
	var inUse *ErrMiddlewareInUse
	require.ErrorAs(t, err, &inUse)
	assert.Equal(t, 1, inUse.RefCount)

	// 解除引用后可删除
	require.NoError(t, repo.DeleteFunction(ctx, fn.ID))
	require.NoError(t, repo.DeleteMiddleware(ctx, mw.ID))

	gone, err := repo.GetEnabledMiddlewareByID(ctx, mw.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

// TestDefinitionRepo_DisabledMiddlewareInvisible 测试disabled中间件对执行路径不可见
func TestDefinitionRepo_DisabledMiddlewareInvisible(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	mw := &MiddlewareDefinition{
		Name:     "off-guard",
		Code:     `response.success = false;`,
		Language: LanguageEmbedded,
		Enabled:  false,
	}
	require.NoError(t, repo.SaveMiddleware(ctx, mw))

	loaded, err := repo.GetEnabledMiddlewareByID(ctx, mw.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

// TestDefinitionRepo_Schedules 测试调度定义的保存与enabled过滤
func TestDefinitionRepo_Schedules(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	fn := &FunctionDefinition{
		Name: "nightly", Code: `response.success = true;`,
		Language: LanguageEmbedded, HTTPMethod: "POST", Enabled: true,
	}
	require.NoError(t, repo.SaveFunction(ctx, fn))

	active := &ScheduleDefinition{FunctionID: fn.ID, CronExpr: "0 2 * * *", Enabled: true}
	inactive := &ScheduleDefinition{FunctionID: fn.ID, CronExpr: "0 3 * * *", Enabled: false}
	require.NoError(t, repo.SaveSchedule(ctx, active))
	require.NoError(t, repo.SaveSchedule(ctx, inactive))

	schedules, err := repo.ListEnabledSchedules(ctx)
	require.NoError(t, err)
	require.Len(t, schedules, 1)
	assert.Equal(t, active.ID, schedules[0].ID)
	assert.Equal(t, "0 2 * * *", schedules[0].CronExpr)

	require.NoError(t, repo.DeleteSchedule(ctx, active.ID))
	schedules, err = repo.ListEnabledSchedules(ctx)
	require.NoError(t, err)
	assert.Empty(t, schedules)
}

// TestDefinitionRepo_UpdateFunction 测试带ID保存走更新路径
func TestDefinitionRepo_UpdateFunction(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	fn := &FunctionDefinition{
		Name: "versioned", Code: `response.success = true;`,
		Language: LanguageEmbedded, HTTPMethod: "GET", Enabled: true,
	}
	require.NoError(t, repo.SaveFunction(ctx, fn))
	id := fn.ID

	fn.Code = `response.success = true; response.data = {v: 2};`
	fn.Enabled = false
	require.NoError(t, repo.SaveFunction(ctx, fn))
	assert.Equal(t, id, fn.ID)

	loaded, err := repo.GetFunctionByID(ctx, id)
	require.NoError(t, err)
	assert.Contains(t, loaded.Code, "v: 2")
	assert.False(t, loaded.Enabled)
}
