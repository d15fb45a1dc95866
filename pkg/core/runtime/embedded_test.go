package runtime

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LENAX/function-engine/pkg/core/execution"
)

// setupTestDB 创建内存SQLite测试库
func setupTestDB(t *testing.T) *sqlx.DB {
	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// 内存库随连接消失，锁定单连接
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

// TestEmbeddedRuntime_SuccessRoundTrip 测试提交代码就地修改响应脚手架
func TestEmbeddedRuntime_SuccessRoundTrip(t *testing.T) {
	r := NewEmbeddedRuntime(5 * time.Second)
	ec := execution.BuildContext(http.MethodPost, map[string]any{"amount": 42}, nil, nil)

	code := `
		response.success = true;
		response.data = {doubled: request.amount * 2};
		response.message = "ok";
	`
	outcome := r.Execute(context.Background(), code, ec)

	require.Equal(t, execution.StateCompletedSuccess, outcome.State)
	assert.True(t, outcome.Envelope.Success)
	assert.Equal(t, "ok", outcome.Envelope.Message)

	data, ok := outcome.Envelope.Data.(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 84, data["doubled"])
}

// TestEmbeddedRuntime_ExplicitFailure 测试代码正常结束但success=false时为业务失败态
func TestEmbeddedRuntime_ExplicitFailure(t *testing.T) {
	r := NewEmbeddedRuntime(5 * time.Second)
	ec := execution.BuildContext(http.MethodPost, nil, nil, nil)

	code := `
		response.success = false;
		response.message = "insufficient balance";
	`
	outcome := r.Execute(context.Background(), code, ec)

	assert.Equal(t, execution.StateCompletedFailure, outcome.State)
	assert.False(t, outcome.Envelope.Success)
	assert.Equal(t, "insufficient balance", outcome.Envelope.Message)
}

// TestEmbeddedRuntime_SyntaxError 测试语法错误被捕获并分类
func TestEmbeddedRuntime_SyntaxError(t *testing.T) {
	r := NewEmbeddedRuntime(5 * time.Second)
	ec := execution.BuildContext(http.MethodPost, nil, nil, nil)

	outcome := r.Execute(context.Background(), "function (", ec)

	require.Equal(t, execution.StateFaulted, outcome.State)
	assert.False(t, outcome.Envelope.Success)
	assert.Equal(t, execution.ErrorTypeSyntax, outcome.Envelope.ErrorType)
	assert.NotEmpty(t, outcome.Envelope.Message)
}

// TestEmbeddedRuntime_RuntimeError 测试运行时异常被捕获且消息经过脱敏
func TestEmbeddedRuntime_RuntimeError(t *testing.T) {
	r := NewEmbeddedRuntime(5 * time.Second)
	ec := execution.BuildContext(http.MethodPost, nil, nil, nil)

	outcome := r.Execute(context.Background(), `throw new Error("boom");`, ec)

	require.Equal(t, execution.StateFaulted, outcome.State)
	assert.Equal(t, execution.ErrorTypeRuntime, outcome.Envelope.ErrorType)
	assert.Contains(t, outcome.Envelope.Message, "boom")
	// 首行之外的栈帧文本不得泄露
	assert.NotContains(t, outcome.Envelope.Message, "\n")
}

// TestEmbeddedRuntime_Timeout 测试死循环在预算内被打断
func TestEmbeddedRuntime_Timeout(t *testing.T) {
	r := NewEmbeddedRuntime(100 * time.Millisecond)
	ec := execution.BuildContext(http.MethodPost, nil, nil, nil)

	outcome := r.Execute(context.Background(), `while (true) {}`, ec)

	require.Equal(t, execution.StateTimedOut, outcome.State)
	assert.Equal(t, execution.MessageTimeout, outcome.Envelope.Message)
	assert.Equal(t, execution.ErrorTypeTimeout, outcome.Envelope.ErrorType)
}

// TestEmbeddedRuntime_HeaderAndMethodBindings 测试method与归一化后的headers对代码可见
func TestEmbeddedRuntime_HeaderAndMethodBindings(t *testing.T) {
	r := NewEmbeddedRuntime(5 * time.Second)
	headers := http.Header{"X-Api-Key": []string{"secret-1", "secret-2"}}
	ec := execution.BuildContext("post", nil, headers, nil)

	code := `
		response.success = true;
		response.data = {method: method, key: headers["x-api-key"]};
	`
	outcome := r.Execute(context.Background(), code, ec)

	require.Equal(t, execution.StateCompletedSuccess, outcome.State)
	data := outcome.Envelope.Data.(map[string]any)
	assert.Equal(t, "POST", data["method"])
	// 多值头只取首个
	assert.Equal(t, "secret-1", data["key"])
}

// TestEmbeddedRuntime_DBPrimitives 测试提交代码经db绑定读写宿主数据库
func TestEmbeddedRuntime_DBPrimitives(t *testing.T) {
	db := setupTestDB(t)
	_, err := db.Exec(`CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT)`)
	require.NoError(t, err)

	r := NewEmbeddedRuntime(5 * time.Second)
	ec := execution.BuildContext(http.MethodPost, nil, nil, db)

	code := `
		db.execute("INSERT INTO items (name) VALUES (?)", ["widget"]);
		var rows = db.queryMany("SELECT name FROM items", []);
		var missing = db.queryOne("SELECT name FROM items WHERE id = ?", [999]);
		response.success = true;
		response.data = {count: rows.length, first: rows[0].name, missing: missing};
	`
	outcome := r.Execute(context.Background(), code, ec)

	require.Equal(t, execution.StateCompletedSuccess, outcome.State)
	data := outcome.Envelope.Data.(map[string]any)
	assert.EqualValues(t, 1, data["count"])
	assert.Equal(t, "widget", data["first"])
	assert.Nil(t, data["missing"])
}
