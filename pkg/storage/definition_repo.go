package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/LENAX/function-engine/pkg/storage/dao"
)

// DefinitionRepo DefinitionRepository的sqlx实现（对外导出）
// 持有宿主应用共享的连接池，不在调用间创建新连接
type DefinitionRepo struct {
	db      *sqlx.DB
	dialect Dialect
}

// NewDefinitionRepo 创建定义存储实例并初始化表结构
func NewDefinitionRepo(db *sqlx.DB, dialect Dialect) (*DefinitionRepo, error) {
	repo := &DefinitionRepo{db: db, dialect: dialect}
	if err := repo.initSchema(); err != nil {
		return nil, fmt.Errorf("init schema failed: %w", err)
	}
	return repo, nil
}

// DB 获取底层数据库连接池
func (r *DefinitionRepo) DB() *sqlx.DB {
	return r.db
}

// Close 关闭数据库连接
func (r *DefinitionRepo) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// initSchema 初始化数据库表结构
func (r *DefinitionRepo) initSchema() error {
	for _, ddl := range r.dialect.CreateTableSQL() {
		if _, err := r.db.Exec(ddl); err != nil {
			return fmt.Errorf("create table failed: %w", err)
		}
	}
	return nil
}

// GetEnabledFunctionByName 按名称读取enabled函数定义
// 不存在或disabled都返回nil，调用方不得区分两者
func (r *DefinitionRepo) GetEnabledFunctionByName(ctx context.Context, name string) (*FunctionDefinition, error) {
	query := r.db.Rebind(`SELECT * FROM function_definition WHERE name = ? AND enabled = ?`)

	var row dao.FunctionDAO
	if err := r.db.GetContext(ctx, &row, query, name, true); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query function failed: %w", err)
	}
	return functionFromDAO(&row), nil
}

// GetFunctionByID 按ID读取函数定义（不过滤enabled，供调度器与管理接口使用）
func (r *DefinitionRepo) GetFunctionByID(ctx context.Context, id string) (*FunctionDefinition, error) {
	query := r.db.Rebind(`SELECT * FROM function_definition WHERE id = ?`)

	var row dao.FunctionDAO
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query function failed: %w", err)
	}
	return functionFromDAO(&row), nil
}

// GetEnabledMiddlewareByID 按ID读取enabled中间件定义
// 不存在或disabled都返回nil
func (r *DefinitionRepo) GetEnabledMiddlewareByID(ctx context.Context, id string) (*MiddlewareDefinition, error) {
	query := r.db.Rebind(`SELECT * FROM middleware_definition WHERE id = ? AND enabled = ?`)

	var row dao.MiddlewareDAO
	if err := r.db.GetContext(ctx, &row, query, id, true); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query middleware failed: %w", err)
	}
	return middlewareFromDAO(&row), nil
}

// ListEnabledSchedules 列出所有enabled的调度定义
func (r *DefinitionRepo) ListEnabledSchedules(ctx context.Context) ([]*ScheduleDefinition, error) {
	query := r.db.Rebind(`SELECT * FROM schedule_definition WHERE enabled = ?`)

	var rows []dao.ScheduleDAO
	if err := r.db.SelectContext(ctx, &rows, query, true); err != nil {
		return nil, fmt.Errorf("query schedules failed: %w", err)
	}

	schedules := make([]*ScheduleDefinition, 0, len(rows))
	for i := range rows {
		schedules = append(schedules, scheduleFromDAO(&rows[i]))
	}
	return schedules, nil
}

// SaveFunction 保存函数定义（ID为空时新建）
func (r *DefinitionRepo) SaveFunction(ctx context.Context, fn *FunctionDefinition) error {
	if !fn.Language.Valid() {
		return fmt.Errorf("invalid language: %s", fn.Language)
	}
	fn.HTTPMethod = strings.ToUpper(fn.HTTPMethod)
	if !AllowedMethods[fn.HTTPMethod] {
		return fmt.Errorf("invalid http method: %s", fn.HTTPMethod)
	}
	// endpoint由name派生
	if fn.Endpoint == "" {
		fn.Endpoint = slugify(fn.Name)
	}

	now := time.Now()
	fn.UpdatedAt = now

	if fn.ID == "" {
		fn.ID = uuid.NewString()
		fn.CreatedAt = now

		query := r.db.Rebind(`INSERT INTO function_definition
			(id, name, description, code, language, http_method, endpoint, enabled, middleware_id, created_by, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		_, err := r.db.ExecContext(ctx, query,
			fn.ID, fn.Name, fn.Description, fn.Code, string(fn.Language), fn.HTTPMethod,
			fn.Endpoint, fn.Enabled, nullString(fn.MiddlewareID), fn.CreatedBy, fn.CreatedAt, fn.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert function failed: %w", err)
		}
		return nil
	}

	query := r.db.Rebind(`UPDATE function_definition SET
		name = ?, description = ?, code = ?, language = ?, http_method = ?, endpoint = ?,
		enabled = ?, middleware_id = ?, updated_at = ?
		WHERE id = ?`)
	_, err := r.db.ExecContext(ctx, query,
		fn.Name, fn.Description, fn.Code, string(fn.Language), fn.HTTPMethod, fn.Endpoint,
		fn.Enabled, nullString(fn.MiddlewareID), fn.UpdatedAt, fn.ID)
	if err != nil {
		return fmt.Errorf("update function failed: %w", err)
	}
	return nil
}

// DeleteFunction 删除函数定义
func (r *DefinitionRepo) DeleteFunction(ctx context.Context, id string) error {
	query := r.db.Rebind(`DELETE FROM function_definition WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete function failed: %w", err)
	}
	return nil
}

// SaveMiddleware 保存中间件定义（ID为空时新建）
func (r *DefinitionRepo) SaveMiddleware(ctx context.Context, mw *MiddlewareDefinition) error {
	if !mw.Language.Valid() {
		return fmt.Errorf("invalid language: %s", mw.Language)
	}

	now := time.Now()
	mw.UpdatedAt = now

	if mw.ID == "" {
		mw.ID = uuid.NewString()
		mw.CreatedAt = now

		query := r.db.Rebind(`INSERT INTO middleware_definition
			(id, name, description, code, language, enabled, created_by, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		_, err := r.db.ExecContext(ctx, query,
			mw.ID, mw.Name, mw.Description, mw.Code, string(mw.Language), mw.Enabled,
			mw.CreatedBy, mw.CreatedAt, mw.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert middleware failed: %w", err)
		}
		return nil
	}

	query := r.db.Rebind(`UPDATE middleware_definition SET
		name = ?, description = ?, code = ?, language = ?, enabled = ?, updated_at = ?
		WHERE id = ?`)
	_, err := r.db.ExecContext(ctx, query,
		mw.Name, mw.Description, mw.Code, string(mw.Language), mw.Enabled, mw.UpdatedAt, mw.ID)
	if err != nil {
		return fmt.Errorf("update middleware failed: %w", err)
	}
	return nil
}

// DeleteMiddleware 删除中间件定义
// 仍被函数引用的中间件拒绝删除，避免端点静默失去守卫
func (r *DefinitionRepo) DeleteMiddleware(ctx context.Context, id string) error {
	countQuery := r.db.Rebind(`SELECT COUNT(*) FROM function_definition WHERE middleware_id = ?`)
	var refCount int
	if err := r.db.GetContext(ctx, &refCount, countQuery, id); err != nil {
		return fmt.Errorf("count middleware references failed: %w", err)
	}
	if refCount > 0 {
		return &ErrMiddlewareInUse{MiddlewareID: id, RefCount: refCount}
	}

	query := r.db.Rebind(`DELETE FROM middleware_definition WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete middleware failed: %w", err)
	}
	return nil
}

// SaveSchedule 保存调度定义（ID为空时新建）
func (r *DefinitionRepo) SaveSchedule(ctx context.Context, sched *ScheduleDefinition) error {
	now := time.Now()
	sched.UpdatedAt = now

	if sched.ID == "" {
		sched.ID = uuid.NewString()
		sched.CreatedAt = now

		query := r.db.Rebind(`INSERT INTO schedule_definition
			(id, function_id, cron_expr, enabled, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`)
		_, err := r.db.ExecContext(ctx, query,
			sched.ID, sched.FunctionID, sched.CronExpr, sched.Enabled, sched.CreatedAt, sched.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert schedule failed: %w", err)
		}
		return nil
	}

	query := r.db.Rebind(`UPDATE schedule_definition SET
		function_id = ?, cron_expr = ?, enabled = ?, updated_at = ?
		WHERE id = ?`)
	_, err := r.db.ExecContext(ctx, query,
		sched.FunctionID, sched.CronExpr, sched.Enabled, sched.UpdatedAt, sched.ID)
	if err != nil {
		return fmt.Errorf("update schedule failed: %w", err)
	}
	return nil
}

// DeleteSchedule 删除调度定义
func (r *DefinitionRepo) DeleteSchedule(ctx context.Context, id string) error {
	query := r.db.Rebind(`DELETE FROM schedule_definition WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete schedule failed: %w", err)
	}
	return nil
}

// functionFromDAO DAO转领域对象
func functionFromDAO(row *dao.FunctionDAO) *FunctionDefinition {
	return &FunctionDefinition{
		ID:           row.ID,
		Name:         row.Name,
		Description:  row.Description,
		Code:         row.Code,
		Language:     Language(row.Language),
		HTTPMethod:   row.HTTPMethod,
		Endpoint:     row.Endpoint,
		Enabled:      row.Enabled,
		MiddlewareID: row.MiddlewareID.String,
		CreatedBy:    row.CreatedBy,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

// middlewareFromDAO DAO转领域对象
func middlewareFromDAO(row *dao.MiddlewareDAO) *MiddlewareDefinition {
	return &MiddlewareDefinition{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Code:        row.Code,
		Language:    Language(row.Language),
		Enabled:     row.Enabled,
		CreatedBy:   row.CreatedBy,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

// scheduleFromDAO DAO转领域对象
func scheduleFromDAO(row *dao.ScheduleDAO) *ScheduleDefinition {
	return &ScheduleDefinition{
		ID:         row.ID,
		FunctionID: row.FunctionID,
		CronExpr:   row.CronExpr,
		Enabled:    row.Enabled,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}

// nullString 空字符串转SQL NULL
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// slugify 由名称派生端点slug
func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = strings.ReplaceAll(slug, "_", "-")
	return slug
}
