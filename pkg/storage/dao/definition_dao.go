package dao

import (
	"database/sql"
	"time"
)

// FunctionDAO function_definition表的数据访问对象（内部使用）
type FunctionDAO struct {
	ID           string         `db:"id"`
	Name         string         `db:"name"`
	Description  string         `db:"description"`
	Code         string         `db:"code"`
	Language     string         `db:"language"`
	HTTPMethod   string         `db:"http_method"`
	Endpoint     string         `db:"endpoint"`
	Enabled      bool           `db:"enabled"`
	MiddlewareID sql.NullString `db:"middleware_id"`
	CreatedBy    string         `db:"created_by"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

// MiddlewareDAO middleware_definition表的数据访问对象（内部使用）
type MiddlewareDAO struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	Code        string    `db:"code"`
	Language    string    `db:"language"`
	Enabled     bool      `db:"enabled"`
	CreatedBy   string    `db:"created_by"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// ScheduleDAO schedule_definition表的数据访问对象（内部使用）
type ScheduleDAO struct {
	ID         string    `db:"id"`
	FunctionID string    `db:"function_id"`
	CronExpr   string    `db:"cron_expr"`
	Enabled    bool      `db:"enabled"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}
