package sqlite

// Dialect SQLite方言实现（对外导出）
type Dialect struct{}

// NewDialect 创建SQLite方言实例
func NewDialect() *Dialect {
	return &Dialect{}
}

// Name 返回方言名称
func (d *Dialect) Name() string {
	return "sqlite"
}

// DriverName 返回database/sql驱动名
func (d *Dialect) DriverName() string {
	return "sqlite3"
}

// CreateTableSQL 返回建表DDL
func (d *Dialect) CreateTableSQL() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS function_definition (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT '',
			code TEXT NOT NULL,
			language TEXT NOT NULL,
			http_method TEXT NOT NULL,
			endpoint TEXT NOT NULL UNIQUE,
			enabled INTEGER NOT NULL DEFAULT 1,
			middleware_id TEXT,
			created_by TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS middleware_definition (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT '',
			code TEXT NOT NULL,
			language TEXT NOT NULL,
			enabled INTEGER NOT NULL DEFAULT 1,
			created_by TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS schedule_definition (
			id TEXT PRIMARY KEY,
			function_id TEXT NOT NULL,
			cron_expr TEXT NOT NULL,
			enabled INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE INDEX IF NOT EXISTS idx_function_definition_enabled ON function_definition(enabled);`,
		`CREATE INDEX IF NOT EXISTS idx_schedule_definition_function_id ON schedule_definition(function_id);`,
	}
}

// ConfigureDB 返回SQLite连接配置SQL
func (d *Dialect) ConfigureDB() []string {
	return []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=30000;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA synchronous=NORMAL;",
	}
}
