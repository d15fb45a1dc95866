package postgres

// Dialect PostgreSQL方言实现（对外导出）
type Dialect struct{}

// NewDialect 创建PostgreSQL方言实例
func NewDialect() *Dialect {
	return &Dialect{}
}

// Name 返回方言名称
func (d *Dialect) Name() string {
	return "postgres"
}

// DriverName 返回database/sql驱动名
func (d *Dialect) DriverName() string {
	return "postgres"
}

// CreateTableSQL 返回建表DDL
func (d *Dialect) CreateTableSQL() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS function_definition (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT '',
			code TEXT NOT NULL,
			language VARCHAR(32) NOT NULL,
			http_method VARCHAR(10) NOT NULL,
			endpoint VARCHAR(255) NOT NULL UNIQUE,
			enabled BOOLEAN NOT NULL DEFAULT TRUE,
			middleware_id VARCHAR(36),
			created_by VARCHAR(255) NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS middleware_definition (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT '',
			code TEXT NOT NULL,
			language VARCHAR(32) NOT NULL,
			enabled BOOLEAN NOT NULL DEFAULT TRUE,
			created_by VARCHAR(255) NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS schedule_definition (
			id VARCHAR(36) PRIMARY KEY,
			function_id VARCHAR(36) NOT NULL,
			cron_expr VARCHAR(100) NOT NULL,
			enabled BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE INDEX IF NOT EXISTS idx_function_definition_enabled ON function_definition(enabled);`,
		`CREATE INDEX IF NOT EXISTS idx_schedule_definition_function_id ON schedule_definition(function_id);`,
	}
}

// ConfigureDB 返回PostgreSQL连接配置SQL
func (d *Dialect) ConfigureDB() []string {
	return nil
}
