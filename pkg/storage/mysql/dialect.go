package mysql

// Dialect MySQL方言实现（对外导出）
type Dialect struct{}

// NewDialect 创建MySQL方言实例
func NewDialect() *Dialect {
	return &Dialect{}
}

// Name 返回方言名称
func (d *Dialect) Name() string {
	return "mysql"
}

// DriverName 返回database/sql驱动名
func (d *Dialect) DriverName() string {
	return "mysql"
}

// CreateTableSQL 返回建表DDL
func (d *Dialect) CreateTableSQL() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS function_definition (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL UNIQUE,
			description TEXT,
			code MEDIUMTEXT NOT NULL,
			language VARCHAR(32) NOT NULL,
			http_method VARCHAR(10) NOT NULL,
			endpoint VARCHAR(255) NOT NULL UNIQUE,
			enabled TINYINT(1) NOT NULL DEFAULT 1,
			middleware_id VARCHAR(36),
			created_by VARCHAR(255) NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			INDEX idx_function_definition_enabled (enabled)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
		`CREATE TABLE IF NOT EXISTS middleware_definition (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL UNIQUE,
			description TEXT,
			code MEDIUMTEXT NOT NULL,
			language VARCHAR(32) NOT NULL,
			enabled TINYINT(1) NOT NULL DEFAULT 1,
			created_by VARCHAR(255) NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
		`CREATE TABLE IF NOT EXISTS schedule_definition (
			id VARCHAR(36) PRIMARY KEY,
			function_id VARCHAR(36) NOT NULL,
			cron_expr VARCHAR(100) NOT NULL,
			enabled TINYINT(1) NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			INDEX idx_schedule_definition_function_id (function_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
	}
}

// ConfigureDB 返回MySQL连接配置SQL
func (d *Dialect) ConfigureDB() []string {
	return []string{
		"SET SESSION sql_mode = 'STRICT_TRANS_TABLES,NO_ZERO_DATE,ERROR_FOR_DIVISION_BY_ZERO';",
	}
}
