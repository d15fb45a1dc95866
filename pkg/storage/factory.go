package storage

import (
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/LENAX/function-engine/pkg/storage/mysql"
	"github.com/LENAX/function-engine/pkg/storage/postgres"
	"github.com/LENAX/function-engine/pkg/storage/sqlite"
)

// PoolOptions 连接池配置
type PoolOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DialectFor 根据数据库类型返回方言实现
// dbType: 数据库类型（sqlite/mysql/postgres）
func DialectFor(dbType string) (Dialect, error) {
	switch dbType {
	case "sqlite":
		return sqlite.NewDialect(), nil
	case "mysql":
		return mysql.NewDialect(), nil
	case "postgres", "postgresql":
		return postgres.NewDialect(), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}
}

// Open 按配置的后端类型打开数据库连接池
// 宿主进程与Sidecar Worker都经由该入口建连，保证两侧落在同一个逻辑数据库上
func Open(dbType, dsn string, opts PoolOptions) (*sqlx.DB, Dialect, error) {
	dialect, err := DialectFor(dbType)
	if err != nil {
		return nil, nil, err
	}

	// MySQL需要parseTime=true才能扫描DATETIME到time.Time
	if dialect.Name() == "mysql" && !strings.Contains(dsn, "parseTime=true") {
		if strings.Contains(dsn, "?") {
			dsn += "&parseTime=true"
		} else {
			dsn += "?parseTime=true"
		}
	}

	db, err := sqlx.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open database failed: %w", err)
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
	// 内存SQLite库随最后一个连接消失，单连接兜底
	if dialect.Name() == "sqlite" && strings.Contains(dsn, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	for _, stmt := range dialect.ConfigureDB() {
		if _, err := db.Exec(stmt); err != nil {
			// 连接级配置失败不阻塞启动
			continue
		}
	}

	return db, dialect, nil
}
