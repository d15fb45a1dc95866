package config

import (
	"fmt"
	"time"
)

// Config 引擎框架配置（对外导出）
// 主进程与Sidecar Worker读取同一份配置文件，保证两侧解析到同一个逻辑数据库
type Config struct {
	FunctionEngine struct {
		General struct {
			InstanceName string `yaml:"instance_name"`
			LogLevel     string `yaml:"log_level"`
			Env          string `yaml:"env"`
		} `yaml:"general"`
		Server struct {
			Host         string        `yaml:"host"`
			Port         int           `yaml:"port"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
		} `yaml:"server"`
		Storage struct {
			Database struct {
				Type            string        `yaml:"type"`
				DSN             string        `yaml:"dsn"`
				MaxOpenConns    int           `yaml:"max_open_conns"`
				MaxIdleConns    int           `yaml:"max_idle_conns"`
				ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
			} `yaml:"database"`
		} `yaml:"storage"`
		Worker struct {
			Host           string        `yaml:"host"`
			Port           int           `yaml:"port"`
			RequestTimeout time.Duration `yaml:"request_timeout"`
			PIDFile        string        `yaml:"pid_file"`
			Autostart      bool          `yaml:"autostart"`
		} `yaml:"worker"`
		Execution struct {
			Timeout time.Duration `yaml:"timeout"`
		} `yaml:"execution"`
	} `yaml:"function-engine"`
}

// Default 返回默认配置
func Default() *Config {
	cfg := &Config{}
	cfg.FunctionEngine.General.InstanceName = "function-engine"
	cfg.FunctionEngine.General.LogLevel = "info"
	cfg.FunctionEngine.General.Env = "dev"
	cfg.FunctionEngine.Server.Host = "0.0.0.0"
	cfg.FunctionEngine.Server.Port = 8080
	cfg.FunctionEngine.Server.ReadTimeout = 30 * time.Second
	cfg.FunctionEngine.Server.WriteTimeout = 60 * time.Second
	cfg.FunctionEngine.Storage.Database.Type = "sqlite"
	cfg.FunctionEngine.Storage.Database.DSN = "function-engine.db"
	cfg.FunctionEngine.Storage.Database.MaxOpenConns = 10
	cfg.FunctionEngine.Storage.Database.MaxIdleConns = 5
	cfg.FunctionEngine.Storage.Database.ConnMaxLifetime = time.Hour
	cfg.FunctionEngine.Worker.Host = "127.0.0.1"
	cfg.FunctionEngine.Worker.Port = 8719
	cfg.FunctionEngine.Worker.RequestTimeout = 32 * time.Second
	cfg.FunctionEngine.Worker.PIDFile = "function-worker.pid"
	cfg.FunctionEngine.Worker.Autostart = false
	cfg.FunctionEngine.Execution.Timeout = 30 * time.Second
	return cfg
}

// Validate 校验配置合法性
func (c *Config) Validate() error {
	fe := &c.FunctionEngine

	if fe.Server.Port <= 0 || fe.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", fe.Server.Port)
	}
	if fe.Worker.Port <= 0 || fe.Worker.Port > 65535 {
		return fmt.Errorf("invalid worker port: %d", fe.Worker.Port)
	}

	switch fe.Storage.Database.Type {
	case "sqlite", "mysql", "postgres", "postgresql":
	default:
		return fmt.Errorf("unsupported database type: %s", fe.Storage.Database.Type)
	}
	if fe.Storage.Database.DSN == "" {
		return fmt.Errorf("database dsn is required")
	}

	if fe.Execution.Timeout <= 0 {
		return fmt.Errorf("execution timeout must be positive")
	}
	// 客户端超时必须覆盖Worker侧执行预算，否则超时会被误判为后端不可用
	if fe.Worker.RequestTimeout <= fe.Execution.Timeout {
		return fmt.Errorf("worker request_timeout must be greater than execution timeout")
	}

	return nil
}

// WorkerBaseURL 返回Sidecar Worker的回环地址
func (c *Config) WorkerBaseURL() string {
	return fmt.Sprintf("http://%s:%d", c.FunctionEngine.Worker.Host, c.FunctionEngine.Worker.Port)
}
