package cmd

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// 全局参数
	configPath string
)

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "function-engine",
	Short: "Function Engine - 云函数执行引擎",
	Long: `Function Engine 在数据库中存储用户编写的函数与中间件代码片段，
并将其绑定到HTTP端点执行。

支持的功能：
  - 启动HTTP API服务（解析、守卫、分发、归一化）
  - 启动Sidecar Worker进程（次级语言执行后端）
  - 定时调度已存储的函数

使用示例：
  # 启动API服务
  function-engine server --config config.yaml

  # 启动Sidecar Worker
  function-engine worker --config config.yaml

  # 查看版本
  function-engine version`,
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "配置文件路径")

	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(workerCmd)
	rootCmd.AddCommand(versionCmd)
}

// configureLogging 按配置设置全局日志
func configureLogging(level string) {
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	log.Logger = log.Output(output)

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
