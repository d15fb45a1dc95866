package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/LENAX/function-engine/pkg/cli/output"
	"github.com/LENAX/function-engine/pkg/config"
	"github.com/LENAX/function-engine/pkg/worker"
)

// workerCmd Sidecar Worker命令
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "启动Sidecar Worker进程",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWorker()
	},
}

// runWorker 运行Sidecar Worker进程
// 启动时写入PID记录；收到中断/终止信号后先释放DB句柄再移除记录退出
func runWorker() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		output.PrintError("加载配置失败: %v", err)
		return err
	}

	configureLogging(cfg.FunctionEngine.General.LogLevel)
	logger := log.Logger.With().Str("component", "sidecar-worker").Logger()

	server := worker.NewServer(cfg, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return err
	}
	output.PrintSuccess("Sidecar Worker已停止")
	return nil
}
