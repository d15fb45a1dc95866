package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/LENAX/function-engine/pkg/api"
	"github.com/LENAX/function-engine/pkg/cli/output"
	"github.com/LENAX/function-engine/pkg/config"
	"github.com/LENAX/function-engine/pkg/core/engine"
	"github.com/LENAX/function-engine/pkg/core/events"
	"github.com/LENAX/function-engine/pkg/core/runtime"
	"github.com/LENAX/function-engine/pkg/core/worker"
	"github.com/LENAX/function-engine/pkg/storage"
)

// serverCmd 服务器命令
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "启动Function Engine API服务",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

// runServer 装配并运行完整引擎
func runServer() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		output.PrintError("加载配置失败: %v", err)
		return err
	}
	fe := &cfg.FunctionEngine

	configureLogging(fe.General.LogLevel)
	output.PrintBanner(Version)
	logger := log.Logger

	// 宿主共享连接池：定义存储与提交代码的DB句柄用同一个池
	db, dialect, err := storage.Open(fe.Storage.Database.Type, fe.Storage.Database.DSN, storage.PoolOptions{
		MaxOpenConns:    fe.Storage.Database.MaxOpenConns,
		MaxIdleConns:    fe.Storage.Database.MaxIdleConns,
		ConnMaxLifetime: fe.Storage.Database.ConnMaxLifetime,
	})
	if err != nil {
		return fmt.Errorf("open database failed: %w", err)
	}

	repo, err := storage.NewDefinitionRepo(db, dialect)
	if err != nil {
		return fmt.Errorf("init definition store failed: %w", err)
	}
	defer repo.Close()

	// 执行后端装配
	embedded := runtime.NewEmbeddedRuntime(fe.Execution.Timeout)
	client := worker.NewClient(cfg.WorkerBaseURL(), fe.Worker.RequestTimeout, fe.Execution.Timeout, logger)

	var supervisor *worker.Supervisor
	if fe.Worker.Autostart {
		supervisor = worker.NewSupervisor(client, configPath, logger)
	}

	dispatcher := engine.NewDispatcher(embedded, client, supervisor, logger)
	bus := events.NewBus(logger)
	defer bus.Close()

	eng := engine.NewEngine(repo, db, dispatcher, bus, logger)

	// 定时调度
	scheduler := engine.NewCronScheduler(eng, logger)
	if err := scheduler.LoadFromStore(context.Background()); err != nil {
		logger.Warn().Err(err).Msg("load schedules failed")
	}
	scheduler.Start()
	defer scheduler.Stop()

	server := api.NewAPIServer(eng, bus, api.ServerConfig{
		Host:         fe.Server.Host,
		Port:         fe.Server.Port,
		ReadTimeout:  fe.Server.ReadTimeout,
		WriteTimeout: fe.Server.WriteTimeout,
	}, Version, logger)

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

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return err
	}
	output.PrintSuccess("API服务已停止")
	return nil
}
