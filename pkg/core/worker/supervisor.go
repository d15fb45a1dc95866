package worker

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/rs/zerolog"
)

// Supervisor 按需拉起Sidecar Worker进程（对外导出）
// Worker是跨多次调用存活的单例；也允许完全由外部管理，此时不配置autostart即可
type Supervisor struct {
	client     *Client
	configPath string
	logger     zerolog.Logger
}

// NewSupervisor 创建Worker进程监护器
func NewSupervisor(client *Client, configPath string, logger zerolog.Logger) *Supervisor {
	return &Supervisor{
		client:     client,
		configPath: configPath,
		logger:     logger,
	}
}

// EnsureRunning 确认Worker存活，必要时拉起一个新进程
// 当前二进制自身携带worker子命令，直接复用os.Args[0]
func (s *Supervisor) EnsureRunning(ctx context.Context) error {
	if s.client.Healthy(ctx) {
		return nil
	}

	s.logger.Info().Str("target", s.client.String()).Msg("sidecar worker not running, spawning")

	args := []string{"worker"}
	if s.configPath != "" {
		args = append(args, "--config", s.configPath)
	}
	cmd := exec.Command(os.Args[0], args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("spawn worker process failed: %w", err)
	}
	// 脱离父进程等待，Worker生命周期由其自身信号处理管理
	go func() { _ = cmd.Wait() }()

	// 轮询等待Worker就绪
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if s.client.Healthy(ctx) {
			s.logger.Info().Int("pid", cmd.Process.Pid).Msg("sidecar worker started")
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}

	return fmt.Errorf("worker did not become healthy in time")
}
