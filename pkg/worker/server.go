// Package worker 实现Sidecar Worker进程：跨多次调用存活的单例服务，
// 在回环HTTP上执行次级语言的提交代码，持有自己的数据库连接池
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/LENAX/function-engine/pkg/config"
	"github.com/LENAX/function-engine/pkg/core/execution"
	coreworker "github.com/LENAX/function-engine/pkg/core/worker"
)

// Server Sidecar Worker HTTP服务（对外导出）
// 代码级结果恒以200+信封应答；400只用于请求JSON畸形，405只用于POST/OPTIONS之外的动词
type Server struct {
	cfg        *config.Config
	pool       *dbPool
	logger     zerolog.Logger
	httpServer *http.Server

	// 串行执行门闩：Worker按小并发处理请求，由连接池规模兜底
	execMu sync.Mutex
}

// NewServer 创建Worker服务
func NewServer(cfg *config.Config, logger zerolog.Logger) *Server {
	return &Server{
		cfg:    cfg,
		pool:   newDBPool(cfg, logger),
		logger: logger,
	}
}

// Handler 返回HTTP处理器（独立暴露便于测试）
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleExecute)
	mux.HandleFunc("/healthz", s.handleHealthz)
	return mux
}

// Start 启动服务并写入PID记录
func (s *Server) Start() error {
	pidFile := s.cfg.FunctionEngine.Worker.PIDFile
	if pidFile != "" {
		if err := WritePIDFile(pidFile); err != nil {
			return err
		}
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.FunctionEngine.Worker.Host, s.cfg.FunctionEngine.Worker.Port)
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
		// 写超时必须覆盖执行预算
		ReadTimeout:  30 * time.Second,
		WriteTimeout: s.cfg.FunctionEngine.Execution.Timeout + 10*time.Second,
	}

	s.logger.Info().Str("addr", addr).Msg("sidecar worker listening")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("worker listen failed: %w", err)
	}
	return nil
}

// Shutdown 优雅退出：先释放DB句柄，再移除PID记录
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("sidecar worker shutting down")

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("worker http shutdown failed")
		}
	}

	if err := s.pool.close(); err != nil {
		s.logger.Warn().Err(err).Msg("close worker database pool failed")
	}

	pidFile := s.cfg.FunctionEngine.Worker.PIDFile
	if pidFile != "" {
		if err := RemovePIDFile(pidFile); err != nil {
			s.logger.Warn().Err(err).Msg("remove pid file failed")
		}
	}

	s.logger.Info().Msg("sidecar worker stopped")
	return nil
}

// handleExecute 执行端点：POST / {code, context, timeout_ms}
func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		// 预检直接放行
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodPost:
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var payload coreworker.ExecutePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}

	s.execMu.Lock()
	env := s.executeCode(&payload)
	s.execMu.Unlock()

	s.writeEnvelope(w, env)
}

// handleHealthz 存活探测
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// writeEnvelope 代码级结果恒为200
func (s *Server) writeEnvelope(w http.ResponseWriter, env *execution.Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		s.logger.Warn().Err(err).Msg("write envelope failed")
	}
}
