package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/LENAX/function-engine/pkg/core/execution"
)

// Client Sidecar Worker的回环HTTP客户端（对外导出）
// 客户端持有独立于Worker内部执行预算的请求超时；连接失败或客户端超时
// 映射为BackendUnavailable，与代码级Faulted严格区分
type Client struct {
	baseURL     string
	httpClient  *http.Client
	execTimeout time.Duration
	logger      zerolog.Logger
}

// NewClient 创建Sidecar Worker客户端
// requestTimeout必须大于execTimeout，Worker侧超时才会以TimedOut而非BackendUnavailable呈现
func NewClient(baseURL string, requestTimeout, execTimeout time.Duration, logger zerolog.Logger) *Client {
	if requestTimeout <= execTimeout {
		requestTimeout = execTimeout + 2*time.Second
	}
	return &Client{
		baseURL:     baseURL,
		httpClient:  &http.Client{Timeout: requestTimeout},
		execTimeout: execTimeout,
		logger:      logger,
	}
}

// Execute 将代码与上下文序列化后提交给Worker执行
func (c *Client) Execute(ctx context.Context, code string, ec *execution.Context) execution.Outcome {
	payload := NewExecutePayload(code, ec, c.execTimeout.Milliseconds())

	body, err := json.Marshal(payload)
	if err != nil {
		c.logger.Error().Err(err).Msg("marshal worker payload failed")
		return execution.BackendUnavailable()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/", bytes.NewReader(body))
	if err != nil {
		return execution.BackendUnavailable()
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Msg("sidecar worker unreachable")
		return execution.BackendUnavailable()
	}
	defer resp.Body.Close()

	// 代码级结果恒为200；其他状态码意味着协议被破坏
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn().Int("status", resp.StatusCode).Msg("unexpected worker status")
		return execution.BackendUnavailable()
	}

	var env execution.Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		c.logger.Warn().Err(err).Msg("decode worker envelope failed")
		return execution.BackendUnavailable()
	}

	return outcomeFromEnvelope(&env)
}

// Healthy 探测Worker存活
func (c *Client) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// outcomeFromEnvelope 将Worker信封映射为终态Outcome
func outcomeFromEnvelope(env *execution.Envelope) execution.Outcome {
	switch env.ErrorType {
	case execution.ErrorTypeTimeout:
		return execution.TimedOut()
	case execution.ErrorTypeBackendUnavailable:
		return execution.BackendUnavailable()
	case execution.ErrorTypeSyntax, execution.ErrorTypeRuntime:
		return execution.Outcome{State: execution.StateFaulted, Envelope: env}
	}
	return execution.Completed(env)
}

// String 便于日志输出客户端目标
func (c *Client) String() string {
	return fmt.Sprintf("worker-client(%s)", c.baseURL)
}
