package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/LENAX/function-engine/pkg/api/dto"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	version   string
	db        *sqlx.DB
	startTime time.Time
}

// NewHealthHandler 创建HealthHandler
func NewHealthHandler(version string, db *sqlx.DB) *HealthHandler {
	return &HealthHandler{
		version:   version,
		db:        db,
		startTime: time.Now(),
	}
}

// Health 健康检查
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	uptime := time.Since(h.startTime)

	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.HealthResponse{
		Status:    "healthy",
		Version:   h.version,
		Uptime:    formatDuration(uptime),
		Timestamp: time.Now().Format(time.RFC3339),
	}))
}

// Ready 就绪检查（数据库可达才算就绪）
// GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.db != nil {
		if err := h.db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse(503, "database unreachable"))
			return
		}
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(map[string]string{
		"status": "ready",
	}))
}

// formatDuration 运行时长的人类可读格式
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}
