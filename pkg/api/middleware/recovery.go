package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/LENAX/function-engine/pkg/api/dto"
)

// Recovery panic恢复中间件
// 只兜底引擎自身的编程错误；用户代码故障在分发层已收敛，到不了这里
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().
					Interface("panic", err).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")

				c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(
					500,
					"Internal Server Error",
				))
				c.Abort()
			}
		}()
		c.Next()
	}
}
