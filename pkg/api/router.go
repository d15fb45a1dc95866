package api

import (
	"github.com/gin-gonic/gin"

	"github.com/LENAX/function-engine/pkg/api/handler"
	"github.com/LENAX/function-engine/pkg/api/middleware"
	"github.com/LENAX/function-engine/pkg/core/engine"
	"github.com/LENAX/function-engine/pkg/core/events"
)

// SetupRouter 设置路由
func SetupRouter(eng *engine.Engine, bus *events.Bus, version string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// 全局中间件
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS())

	// 创建handlers
	executeHandler := handler.NewExecuteHandler(eng)
	healthHandler := handler.NewHealthHandler(version, eng.DB())
	eventsHandler := handler.NewEventsHandler(bus)

	// 健康检查路由
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// 函数执行路由：方法校验在引擎内完成，这里接收任意动词
	cloudFunctions := router.Group("/cloud-functions")
	{
		cloudFunctions.Any("/execute", executeHandler.Handle)
		cloudFunctions.Any("/execute/*function", executeHandler.Handle)
		cloudFunctions.GET("/events", eventsHandler.Stream)
	}

	return router
}
