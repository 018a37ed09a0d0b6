package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guzus/llm-mafia-game/internal/websocket"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Router API路由器
//
// 看板为只读接口：对局统计、对局列表与回放、实时观战推送。
type Router struct {
	engine       *gin.Engine
	db           *gorm.DB
	statsHandler *StatsHandler
	gameHandler  *GameHandler
	wsHandler    *WebSocketHandler
	log          *zap.Logger
}

// NewRouter 创建路由器
func NewRouter(db *gorm.DB, hub *websocket.Hub, log *zap.Logger) *Router {
	// 创建Gin引擎
	engine := gin.New()

	// 全局中间件
	engine.Use(gin.Recovery())
	engine.Use(gin.Logger())

	router := &Router{
		engine:       engine,
		db:           db,
		statsHandler: NewStatsHandler(db, log),
		gameHandler:  NewGameHandler(db, log),
		wsHandler:    NewWebSocketHandler(hub, log),
		log:          log,
	}

	// 设置路由
	router.setupRoutes()

	return router
}

// setupRoutes 设置路由
func (r *Router) setupRoutes() {
	// 健康检查
	r.engine.GET("/health", r.healthCheck)

	// API v1路由组
	v1 := r.engine.Group("/api/v1")
	{
		// 模型统计
		v1.GET("/stats", r.statsHandler.GetStats)
		v1.GET("/stats/leaderboard", r.statsHandler.GetLeaderboard)

		// 对局查询
		games := v1.Group("/games")
		{
			games.GET("", r.gameHandler.ListGames)
			games.GET("/:id", r.gameHandler.GetGame)
		}
	}

	// WebSocket路由
	ws := r.engine.Group("/ws")
	{
		ws.GET("/live", r.wsHandler.LiveFeed)
	}

	// 404处理
	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"code":    "NOT_FOUND",
			"message": "接口不存在",
		})
	})
}

// healthCheck 健康检查
func (r *Router) healthCheck(c *gin.Context) {
	// 检查数据库连接
	sqlDB, err := r.db.DB()
	if err != nil {
		c.JSON(500, gin.H{
			"status":   "unhealthy",
			"database": "error",
		})
		return
	}

	if err := sqlDB.Ping(); err != nil {
		c.JSON(500, gin.H{
			"status":   "unhealthy",
			"database": "disconnected",
		})
		return
	}

	c.JSON(200, gin.H{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().Unix(),
	})
}

// Engine 获取Gin引擎（用于启动HTTP服务和测试）
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
