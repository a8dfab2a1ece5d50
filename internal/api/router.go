package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/battleship/internal/game"
	"github.com/wfunc/battleship/internal/middleware"
	"github.com/wfunc/battleship/internal/repository"
	"github.com/wfunc/battleship/internal/websocket"
	"go.uber.org/zap"
)

// Router API路由器
type Router struct {
	engine        *gin.Engine
	gameHandler   *GameHandler
	recordHandler *RecordHandler
	wsHandler     *WebSocketHandler
	wsPath        string
	log           *zap.Logger
}

// RouterConfig 路由配置，Records 与 Hub 为空时不注册对应路由
type RouterConfig struct {
	Service       *game.Service
	Records       repository.MatchRecordRepository
	Hub           *websocket.Hub
	WebSocketPath string
	Logger        *zap.Logger
}

// NewRouter 创建路由器
func NewRouter(cfg *RouterConfig) *Router {
	// 创建Gin引擎
	engine := gin.New()

	// 全局中间件
	engine.Use(middleware.Recovery())
	engine.Use(middleware.Logger())
	engine.Use(middleware.CORS())

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	router := &Router{
		engine:      engine,
		gameHandler: NewGameHandler(cfg.Service, log),
		wsPath:      cfg.WebSocketPath,
		log:         log,
	}
	if router.wsPath == "" {
		router.wsPath = "/ws/games"
	}
	if cfg.Records != nil {
		router.recordHandler = NewRecordHandler(cfg.Records)
	}
	if cfg.Hub != nil {
		router.wsHandler = NewWebSocketHandler(cfg.Service, cfg.Hub, log)
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
		games := v1.Group("/games")
		{
			games.POST("", r.gameHandler.CreateGame)
			games.GET("", r.gameHandler.ListGames)
			games.GET("/:id", r.gameHandler.GetGame)
			games.DELETE("/:id", r.gameHandler.DeleteGame)
			games.POST("/:id/join", r.gameHandler.JoinGame)
			games.POST("/:id/players/:player_id/ships", r.gameHandler.PlaceShips)
			games.POST("/:id/players/:player_id/ready", r.gameHandler.SetReady)
			games.GET("/:id/players/:player_id/achievements", r.gameHandler.GetAchievements)
			games.POST("/:id/attack", r.gameHandler.Attack)
			games.POST("/:id/spell", r.gameHandler.CastSpell)
		}

		if r.recordHandler != nil {
			v1.GET("/records", r.recordHandler.ListRecords)
			v1.GET("/records/:game_id", r.recordHandler.GetRecord)
		}
	}

	// WebSocket路由
	if r.wsHandler != nil {
		r.engine.GET(r.wsPath+"/:id", r.wsHandler.Subscribe)
	}

	// 404处理
	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    http.StatusNotFound,
			"message": "接口不存在",
			"details": c.Request.URL.Path,
		})
	})
}

// healthCheck 健康检查
func (r *Router) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Battleship Game API",
		"time":    time.Now().Unix(),
	})
}

// Engine 获取Gin引擎
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// Run 启动服务器
func (r *Router) Run(addr string) error {
	r.log.Info("启动HTTP服务器", zap.String("address", addr))
	return r.engine.Run(addr)
}
