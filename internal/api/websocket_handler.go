package api

import (
	"github.com/gin-gonic/gin"
	"github.com/wfunc/battleship/internal/game"
	"github.com/wfunc/battleship/internal/websocket"
	"go.uber.org/zap"
)

// WebSocketHandler 对局事件订阅处理器
type WebSocketHandler struct {
	service *game.Service
	hub     *websocket.Hub
	log     *zap.Logger
}

// NewWebSocketHandler 创建订阅处理器
func NewWebSocketHandler(service *game.Service, hub *websocket.Hub, log *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{service: service, hub: hub, log: log}
}

// Subscribe 订阅对局事件，对局不存在时返回 404
func (h *WebSocketHandler) Subscribe(c *gin.Context) {
	gameID := c.Param("id")
	if _, err := h.service.GetGame(c.Request.Context(), gameID); err != nil {
		respondError(c, err)
		return
	}
	if err := h.hub.ServeGame(c.Writer, c.Request, gameID); err != nil {
		h.log.Warn("订阅对局失败", zap.String("game_id", gameID), zap.Error(err))
	}
}
