package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/wfunc/battleship/internal/config"
	apperrors "github.com/wfunc/battleship/internal/errors"
	"github.com/wfunc/battleship/internal/logger"
	"go.uber.org/zap"
)

// Hub WebSocket连接管理中心，按对局分组推送
type Hub struct {
	// 对局ID到客户端集合的映射
	games map[string]map[*Client]struct{}
	mu    sync.RWMutex

	// 注册/注销通道
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	cfg    config.WebSocketConfig
	logger *zap.Logger
	now    func() time.Time
}

// Message WebSocket消息
type Message struct {
	Type      string          `json:"type"`              // 消息类型
	GameID    string          `json:"game_id,omitempty"` // 对局ID
	Data      json.RawMessage `json:"data,omitempty"`    // 消息数据
	Timestamp int64           `json:"timestamp"`         // 时间戳
}

// 系统消息类型，对局事件类型由 game 包定义
const (
	MessageTypeConnected = "connected"
	MessageTypePing      = "ping"
	MessageTypePong      = "pong"
	MessageTypeError     = "error"
)

// NewHub 创建Hub
func NewHub(cfg config.WebSocketConfig, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.SendBufferSize <= 0 {
		cfg.SendBufferSize = 64
	}
	if cfg.PongTimeout <= 0 {
		cfg.PongTimeout = 60 * time.Second
	}
	if cfg.PingInterval <= 0 || cfg.PingInterval >= cfg.PongTimeout {
		cfg.PingInterval = cfg.PongTimeout * 9 / 10
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	return &Hub{
		games:      make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		cfg:        cfg,
		logger:     log,
		now:        time.Now,
	}
}

// Run 运行Hub，ctx 取消后关闭全部连接
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

// registerClient 注册客户端
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	clients, ok := h.games[client.GameID]
	if !ok {
		clients = make(map[*Client]struct{})
		h.games[client.GameID] = clients
	}
	clients[client] = struct{}{}
	h.mu.Unlock()

	h.logger.Info("WebSocket客户端连接",
		zap.String("client_id", client.ID),
		zap.String("game_id", client.GameID))

	// 发送连接成功消息
	if err := h.sendTo(client, h.newMessage(MessageTypeConnected, client.GameID, json.RawMessage(`{"message":"连接成功"}`))); err != nil {
		h.logger.Warn("发送连接消息失败", zap.String("client_id", client.ID), zap.Error(err))
	}
}

// unregisterClient 注销客户端
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	if clients, ok := h.games[client.GameID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.send)
		}
		if len(clients) == 0 {
			delete(h.games, client.GameID)
		}
	}
	h.mu.Unlock()

	h.logger.Info("WebSocket客户端断开",
		zap.String("client_id", client.ID),
		zap.String("game_id", client.GameID))
}

// closeAll 关闭全部客户端
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for gameID, clients := range h.games {
		for client := range clients {
			close(client.send)
		}
		delete(h.games, gameID)
	}
}

// Publish 向对局内的全部客户端推送事件
func (h *Hub) Publish(gameID, eventType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("序列化推送数据失败",
			zap.String("game_id", gameID),
			zap.String("type", eventType),
			zap.Error(err))
		return
	}

	encoded, err := json.Marshal(h.newMessage(eventType, gameID, data))
	if err != nil {
		h.logger.Error("序列化消息失败", zap.Error(err))
		return
	}
	logger.LogGameEvent(eventType, gameID, payload)

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.games[gameID] {
		select {
		case client.send <- encoded:
			logger.LogWebSocketMessage("send", eventType, gameID)
		default:
			// 发送缓冲区满，丢弃本条消息
			h.logger.Warn("客户端发送缓冲区满",
				zap.String("client_id", client.ID),
				zap.String("game_id", gameID))
		}
	}
}

// sendTo 发送消息给单个客户端
// sendTo 向单个客户端投递消息，客户端已注销或缓冲区满时返回错误
func (h *Hub) sendTo(client *Client, msg *Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrMessageFormat)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.games[client.GameID][client]; !ok {
		return apperrors.New(apperrors.ErrWebSocketClosed, client.ID)
	}
	select {
	case client.send <- data:
		return nil
	default:
		return apperrors.Newf(apperrors.ErrWebSocketSend, "客户端发送缓冲区满: %s", client.ID)
	}
}

func (h *Hub) newMessage(msgType, gameID string, data json.RawMessage) *Message {
	return &Message{
		Type:      msgType,
		GameID:    gameID,
		Data:      data,
		Timestamp: h.now().Unix(),
	}
}

// ClientCount 对局当前连接数
func (h *Hub) ClientCount(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.games[gameID])
}

// Register 注册客户端，Hub 已停止时返回 false
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister 注销客户端
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}
