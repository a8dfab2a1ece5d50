package websocket

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	apperrors "github.com/wfunc/battleship/internal/errors"
	"github.com/wfunc/battleship/internal/logger"
	"go.uber.org/zap"
)

// Client WebSocket客户端，只订阅一个对局
type Client struct {
	ID     string          // 客户端ID
	GameID string          // 订阅的对局ID
	hub    *Hub            // Hub引用
	conn   *websocket.Conn // WebSocket连接
	send   chan []byte     // 发送通道
}

// NewClient 创建新客户端
func NewClient(hub *Hub, conn *websocket.Conn, gameID string) *Client {
	return &Client{
		ID:     uuid.New().String(),
		GameID: gameID,
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, hub.cfg.SendBufferSize),
	}
}

// ReadPump 读取消息
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	if c.hub.cfg.MaxMessageSize > 0 {
		c.conn.SetReadLimit(c.hub.cfg.MaxMessageSize)
	}
	c.conn.SetReadDeadline(time.Now().Add(c.hub.cfg.PongTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.hub.cfg.PongTimeout))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Error("WebSocket读取错误",
					zap.String("client_id", c.ID),
					zap.Error(err))
			}
			break
		}

		c.handleMessage(message)
	}
}

// WritePump 写入消息
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.hub.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteTimeout))
			if !ok {
				// Hub关闭了通道
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage 处理客户端消息，推送通道只接受心跳
func (c *Client) handleMessage(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		c.hub.logger.Debug("解析WebSocket消息失败",
			zap.String("client_id", c.ID),
			zap.Error(err))
		c.sendError(apperrors.Wrap(err, apperrors.ErrMessageFormat))
		return
	}
	logger.LogWebSocketMessage("receive", msg.Type, c.GameID)

	switch msg.Type {
	case MessageTypePing:
		c.reply(c.hub.newMessage(MessageTypePong, c.GameID, nil))
	case MessageTypePong:
	default:
		c.sendError(apperrors.Newf(apperrors.ErrMessageFormat, "不支持的消息类型: %s", msg.Type))
	}
}

// sendError 发送错误消息，携带错误码
func (c *Client) sendError(err *apperrors.AppError) {
	data, _ := json.Marshal(map[string]interface{}{
		"code":    err.Code,
		"error":   err.Message,
		"details": err.Details,
	})
	c.reply(c.hub.newMessage(MessageTypeError, c.GameID, data))
}

func (c *Client) reply(msg *Message) {
	if err := c.hub.sendTo(c, msg); err != nil {
		c.hub.logger.Debug("回复客户端失败",
			zap.String("client_id", c.ID),
			zap.Error(err))
	}
}
