package websocket

import (
	"net/http"

	"github.com/gorilla/websocket"
	apperrors "github.com/wfunc/battleship/internal/errors"
)

// Upgrader 创建连接升级器，允许任意来源
func (h *Hub) Upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:    h.cfg.ReadBufferSize,
		WriteBufferSize:   h.cfg.WriteBufferSize,
		EnableCompression: h.cfg.EnableCompression,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
}

// ServeGame 升级连接并订阅对局事件，升级失败时响应已由 Upgrader 写出
func (h *Hub) ServeGame(w http.ResponseWriter, r *http.Request, gameID string) error {
	conn, err := h.Upgrader().Upgrade(w, r, nil)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrWebSocketConnect)
	}

	client := NewClient(h, conn, gameID)
	if !h.Register(client) {
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return apperrors.New(apperrors.ErrWebSocketClosed, "hub stopped")
	}

	go client.WritePump()
	go client.ReadPump()
	return nil
}
