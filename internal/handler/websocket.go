package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/jocilejr/whatsbot/internal/auth"
	"github.com/jocilejr/whatsbot/internal/hub"
	"github.com/jocilejr/whatsbot/internal/model"
	"github.com/jocilejr/whatsbot/internal/store"
)

type WebSocketHandler struct {
	Hub         *hub.Hub
	Store       *store.Store
	TokenConfig auth.TokenConfig
	Logger      *slog.Logger
}

type clientMessage struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversationId,omitempty"`
	Text           string `json:"text,omitempty"`
}

type serverMessage struct {
	Type  string      `json:"type"`
	Event string      `json:"event,omitempty"`
	Body  interface{} `json:"body,omitempty"`
}

type newMessageBody struct {
	ConversationID string        `json:"conversation_id"`
	Message        model.Message `json:"message"`
}

func newMessageEvent(conversationID string, msg model.Message) newMessageBody {
	return newMessageBody{ConversationID: conversationID, Message: msg}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	pongWait  = 60 * time.Second
	writeWait = 10 * time.Second
)

// wsWriter serializes writes; gorilla connections allow one concurrent writer.
type wsWriter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsWriter) Write(message []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return w.conn.WriteMessage(websocket.TextMessage, message)
}

func (w *wsWriter) ping() error {
	return w.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

func (w *wsWriter) Close() error {
	return w.conn.Close()
}

func (h *WebSocketHandler) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}

func (h *WebSocketHandler) Serve(c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authentication token"})
		return
	}
	claims, err := auth.VerifyToken(tokenString, h.TokenConfig)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authentication token"})
		return
	}
	if _, err := h.Store.GetOwner(claims.OwnerID); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authentication token"})
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	log := h.logger().With("component", "websocket", "owner", claims.OwnerID)
	log.Debug("client connected")

	writer := &wsWriter{conn: ws}
	conn := &hub.Connection{OwnerID: claims.OwnerID, Writer: writer}
	h.Hub.Register(conn)
	defer func() {
		h.Hub.Unregister(conn)
		_ = ws.Close()
		log.Debug("client disconnected")
	}()

	ws.SetReadLimit(1024 * 1024)
	pingPeriod := (pongWait * 9) / 10

	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	var closeOnce sync.Once
	closeDone := func() {
		closeOnce.Do(func() {
			close(done)
		})
	}
	defer closeDone()

	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := writer.ping(); err != nil {
					_ = ws.Close()
					return
				}
			}
		}
	}()

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case "ping":
			out, _ := json.Marshal(serverMessage{Type: "pong"})
			_ = writer.Write(out)
		case "message":
			if msg.ConversationID == "" || msg.Text == "" {
				continue
			}
			stored, err := h.Store.AppendMessage(c.Request.Context(), claims.OwnerID, msg.ConversationID, msg.Text)
			if err != nil {
				log.Warn("append message failed", "conversation", msg.ConversationID, "error", err)
				out, _ := json.Marshal(serverMessage{Type: "error", Body: gin.H{"error": "Conversation not found"}})
				_ = writer.Write(out)
				continue
			}
			_ = h.Hub.Publish(claims.OwnerID, hub.EventNewMessage, newMessageEvent(msg.ConversationID, stored))
		}
	}
}
