package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/jocilejr/whatsbot/internal/auth"
	"github.com/jocilejr/whatsbot/internal/persist"
	"github.com/jocilejr/whatsbot/internal/store"
)

func dialWS(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func TestWebSocketPingPong(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	st := store.New(ctx, persist.NewMemoryBackend(), store.Options{})
	owner, err := st.CreateOwner(ctx, "Ana", "ana", "hash")
	if err != nil {
		t.Fatalf("CreateOwner: %v", err)
	}
	r := NewRouter(Deps{Store: st, TokenConfig: testTokenConfig})

	tok, err := auth.CreateToken(owner.ID, testTokenConfig)
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}

	srv := httptest.NewServer(r)
	defer srv.Close()

	conn := dialWS(t, srv, tok)
	defer conn.Close()

	if err := conn.WriteJSON(map[string]any{"type": "ping"}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	var resp map[string]any
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	data, _ := json.Marshal(resp)
	if resp["type"] != "pong" {
		t.Fatalf("expected pong, got %s", string(data))
	}
}

func TestWebSocketRejectsUnknownOwner(t *testing.T) {
	gin.SetMode(gin.TestMode)
	st := store.New(context.Background(), persist.NewMemoryBackend(), store.Options{})
	r := NewRouter(Deps{Store: st, TokenConfig: testTokenConfig})
	srv := httptest.NewServer(r)
	defer srv.Close()

	tok, err := auth.CreateToken("ghost", testTokenConfig)
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + tok
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatalf("expected dial failure")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 response, got %+v", resp)
	}
}

func TestWebSocketMessageBroadcast(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	st := store.New(ctx, persist.NewMemoryBackend(), store.Options{})
	owner, err := st.CreateOwner(ctx, "Ana", "ana", "hash")
	if err != nil {
		t.Fatalf("CreateOwner: %v", err)
	}
	dev, err := st.AddDevice(ctx, owner.ID, "phone", "1")
	if err != nil {
		t.Fatalf("AddDevice: %v", err)
	}
	conv, err := st.CreateConversation(ctx, owner.ID, dev.ID, "Chat", "")
	if err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}

	r := NewRouter(Deps{Store: st, TokenConfig: testTokenConfig})
	srv := httptest.NewServer(r)
	defer srv.Close()

	tok, err := auth.CreateToken(owner.ID, testTokenConfig)
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}
	sender := dialWS(t, srv, tok)
	defer sender.Close()
	watcher := dialWS(t, srv, tok)
	defer watcher.Close()

	// a pong proves both connections reached the read loop and are registered
	for _, c := range []*websocket.Conn{sender, watcher} {
		if err := c.WriteJSON(map[string]any{"type": "ping"}); err != nil {
			t.Fatalf("WriteJSON: %v", err)
		}
		var pong map[string]any
		if err := c.ReadJSON(&pong); err != nil || pong["type"] != "pong" {
			t.Fatalf("expected pong, got %v (%v)", pong, err)
		}
	}

	if err := sender.WriteJSON(map[string]any{"type": "message", "conversationId": conv.ID, "text": "hi"}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	for _, c := range []*websocket.Conn{sender, watcher} {
		var update struct {
			Type  string `json:"type"`
			Event string `json:"event"`
			Body  struct {
				ConversationID string `json:"conversation_id"`
				Message        struct {
					From string `json:"from_user"`
					Text string `json:"text"`
				} `json:"message"`
			} `json:"body"`
		}
		if err := c.ReadJSON(&update); err != nil {
			t.Fatalf("ReadJSON: %v", err)
		}
		if update.Type != "update" || update.Event != "new-message" {
			t.Fatalf("unexpected update: %+v", update)
		}
		if update.Body.ConversationID != conv.ID || update.Body.Message.Text != "hi" || update.Body.Message.From != "me" {
			t.Fatalf("unexpected body: %+v", update.Body)
		}
	}

	got, err := st.GetConversation(owner.ID, conv.ID)
	if err != nil {
		t.Fatalf("GetConversation: %v", err)
	}
	if len(got.Messages) != 1 {
		t.Fatalf("expected 1 stored message, got %d", len(got.Messages))
	}
}
