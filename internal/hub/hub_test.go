package hub

import (
	"encoding/json"
	"errors"
	"testing"
)

type testWriter struct {
	writes int
	last   []byte
	fail   bool
	closed bool
}

func (w *testWriter) Write(message []byte) error {
	w.writes++
	w.last = message
	if w.fail {
		return errors.New("test")
	}
	return nil
}

func (w *testWriter) Close() error {
	w.closed = true
	return nil
}

func TestHub_RegisterBroadcastUnregister(t *testing.T) {
	h := New()
	w1 := &testWriter{}
	c1 := &Connection{OwnerID: "u", Writer: w1}

	h.Register(c1)
	if h.Count("u") != 1 {
		t.Fatalf("expected 1 connection, got %d", h.Count("u"))
	}
	h.Broadcast("u", []byte("x"))
	if w1.writes != 1 {
		t.Fatalf("expected 1 write, got %d", w1.writes)
	}

	h.Unregister(c1)
	h.Broadcast("u", []byte("x"))
	if w1.writes != 1 {
		t.Fatalf("expected no more writes, got %d", w1.writes)
	}
	if h.Count("u") != 0 {
		t.Fatalf("expected no connections")
	}
}

func TestHub_RemovesFailedConnections(t *testing.T) {
	h := New()
	w1 := &testWriter{fail: true}
	c1 := &Connection{OwnerID: "u", Writer: w1}
	h.Register(c1)

	h.Broadcast("u", []byte("x"))
	h.Broadcast("u", []byte("x"))
	if w1.writes != 1 {
		t.Fatalf("expected only 1 write before removal, got %d", w1.writes)
	}
	if !w1.closed {
		t.Fatalf("expected failed connection closed")
	}
}

func TestHub_PublishScopesToOwner(t *testing.T) {
	h := New()
	mine := &testWriter{}
	other := &testWriter{}
	h.Register(&Connection{OwnerID: "o1", Writer: mine})
	h.Register(&Connection{OwnerID: "o2", Writer: other})

	if err := h.Publish("o1", EventInstanceRemoved, map[string]string{"id": "d1"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if other.writes != 0 {
		t.Fatalf("update leaked to another owner")
	}

	var got struct {
		Type  string            `json:"type"`
		Event string            `json:"event"`
		Body  map[string]string `json:"body"`
	}
	if err := json.Unmarshal(mine.last, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != "update" || got.Event != EventInstanceRemoved || got.Body["id"] != "d1" {
		t.Fatalf("unexpected envelope: %+v", got)
	}
}

func TestHub_NilPublishAndCloseAll(t *testing.T) {
	var nilHub *Hub
	if err := nilHub.Publish("o1", EventNewMessage, nil); err != nil {
		t.Fatalf("nil hub publish: %v", err)
	}

	h := New()
	w := &testWriter{}
	h.Register(&Connection{OwnerID: "o1", Writer: w})
	h.CloseAll()
	if !w.closed || h.Count("o1") != 0 {
		t.Fatalf("expected connection closed and forgotten")
	}
}
