package websocket

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

// testClient — клиент без живого соединения: hub трогает только Send.
func testClient(h *Hub) *Client {
	c := NewClient(h, nil)
	h.registerClient(c)
	return c
}

func drain(c *Client) [][]byte {
	var out [][]byte
	for {
		select {
		case msg := <-c.Send:
			out = append(out, msg)
		default:
			return out
		}
	}
}

func TestSendToClientTargeted(t *testing.T) {
	h := NewHub()
	a := testClient(h)
	b := testClient(h)
	x := testClient(h)
	h.JoinRoom(a, "abc123")
	h.JoinRoom(b, "abc123")
	h.JoinRoom(x, "abc123")

	payload := []byte(`{"type":"offer"}`)
	if err := h.SendToClient(x.ID, payload); err != nil {
		t.Fatalf("SendToClient() error = %v", err)
	}

	if got := drain(x); len(got) != 1 || string(got[0]) != string(payload) {
		t.Errorf("target got %q, want exactly the payload", got)
	}
	// Адресный сигнал не должен превращаться в broadcast
	if got := drain(a); len(got) != 0 {
		t.Errorf("bystander a got %d messages, want 0", len(got))
	}
	if got := drain(b); len(got) != 0 {
		t.Errorf("bystander b got %d messages, want 0", len(got))
	}
}

func TestSendToClientGone(t *testing.T) {
	h := NewHub()

	if err := h.SendToClient(uuid.New(), []byte("x")); err != ErrTargetGone {
		t.Fatalf("SendToClient() error = %v, want ErrTargetGone", err)
	}
}

func TestSendToRoomExcludesSender(t *testing.T) {
	h := NewHub()
	a := testClient(h)
	b := testClient(h)
	c := testClient(h)
	h.JoinRoom(a, "abc123")
	h.JoinRoom(b, "abc123")
	h.JoinRoom(c, "other")

	h.SendToRoom("abc123", []byte("update"), a.ID)

	if got := drain(a); len(got) != 0 {
		t.Errorf("sender got %d messages, want 0", len(got))
	}
	if got := drain(b); len(got) != 1 {
		t.Errorf("room member got %d messages, want 1", len(got))
	}
	if got := drain(c); len(got) != 0 {
		t.Errorf("other-room client got %d messages, want 0", len(got))
	}
}

func TestRoomPeers(t *testing.T) {
	h := NewHub()
	a := testClient(h)
	b := testClient(h)
	h.JoinRoom(a, "abc123")
	h.JoinRoom(b, "abc123")

	peers := h.RoomPeers("abc123", b.ID)
	if len(peers) != 1 || peers[0] != a.ID.String() {
		t.Errorf("RoomPeers() = %v, want [%s]", peers, a.ID)
	}

	if peers := h.RoomPeers("missing", uuid.Nil); len(peers) != 0 {
		t.Errorf("RoomPeers(missing) = %v, want empty", peers)
	}
}

func TestNameInRoom(t *testing.T) {
	h := NewHub()
	a := testClient(h)
	a.SetRoom("abc123", "Alice")
	h.JoinRoom(a, "abc123")

	if !h.NameInRoom("abc123", "Alice") {
		t.Error("NameInRoom() = false for live connection holding the name")
	}
	if h.NameInRoom("abc123", "Bob") {
		t.Error("NameInRoom() = true for absent name")
	}
	if h.NameInRoom("other", "Alice") {
		t.Error("NameInRoom() = true in wrong room")
	}
}

func TestUnregisterLeavesRoom(t *testing.T) {
	h := NewHub()
	a := testClient(h)
	b := testClient(h)
	a.SetRoom("abc123", "Alice")
	b.SetRoom("abc123", "Bob")
	h.JoinRoom(a, "abc123")
	h.JoinRoom(b, "abc123")

	h.unregisterClient(a)

	if peers := h.RoomPeers("abc123", uuid.Nil); len(peers) != 1 {
		t.Errorf("RoomPeers() after unregister = %v, want 1 peer", peers)
	}
	if err := h.SendToClient(a.ID, []byte("x")); err != ErrTargetGone {
		t.Errorf("SendToClient() to unregistered = %v, want ErrTargetGone", err)
	}

	// Последний вышел — relay-группа комнаты исчезает
	h.unregisterClient(b)
	h.mu.RLock()
	_, ok := h.rooms["abc123"]
	h.mu.RUnlock()
	if ok {
		t.Error("empty relay group kept in hub")
	}
}

// Адресная отправка конкурентно с отключением адресата: сигнал либо
// доставлен, либо ErrTargetGone, но никогда не паника на закрытом канале.
func TestSendToClientDuringUnregister(t *testing.T) {
	h := NewHub()

	for i := 0; i < 100; i++ {
		c := testClient(h)

		var wg sync.WaitGroup
		for g := 0; g < 2; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for {
					if err := h.SendToClient(c.ID, []byte("x")); err == ErrTargetGone {
						return
					}
				}
			}()
		}

		h.unregisterClient(c)
		wg.Wait()
	}
}

// После Stop отмена регистрации не должна вешать вызывающую горутину.
func TestUnregisterAfterStop(t *testing.T) {
	h := NewHub()
	go h.Run()
	c := testClient(h)
	h.Stop()

	done := make(chan struct{})
	go func() {
		h.Unregister(c)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Unregister blocked after Stop")
	}
}

func TestUnregisterUnknownIsNoop(t *testing.T) {
	h := NewHub()
	c := NewClient(h, nil)

	// Не зарегистрирован — ничего не должно упасть
	h.unregisterClient(c)
}
