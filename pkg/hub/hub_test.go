package hub

import (
	"testing"
	"time"
)

func newRegisteredClient(t *testing.T, h *Hub, buffer int) *Client {
	t.Helper()
	c := &Client{hub: h, send: make(chan Message, buffer)}
	h.register <- c

	deadline := time.After(time.Second)
	for h.ClientCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("client never registered")
		default:
			time.Sleep(time.Millisecond)
		}
	}
	return c
}

func TestHubBroadcastFanOut(t *testing.T) {
	h := New("test")
	go h.Run()

	a := newRegisteredClient(t, h, 4)
	b := newRegisteredClient(t, h, 4)

	h.BroadcastBinary([]byte{0xff, 0xd8})

	for _, c := range []*Client{a, b} {
		select {
		case msg := <-c.send:
			if msg.Kind != Binary || len(msg.Data) != 2 {
				t.Errorf("message = %+v, want 2-byte binary", msg)
			}
		case <-time.After(time.Second):
			t.Fatal("client never received the broadcast")
		}
	}
}

func TestHubBroadcastJSON(t *testing.T) {
	h := New("test")
	go h.Run()

	c := newRegisteredClient(t, h, 4)

	if err := h.BroadcastJSON(map[string]int{"completed": 2}); err != nil {
		t.Fatalf("BroadcastJSON: %v", err)
	}

	select {
	case msg := <-c.send:
		if msg.Kind != JSON {
			t.Errorf("kind = %v, want JSON", msg.Kind)
		}
		if string(msg.Data) != `{"completed":2}` {
			t.Errorf("data = %s", msg.Data)
		}
	case <-time.After(time.Second):
		t.Fatal("client never received the broadcast")
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	h := New("test")
	go h.Run()

	// Buffer of one: the second broadcast finds the channel full.
	c := newRegisteredClient(t, h, 1)

	h.BroadcastBinary([]byte{1})
	h.BroadcastBinary([]byte{2})

	deadline := time.After(time.Second)
	for h.ClientCount() != 0 {
		select {
		case <-deadline:
			t.Fatal("slow client never dropped")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	// The drained channel was closed by the hub.
	<-c.send
	if _, ok := <-c.send; ok {
		t.Error("send channel not closed after drop")
	}
}

func TestHubStopDisconnectsClients(t *testing.T) {
	h := New("test")
	go h.Run()

	c := newRegisteredClient(t, h, 1)

	h.Stop()
	h.Stop() // idempotent

	deadline := time.After(time.Second)
	for h.ClientCount() != 0 {
		select {
		case <-deadline:
			t.Fatal("clients not cleared on stop")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	if _, ok := <-c.send; ok {
		t.Error("send channel not closed on stop")
	}
}

func TestHubUnregister(t *testing.T) {
	h := New("test")
	go h.Run()

	c := newRegisteredClient(t, h, 1)
	h.unregister <- c

	deadline := time.After(time.Second)
	for h.ClientCount() != 0 {
		select {
		case <-deadline:
			t.Fatal("client never unregistered")
		default:
			time.Sleep(time.Millisecond)
		}
	}
}
