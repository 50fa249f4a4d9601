package streaming

import (
	"testing"
	"time"
)

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub()
	c1, c2 := NewClient(), NewClient()

	hub.Register(c1)
	hub.Register(c2)
	if got := hub.ClientCount(); got != 2 {
		t.Fatalf("ClientCount = %d; want 2", got)
	}

	hub.Unregister(c1)
	if got := hub.ClientCount(); got != 1 {
		t.Fatalf("ClientCount = %d; want 1", got)
	}
	if _, open := <-c1.Events; open {
		t.Error("unregistered client channel still open")
	}

	// Unregistering twice is a no-op.
	hub.Unregister(c1)
	if got := hub.ClientCount(); got != 1 {
		t.Fatalf("ClientCount after double unregister = %d; want 1", got)
	}
}

func TestBroadcastReachesAllClients(t *testing.T) {
	hub := NewHub()
	c1, c2 := NewClient(), NewClient()
	hub.Register(c1)
	hub.Register(c2)

	hub.Broadcast(Event{Type: EventTypeTask, TaskID: "t1", Status: "succeeded"})

	for i, c := range []*Client{c1, c2} {
		select {
		case evt := <-c.Events:
			if evt.TaskID != "t1" {
				t.Errorf("client %d got event %+v", i, evt)
			}
		case <-time.After(time.Second):
			t.Fatalf("client %d got no event", i)
		}
	}
}

func TestBroadcastSkipsSlowClient(t *testing.T) {
	hub := NewHub()
	slow := NewClient()
	hub.Register(slow)

	// Fill the buffer and keep going; Broadcast must not block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < cap(slow.Events)+5; i++ {
			hub.Broadcast(Event{Type: EventTypeTask})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast blocked on slow client")
	}
}

func TestStop(t *testing.T) {
	hub := NewHub()
	c := NewClient()
	hub.Register(c)

	hub.Stop()
	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("ClientCount after Stop = %d; want 0", got)
	}
	if _, open := <-c.Events; open {
		t.Error("client channel open after Stop")
	}

	// Registrations after Stop are rejected with a closed channel.
	late := NewClient()
	hub.Register(late)
	if got := hub.ClientCount(); got != 0 {
		t.Errorf("ClientCount after late register = %d; want 0", got)
	}
	if _, open := <-late.Events; open {
		t.Error("late client channel open after Stop")
	}

	// Broadcast and a second Stop are no-ops.
	hub.Broadcast(Event{Type: EventTypeBatch})
	hub.Stop()
}
