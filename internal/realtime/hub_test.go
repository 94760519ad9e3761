package realtime

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case data := <-c.Send:
		var ev Event
		require.NoError(t, json.Unmarshal(data, &ev))
		return ev
	default:
		t.Fatal("ожидалось сообщение")
		return Event{}
	}
}

func assertEmpty(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.Send:
		t.Fatalf("неожиданное сообщение: %s", data)
	default:
	}
}

func TestHub_PublishToRoomOnly(t *testing.T) {
	h := NewHub()
	alice := NewClient("alice", 4)
	bob := NewClient("bob", 4)
	h.Register(alice)
	h.Register(bob)

	h.Join(alice, "v1")
	h.Join(bob, "v2")
	assert.Equal(t, 1, h.RoomSize("v1"))

	h.Publish(Event{Type: EventTaskUpdated, VacationID: "v1", Payload: map[string]string{"id": "t1"}})

	ev := receive(t, alice)
	assert.Equal(t, EventTaskUpdated, ev.Type)
	assert.Equal(t, "v1", ev.VacationID)
	assertEmpty(t, bob)
}

func TestHub_LeaveAndUnregister(t *testing.T) {
	h := NewHub()
	c := NewClient("alice", 4)
	h.Register(c)
	h.Join(c, "v1")
	h.Join(c, "v2")

	h.Leave(c, "v1")
	assert.Zero(t, h.RoomSize("v1"))
	h.Publish(Event{Type: EventBudgetUpdated, VacationID: "v1"})
	assertEmpty(t, c)

	h.Unregister(c)
	assert.Zero(t, h.RoomSize("v2"))
	_, open := <-c.Send
	assert.False(t, open, "канал должен быть закрыт")

	// повторные вызовы безопасны
	h.Unregister(c)
	h.Join(c, "v3")
	assert.Zero(t, h.RoomSize("v3"))
	h.Publish(Event{Type: EventBudgetUpdated, VacationID: "v2"})
}

func TestHub_SlowClientDropsMessages(t *testing.T) {
	h := NewHub()
	slow := NewClient("slow", 1)
	h.Register(slow)
	h.Join(slow, "v1")

	for i := 0; i < 5; i++ {
		h.Publish(Event{Type: EventTaskUpdated, VacationID: "v1"})
	}
	assert.Len(t, slow.Send, 1)
}

func TestHub_ConcurrentPublish(t *testing.T) {
	h := NewHub()
	clients := make([]*Client, 10)
	for i := range clients {
		clients[i] = NewClient("u", 100)
		h.Register(clients[i])
		h.Join(clients[i], "v1")
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			h.Publish(Event{Type: EventTaskUpdated, VacationID: "v1"})
		}()
		go func(c *Client) {
			defer wg.Done()
			h.Leave(c, "v1")
			h.Join(c, "v1")
		}(clients[i])
	}
	wg.Wait()
	assert.Equal(t, 10, h.RoomSize("v1"))
}
