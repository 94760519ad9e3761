// Package realtime рассылает события об изменениях отпуска подписанным клиентам.
// Клиенты подписываются на комнату отпуска; доставка не гарантируется.
package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Типы событий.
const (
	EventTaskUpdated   = "task-updated"
	EventBudgetUpdated = "budget-updated"
)

// Event - сообщение, рассылаемое участникам комнаты отпуска.
type Event struct {
	Type       string `json:"type"`
	VacationID string `json:"vacationId"`
	Payload    any    `json:"payload,omitempty"`
}

// Client - одна подписка. Hub пишет в Send, транспорт читает из него.
type Client struct {
	UserID string
	Send   chan []byte

	rooms map[string]struct{}
}

// NewClient создает клиента с буфером исходящих сообщений размера buffer.
func NewClient(userID string, buffer int) *Client {
	return &Client{
		UserID: userID,
		Send:   make(chan []byte, buffer),
		rooms:  make(map[string]struct{}),
	}
}

// Hub хранит комнаты по ID отпуска.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[string]map[*Client]struct{}
	clients map[*Client]struct{}
}

// NewHub создает пустой Hub.
func NewHub() *Hub {
	return &Hub{
		rooms:   make(map[string]map[*Client]struct{}),
		clients: make(map[*Client]struct{}),
	}
}

// Register добавляет клиента.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

// Unregister удаляет клиента из всех комнат и закрывает его канал.
// Повторный вызов безопасен.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	for room := range c.rooms {
		h.leaveLocked(c, room)
	}
	delete(h.clients, c)
	close(c.Send)
}

// Join подписывает клиента на комнату отпуска.
func (h *Hub) Join(c *Client, vacationID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	members, ok := h.rooms[vacationID]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[vacationID] = members
	}
	members[c] = struct{}{}
	c.rooms[vacationID] = struct{}{}
}

// Leave отписывает клиента от комнаты.
func (h *Hub) Leave(c *Client, vacationID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(c, vacationID)
}

func (h *Hub) leaveLocked(c *Client, vacationID string) {
	delete(c.rooms, vacationID)
	members, ok := h.rooms[vacationID]
	if !ok {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(h.rooms, vacationID)
	}
}

// RoomSize возвращает число подписчиков комнаты.
func (h *Hub) RoomSize(vacationID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[vacationID])
}

// Publish рассылает событие участникам комнаты.
// Клиенту с заполненным буфером сообщение не доставляется.
func (h *Hub) Publish(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		slog.Error("[Hub] Ошибка сериализации события", "type", ev.Type, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[ev.VacationID] {
		select {
		case c.Send <- data:
		default:
			slog.Warn("[Hub] Буфер клиента переполнен, событие отброшено",
				"user_id", c.UserID, "vacation_id", ev.VacationID, "type", ev.Type)
		}
	}
}
