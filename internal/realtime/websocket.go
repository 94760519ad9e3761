package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gRaffRO/VoyageHub-sub000/internal/middleware"
	"github.com/gRaffRO/VoyageHub-sub000/internal/models"
)

// Сообщения клиента.
const (
	MessageJoin  = "join-vacation"
	MessageLeave = "leave-vacation"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 32
)

// VacationGetter проверяет, что отпуск принадлежит пользователю.
type VacationGetter interface {
	GetVacation(ctx context.Context, userID, vacationID string) (*models.Vacation, error)
}

// clientMessage - входящее сообщение клиента.
type clientMessage struct {
	Type       string `json:"type"`
	VacationID string `json:"vacationId"`
}

// Handler поднимает websocket-соединение и связывает его с Hub.
// Должен стоять за middleware.Authenticator.
type Handler struct {
	hub       *Hub
	vacations VacationGetter
	upgrader  websocket.Upgrader
}

// NewHandler создает обработчик websocket. allowedOrigins пустой - разрешены все источники.
func NewHandler(hub *Hub, vacations VacationGetter, allowedOrigins []string) *Handler {
	h := &Handler{hub: hub, vacations: vacations}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// ServeHTTP выполняет рукопожатие и обслуживает соединение до его закрытия.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Требуется аутентификация", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Info("[WS] Ошибка рукопожатия", "error", err)
		return
	}

	client := NewClient(userID, sendBuffer)
	h.hub.Register(client)
	slog.Debug("[WS] Клиент подключен", "user_id", userID)

	go h.writePump(conn, client)
	h.readPump(r.Context(), conn, client)
}

func (h *Handler) readPump(ctx context.Context, conn *websocket.Conn, c *Client) {
	defer func() {
		h.hub.Unregister(c)
		_ = conn.Close()
		slog.Debug("[WS] Клиент отключен", "user_id", c.UserID)
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Info("[WS] Соединение прервано", "user_id", c.UserID, "error", err)
			}
			return
		}

		var msg clientMessage
		if err = json.Unmarshal(data, &msg); err != nil || msg.VacationID == "" {
			h.reply(c, Event{Type: "error", Payload: "неверный формат сообщения"})
			continue
		}

		switch msg.Type {
		case MessageJoin:
			if _, err = h.vacations.GetVacation(ctx, c.UserID, msg.VacationID); err != nil {
				slog.Info("[WS] Отказ в подписке", "user_id", c.UserID, "vacation_id", msg.VacationID, "error", err)
				h.reply(c, Event{Type: "error", VacationID: msg.VacationID, Payload: "отпуск не найден"})
				continue
			}
			h.hub.Join(c, msg.VacationID)
			h.reply(c, Event{Type: "joined", VacationID: msg.VacationID})
		case MessageLeave:
			h.hub.Leave(c, msg.VacationID)
			h.reply(c, Event{Type: "left", VacationID: msg.VacationID})
		default:
			h.reply(c, Event{Type: "error", Payload: "неизвестный тип сообщения"})
		}
	}
}

// reply отправляет ответ только этому клиенту.
func (h *Handler) reply(c *Client, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	h.hub.mu.RLock()
	defer h.hub.mu.RUnlock()
	if _, ok := h.hub.clients[c]; !ok {
		return
	}
	select {
	case c.Send <- data:
	default:
	}
}

func (h *Handler) writePump(conn *websocket.Conn, c *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
