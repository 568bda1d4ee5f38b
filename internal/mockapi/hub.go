package mockapi

import (
	"sync"

	"github.com/bigkaa/lms-client/internal/domain/model"
)

// Hub — маршрутизация живых уведомлений подключённым SSE-клиентам.
// Каждое SSE-соединение — отдельный подписчик; событие доставляется
// всем соединениям его адресата. Медленный клиент событие теряет
// (канал с буфером, без блокировки издателя).
type Hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]*subscriber
}

type subscriber struct {
	userID int64
	ch     chan model.Notification
}

// NewHub создаёт пустой hub.
func NewHub() *Hub {
	return &Hub{subs: map[int]*subscriber{}}
}

// Subscribe подключает SSE-клиента пользователя userID.
// Возвращённую функцию отписки обязателен вызвать при разрыве соединения.
func (h *Hub) Subscribe(userID int64) (<-chan model.Notification, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	sub := &subscriber{userID: userID, ch: make(chan model.Notification, 16)}
	h.subs[id] = sub

	return sub.ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs, id)
	}
}

// Publish доставляет событие всем соединениям адресата.
func (h *Hub) Publish(n model.Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, sub := range h.subs {
		if sub.userID != n.UserID {
			continue
		}
		select {
		case sub.ch <- n:
		default:
			// Переполненный буфер — событие клиенту не доставляется;
			// он доберёт его через GET /api/notifications/
		}
	}
}
