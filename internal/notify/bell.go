package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/bigkaa/lms-client/internal/domain/model"
)

// Bell — счётчик непрочитанных уведомлений ("колокольчик").
// Снимок непрочитанных загружается с сервера (Refresh) и пополняется
// живыми событиями через подписку на Bus; новые события встают в начало
// списка. Удаление записи происходит ТОЛЬКО после подтверждения
// сервером (в отличие от fire-and-forget отметки Consumer-а).
type Bell struct {
	gw  Gateway
	bus *Bus

	mu    sync.Mutex
	items []model.Notification

	unsubscribe func()
}

// NewBell создаёт колокольчик и подписывает его на шину событий.
func NewBell(gw Gateway, bus *Bus) *Bell {
	b := &Bell{gw: gw, bus: bus}
	b.unsubscribe = bus.Subscribe(b.onEvent)
	return b
}

// Close отписывает колокольчик от шины.
func (b *Bell) Close() {
	if b.unsubscribe != nil {
		b.unsubscribe()
	}
}

// Refresh загружает с сервера актуальный список непрочитанных,
// замещая локальный снимок.
func (b *Bell) Refresh(ctx context.Context) error {
	raw, err := b.gw.FetchWithAuth(ctx, http.MethodGet, "/api/notifications/", nil)
	if err != nil {
		return fmt.Errorf("загрузка непрочитанных уведомлений: %w", err)
	}

	var list model.NotificationList
	if raw != nil {
		if err := json.Unmarshal(raw, &list); err != nil {
			return fmt.Errorf("декодирование списка уведомлений: %w", err)
		}
	}

	b.mu.Lock()
	b.items = list.Items
	b.mu.Unlock()
	return nil
}

// MarkRead отмечает уведомление прочитанным на сервере и удаляет его
// из локального снимка только при успешном ответе.
func (b *Bell) MarkRead(ctx context.Context, id int64) error {
	_, err := b.gw.FetchWithAuth(ctx, http.MethodPost, "/api/notifications/mark-read", markReadRequest{ID: id})
	if err != nil {
		return fmt.Errorf("отметка уведомления %d прочитанным: %w", id, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for i, n := range b.items {
		if n.ID == id {
			b.items = append(b.items[:i], b.items[i+1:]...)
			break
		}
	}
	return nil
}

// Unread возвращает копию текущего снимка непрочитанных.
func (b *Bell) Unread() []model.Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]model.Notification, len(b.items))
	copy(out, b.items)
	return out
}

// Count — количество непрочитанных.
func (b *Bell) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// onEvent добавляет живое событие в начало снимка.
// Повторная доставка того же id снимок не раздувает.
func (b *Bell) onEvent(n model.Notification) {
	if n.ID == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, existing := range b.items {
		if existing.ID == n.ID {
			return
		}
	}
	b.items = append([]model.Notification{n}, b.items...)
}
