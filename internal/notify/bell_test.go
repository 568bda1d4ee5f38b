package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bigkaa/lms-client/internal/domain/model"
)

func TestBellRefreshAndMarkRead(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/notifications/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"items":[{"id":1,"type":"available","book_title":"Dune"},{"id":2,"type":"overdue","message":"late"}],"count":2}`)
	})
	mux.HandleFunc("POST /api/notifications/mark-read", func(w http.ResponseWriter, r *http.Request) {
		var req markReadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if req.ID != 1 {
			// Сервер не подтвердил — запись должна остаться
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	gw := newTestGateway(t, srv)
	bus := NewBus()
	bell := NewBell(gw, bus)
	defer bell.Close()

	ctx := context.Background()
	if err := bell.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if bell.Count() != 2 {
		t.Fatalf("ожидалось 2 непрочитанных, получено %d", bell.Count())
	}

	// Подтверждённая отметка удаляет запись
	if err := bell.MarkRead(ctx, 1); err != nil {
		t.Fatalf("MarkRead(1): %v", err)
	}
	if bell.Count() != 1 {
		t.Fatalf("ожидалось 1 непрочитанное после отметки, получено %d", bell.Count())
	}

	// Отклонённая отметка запись не трогает
	if err := bell.MarkRead(ctx, 2); err == nil {
		t.Fatal("ожидалась ошибка отметки, получен nil")
	}
	if bell.Count() != 1 {
		t.Fatalf("запись удалена без подтверждения сервера: осталось %d", bell.Count())
	}
}

func TestBellLiveEvents(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	gw := newTestGateway(t, srv)
	bus := NewBus()
	bell := NewBell(gw, bus)
	defer bell.Close()

	bus.Publish(model.Notification{ID: 10, Type: model.NotificationTypeAvailable, BookTitle: "Dune"})
	bus.Publish(model.Notification{ID: 11, Type: model.NotificationTypeOverdue})
	// Повторная доставка того же id снимок не раздувает
	bus.Publish(model.Notification{ID: 10, Type: model.NotificationTypeAvailable, BookTitle: "Dune"})
	// События без id игнорируются
	bus.Publish(model.Notification{Type: model.NotificationTypeUnknown})

	unread := bell.Unread()
	if len(unread) != 2 {
		t.Fatalf("ожидалось 2 непрочитанных, получено %d", len(unread))
	}
	// Свежее событие встаёт в начало
	if unread[0].ID != 11 {
		t.Errorf("ожидался id 11 первым, получен %d", unread[0].ID)
	}
}
