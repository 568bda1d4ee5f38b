package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bigkaa/lms-client/internal/api"
	"github.com/bigkaa/lms-client/internal/domain/model"
)

// newTestGateway создаёт api.Client, направленный на srv.
func newTestGateway(t *testing.T, srv *httptest.Server) *api.Client {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gw, err := api.New(srv.URL, 5*time.Second, nil, logger)
	if err != nil {
		t.Fatalf("не удалось создать клиент: %v", err)
	}
	return gw
}

// Дубликат события даёт один тост, но каждая доставка уходит в шину.
func TestConsumerDedupsToastsButPublishesAll(t *testing.T) {
	var (
		streamCount int32
		markReads   int32
	)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/notifications/stream", func(w http.ResponseWriter, r *http.Request) {
		// Поток отдаётся один раз; переподключения висят до конца теста
		if atomic.AddInt32(&streamCount, 1) > 1 {
			<-r.Context().Done()
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, ": ping\n\n")
		fmt.Fprint(w, "data: {\"id\":7,\"type\":\"available\",\"book_title\":\"Dune\",\"full_name\":\"Paul Atreides\"}\n\n")
		fmt.Fprint(w, "data: {\"id\":7,\"type\":\"available\",\"book_title\":\"Dune\",\"full_name\":\"Paul Atreides\"}\n\n")
		fmt.Fprint(w, "data: {\"id\":8,\"type\":\"overdue\",\"message\":\"Dune is overdue\"}\n\n")
	})
	mux.HandleFunc("POST /api/notifications/mark-read", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&markReads, 1)
		w.WriteHeader(http.StatusOK)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	gw := newTestGateway(t, srv)
	bus := NewBus()

	var mu sync.Mutex
	var toasts []string
	var published int32
	bus.Subscribe(func(n model.Notification) {
		atomic.AddInt32(&published, 1)
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	consumer, err := NewConsumer(gw, bus, func(text string) {
		mu.Lock()
		toasts = append(toasts, text)
		mu.Unlock()
	}, 20*time.Millisecond, 16, logger)
	if err != nil {
		t.Fatalf("не удалось создать consumer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	consumer.Start(ctx)

	// Три доставки в шину: 7, дубликат 7, 8
	waitFor(t, func() bool { return atomic.LoadInt32(&published) == 3 }, "три публикации в шину")
	// Две отметки о прочтении: по одной на уникальный id
	waitFor(t, func() bool { return atomic.LoadInt32(&markReads) == 2 }, "две отметки о прочтении")

	consumer.Stop()

	mu.Lock()
	defer mu.Unlock()
	if len(toasts) != 2 {
		t.Fatalf("ожидалось 2 тоста, получено %d: %v", len(toasts), toasts)
	}
	if toasts[0] != "Dune is now available for Paul Atreides" {
		t.Errorf("неожиданный текст тоста: %q", toasts[0])
	}
	if toasts[1] != "Dune is overdue" {
		t.Errorf("неожиданный текст тоста: %q", toasts[1])
	}
}

// Обрыв потока приводит к переподключению через фиксированную паузу.
func TestConsumerReconnects(t *testing.T) {
	var streamCount int32

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/notifications/stream", func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&streamCount, 1)
		w.Header().Set("Content-Type", "text/event-stream")
		if n >= 3 {
			<-r.Context().Done()
		}
		// Первые подключения сразу обрываются
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	gw := newTestGateway(t, srv)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	consumer, err := NewConsumer(gw, NewBus(), nil, 10*time.Millisecond, 16, logger)
	if err != nil {
		t.Fatalf("не удалось создать consumer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	consumer.Start(ctx)

	waitFor(t, func() bool { return atomic.LoadInt32(&streamCount) >= 3 }, "три подключения к потоку")
	consumer.Stop()
}

func TestToastText(t *testing.T) {
	tests := []struct {
		name string
		n    model.Notification
		want string
	}{
		{
			"available с полным именем",
			model.Notification{Type: model.NotificationTypeAvailable, BookTitle: "Dune", FullName: "Paul Atreides"},
			"Dune is now available for Paul Atreides",
		},
		{
			"available без полного имени",
			model.Notification{Type: model.NotificationTypeAvailable, BookTitle: "Dune", Username: "paul"},
			"Dune is now available for paul",
		},
		{
			"available без названия — fallback на message",
			model.Notification{Type: model.NotificationTypeAvailable, Message: "Your reservation", Username: "paul"},
			"Your reservation is now available for paul",
		},
		{
			"overdue с готовым сообщением",
			model.Notification{Type: model.NotificationTypeOverdue, Message: "Dune is overdue"},
			"Dune is overdue",
		},
		{
			"overdue_librarian без сообщения",
			model.Notification{Type: model.NotificationTypeOverdueLibrarian, BookTitle: "Dune", BorrowerUsername: "paul", HoursOverdue: 3, CurrentFee: 8},
			"Dune is overdue for paul (3 h, fee 8.00)",
		},
		{
			"неизвестный тип",
			model.Notification{Type: "maintenance", Message: "System update"},
			"System update",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToastText(tt.n); got != tt.want {
				t.Errorf("ожидалось %q, получено %q", tt.want, got)
			}
		})
	}
}

// Шина доставляет событие всем подписчикам; отписка прекращает доставку.
func TestBusSubscribeUnsubscribe(t *testing.T) {
	bus := NewBus()

	var a, b int
	unsubA := bus.Subscribe(func(model.Notification) { a++ })
	bus.Subscribe(func(model.Notification) { b++ })

	bus.Publish(model.Notification{ID: 1})
	unsubA()
	unsubA() // идемпотентна
	bus.Publish(model.Notification{ID: 2})

	if a != 1 {
		t.Errorf("ожидалась 1 доставка отписанному обработчику, получено %d", a)
	}
	if b != 2 {
		t.Errorf("ожидались 2 доставки, получено %d", b)
	}
}

// waitFor опрашивает условие до истечения таймаута.
func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("не дождались: %s", what)
}
