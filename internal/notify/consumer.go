package notify

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/bigkaa/lms-client/internal/domain/model"
)

// streamPath — endpoint SSE-потока уведомлений.
const streamPath = "/api/notifications/stream"

// Gateway — операции HTTP-шлюза, нужные потребителю уведомлений.
type Gateway interface {
	// OpenStream открывает SSE-соединение (аутентификация cookie)
	OpenStream(ctx context.Context, path string) (*http.Response, error)
	// FetchWithAuth — авторизованный запрос (отметка о прочтении)
	FetchWithAuth(ctx context.Context, method, path string, body any) (json.RawMessage, error)
}

// Toaster показывает пользователю всплывающее уведомление.
// В CLI это печать строки в терминал.
type Toaster func(text string)

// Consumer — единственный читатель SSE-потока уведомлений.
// Жизненный цикл: Start запускает фоновую goroutine чтения с
// автоматическим переподключением через фиксированную паузу
// (EventSource-семантика), Stop останавливает её и дожидается выхода.
//
// На каждое полученное событие:
//   - новое (id не в dedup-множестве): тост + fire-and-forget отметка
//     о прочтении + публикация в Bus;
//   - дубликат: ТОЛЬКО публикация в Bus — подписчики получают каждое
//     событие и сами обязаны быть идемпотентными.
type Consumer struct {
	gw     Gateway
	bus    *Bus
	toast  Toaster
	retry  time.Duration
	logger *slog.Logger

	// seen — ограниченное множество виденных id (LRU, чтобы память
	// не росла на долгоживущем соединении)
	seen *lru.Cache[int64, struct{}]

	cancel context.CancelFunc
	done   chan struct{}
}

// NewConsumer создаёт потребителя потока уведомлений.
// toast может быть nil (уведомления без пользовательского вывода).
func NewConsumer(gw Gateway, bus *Bus, toast Toaster, retry time.Duration, dedupSize int, logger *slog.Logger) (*Consumer, error) {
	seen, err := lru.New[int64, struct{}](dedupSize)
	if err != nil {
		return nil, fmt.Errorf("создание dedup-кэша: %w", err)
	}
	return &Consumer{
		gw:     gw,
		bus:    bus,
		toast:  toast,
		retry:  retry,
		logger: logger.With(slog.String("component", "notify_consumer")),
		seen:   seen,
	}, nil
}

// Start запускает фоновое чтение потока. Повторный Start без Stop
// не поддерживается.
func (c *Consumer) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)
	c.done = make(chan struct{})

	go func() {
		defer close(c.done)
		c.run(ctx)
	}()
}

// Stop останавливает чтение и дожидается завершения goroutine.
func (c *Consumer) Stop() {
	if c.cancel == nil {
		return
	}
	c.cancel()
	<-c.done
}

// run — цикл подключений: открыть поток, читать до обрыва, пауза,
// повторить. Завершается только по отмене контекста.
func (c *Consumer) run(ctx context.Context) {
	for {
		resp, err := c.gw.OpenStream(ctx, streamPath)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Warn("не удалось открыть поток уведомлений",
				slog.String("error", err.Error()),
				slog.Duration("retry", c.retry),
			)
			if !sleepCtx(ctx, c.retry) {
				return
			}
			continue
		}

		c.logger.Debug("поток уведомлений открыт")
		c.readStream(ctx, resp.Body)
		resp.Body.Close()

		if ctx.Err() != nil {
			return
		}
		c.logger.Debug("поток уведомлений прерван, переподключение",
			slog.Duration("retry", c.retry),
		)
		if !sleepCtx(ctx, c.retry) {
			return
		}
	}
}

// readStream разбирает SSE-кадры до обрыва соединения.
// Интересуют только data-строки; комментарии (keepalive-пинги ": ping")
// и event-строки пропускаются. Пустая строка завершает кадр.
func (c *Consumer) readStream(ctx context.Context, body io.Reader) {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var data strings.Builder
	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case line == "":
			if data.Len() > 0 {
				c.handleEvent(ctx, data.String())
				data.Reset()
			}
		case strings.HasPrefix(line, ":"):
			// keepalive-комментарий
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	// Хвост без завершающей пустой строки — тоже кадр
	if data.Len() > 0 && ctx.Err() == nil {
		c.handleEvent(ctx, data.String())
	}
}

// handleEvent обрабатывает один SSE-кадр.
func (c *Consumer) handleEvent(ctx context.Context, payload string) {
	var n model.Notification
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		c.logger.Debug("нераспознанный кадр потока", slog.String("error", err.Error()))
		return
	}

	fresh := true
	if n.ID != 0 {
		if c.seen.Contains(n.ID) {
			fresh = false
		} else {
			c.seen.Add(n.ID, struct{}{})
		}
	}

	if fresh {
		if c.toast != nil {
			c.toast(ToastText(n))
		}
		// Отметка о прочтении — best effort, результат не влияет на
		// доставку события
		if n.ID != 0 {
			go c.markRead(ctx, n.ID)
		}
	}

	// Публикация происходит всегда, в том числе для дубликатов
	c.bus.Publish(n)
}

// markReadRequest — тело запроса отметки о прочтении.
type markReadRequest struct {
	ID int64 `json:"id"`
}

// markRead отправляет отметку о прочтении. Ошибки глотаются.
func (c *Consumer) markRead(ctx context.Context, id int64) {
	_, err := c.gw.FetchWithAuth(ctx, http.MethodPost, "/api/notifications/mark-read", markReadRequest{ID: id})
	if err != nil {
		c.logger.Debug("отметка о прочтении не доставлена",
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
	}
}

// ToastText — текст всплывающего уведомления для события n.
func ToastText(n model.Notification) string {
	switch n.Type {
	case model.NotificationTypeAvailable:
		title := n.BookTitle
		if title == "" {
			title = n.Message
		}
		name := n.FullName
		if name == "" {
			name = n.Username
		}
		return fmt.Sprintf("%s is now available for %s", title, name)
	case model.NotificationTypeOverdue:
		if n.Message != "" {
			return n.Message
		}
		return fmt.Sprintf("%s is overdue (%d h, fee %.2f)", n.BookTitle, n.HoursOverdue, n.CurrentFee)
	case model.NotificationTypeOverdueLibrarian:
		if n.Message != "" {
			return n.Message
		}
		borrower := n.BorrowerFullName
		if borrower == "" {
			borrower = n.BorrowerUsername
		}
		return fmt.Sprintf("%s is overdue for %s (%d h, fee %.2f)", n.BookTitle, borrower, n.HoursOverdue, n.CurrentFee)
	default:
		return n.Message
	}
}

// sleepCtx ждёт d или отмены контекста. false — контекст отменён.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
