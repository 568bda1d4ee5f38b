// Пакет notify — приём и распределение уведомлений реального времени.
//
// Consumer (SSE-актор) — единственный читатель потока; остальные части
// клиента (счётчик непрочитанных, CLI-вывод) подписываются на Bus и
// получают уже принятые события. Публикация в Bus происходит для КАЖДОГО
// полученного события, включая дубликаты: dedup ограничивает только
// пользовательские тосты, подписчики обязаны быть идемпотентными.
package notify

import (
	"sync"

	"github.com/bigkaa/lms-client/internal/domain/model"
)

// Handler — обработчик события уведомления.
// Вызывается синхронно из goroutine Consumer-а: долгие операции
// обработчик обязан уносить в собственную goroutine.
type Handler func(n model.Notification)

// Bus — широковещательная шина событий уведомлений
// (аналог window event в браузерном клиенте).
type Bus struct {
	mu       sync.Mutex
	nextID   int
	handlers map[int]Handler
}

// NewBus создаёт пустую шину.
func NewBus() *Bus {
	return &Bus{handlers: map[int]Handler{}}
}

// Subscribe регистрирует обработчик и возвращает функцию отписки.
// Отписка идемпотентна.
func (b *Bus) Subscribe(h Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[id] = h

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers, id)
	}
}

// Publish доставляет событие всем текущим подписчикам.
func (b *Bus) Publish(n model.Notification) {
	b.mu.Lock()
	hs := make([]Handler, 0, len(b.handlers))
	for _, h := range b.handlers {
		hs = append(hs, h)
	}
	b.mu.Unlock()

	for _, h := range hs {
		h(n)
	}
}
