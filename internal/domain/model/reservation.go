package model

import "time"

// Reservation — запись резервирования книги.
// Создаётся, когда у книги нет доступных экземпляров.
// Позиция в очереди — порядок в списке (insertion order), не хранимое поле.
// Отмена резервирования в потребляемом контракте отсутствует.
type Reservation struct {
	// ID — идентификатор резервирования
	ID int64 `json:"id"`
	// UserID — идентификатор читателя
	UserID int64 `json:"user_id"`
	// BookID — идентификатор книги
	BookID int64 `json:"book_id"`
	// CreatedAt — время постановки в очередь
	CreatedAt time.Time `json:"created_at"`

	// Username — имя читателя (опционально, для списков библиотекаря)
	Username string `json:"username,omitempty"`
	// FullName — полное имя читателя (опционально)
	FullName string `json:"full_name,omitempty"`
}

// ReservationPage — страница очереди резервирований
// (GET /api/reservations/?book_id&page&page_size → {items, total}).
type ReservationPage struct {
	Items []Reservation `json:"items"`
	Total int           `json:"total"`
}
