package model

import "time"

// Borrow — запись о выдаче книги.
// Жизненный цикл: создаётся при выдаче (id и due_date назначает сервер),
// мутирует один раз при возврате (returned_at, финализация fee_applied),
// после этого неизменна. Клиент НИКОГДА не вычисляет fee_applied для
// персистентности — только для отображения до появления серверного значения.
type Borrow struct {
	// ID — идентификатор записи выдачи
	ID int64 `json:"id"`
	// UserID — идентификатор читателя
	UserID int64 `json:"user_id"`
	// BookID — идентификатор книги
	BookID int64 `json:"book_id"`
	// BorrowedAt — время выдачи
	BorrowedAt time.Time `json:"borrowed_at"`
	// DueDate — срок возврата (назначает сервер)
	DueDate time.Time `json:"due_date"`
	// ReturnedAt — время возврата; nil пока книга на руках
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
	// FeeApplied — авторитетная сумма штрафа, установленная сервером.
	// Оплата всегда оплачивает именно это значение (fee authority).
	FeeApplied float64 `json:"fee_applied"`

	// Встроенные метаданные книги (опционально, зависит от endpoint)

	// BookTitle — название книги
	BookTitle string `json:"book_title,omitempty"`
	// BookAuthor — автор книги
	BookAuthor string `json:"book_author,omitempty"`
	// BookISBN — ISBN книги
	BookISBN string `json:"book_isbn,omitempty"`
	// BookCoverURL — обложка книги
	BookCoverURL string `json:"book_cover_url,omitempty"`
}

// IsOverdue сообщает, просрочена ли выдача на момент asOf:
// книга не возвращена И asOf позже срока возврата.
func (b *Borrow) IsOverdue(asOf time.Time) bool {
	return b.ReturnedAt == nil && asOf.After(b.DueDate)
}
