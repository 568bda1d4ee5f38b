package model

// Типы уведомлений, приходящих по SSE-каналу.
// Неизвестные типы не отбрасываются — обрабатываются как NotificationTypeUnknown.
const (
	// NotificationTypeAvailable — зарезервированная книга стала доступна
	NotificationTypeAvailable = "available"
	// NotificationTypeOverdue — просрочка, адресовано читателю
	NotificationTypeOverdue = "overdue"
	// NotificationTypeOverdueLibrarian — просрочка, адресовано библиотекарю
	NotificationTypeOverdueLibrarian = "overdue_librarian"
	// NotificationTypeUnknown — fallback для типов вне контракта
	NotificationTypeUnknown = ""
)

// Notification — событие из потока уведомлений.
// Tagged union по полю Type вместо открытого словаря: суперсет полей
// всех вариантов, вариантные поля со значением omitempty.
type Notification struct {
	// ID — ключ дедупликации
	ID int64 `json:"id"`
	// Type — тег варианта (см. константы NotificationType*)
	Type string `json:"type"`
	// UserID — получатель
	UserID int64 `json:"user_id,omitempty"`
	// Username — имя получателя
	Username string `json:"username,omitempty"`
	// FullName — полное имя получателя
	FullName string `json:"full_name,omitempty"`
	// Message — текст уведомления (fallback, если нет book_title)
	Message string `json:"message,omitempty"`

	// --- Поля книги ---

	BookID    int64  `json:"book_id,omitempty"`
	BookTitle string `json:"book_title,omitempty"`

	// --- Поля просрочки (type overdue / overdue_librarian) ---

	// BorrowID — запись выдачи, к которой относится просрочка
	BorrowID int64 `json:"borrow_id,omitempty"`
	// HoursOverdue — полных часов просрочки на момент отправки
	HoursOverdue int `json:"hours_overdue,omitempty"`
	// CurrentFee — текущий штраф на момент отправки (advisory, не авторитетный)
	CurrentFee float64 `json:"current_fee,omitempty"`
	// PaymentStatus — статус оплаты штрафа
	PaymentStatus string `json:"payment_status,omitempty"`
	// DueDate — срок возврата (ISO-строка, как присылает сервер)
	DueDate string `json:"due_date,omitempty"`

	// --- Поля читателя для overdue_librarian ---

	BorrowerUsername string `json:"borrower_username,omitempty"`
	BorrowerFullName string `json:"borrower_full_name,omitempty"`
	BorrowerRole     string `json:"borrower_role,omitempty"`
}

// IsOverdueKind сообщает, относится ли уведомление к просрочке.
func (n *Notification) IsOverdueKind() bool {
	return n.Type == NotificationTypeOverdue || n.Type == NotificationTypeOverdueLibrarian
}

// NotificationList — ответ GET /api/notifications/ (непрочитанные).
type NotificationList struct {
	Items []Notification `json:"items"`
	Count int            `json:"count"`
}
