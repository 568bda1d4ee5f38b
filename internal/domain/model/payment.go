package model

import "time"

// Статусы оплаты штрафа.
const (
	PaymentStatusUnpaid = "unpaid"
	PaymentStatusPaid   = "paid"
)

// PaymentSummary — сводка по штрафам (GET /api/payments/summary, all-summary).
type PaymentSummary struct {
	TotalUnpaid float64 `json:"total_unpaid"`
	TotalPaid   float64 `json:"total_paid"`
	CountUnpaid int     `json:"count_unpaid"`
	CountPaid   int     `json:"count_paid"`
}

// BorrowWithPayment — запись выдачи с платёжными полями
// (payments endpoints отдают Borrow, обогащённый статусом оплаты).
type BorrowWithPayment struct {
	Borrow

	// PaymentStatus — unpaid или paid
	PaymentStatus string `json:"payment_status"`
	// PaidAt — время оплаты; nil пока не оплачено
	PaidAt *time.Time `json:"paid_at,omitempty"`
	// FeePaid — оплаченная сумма (в ответе POST /api/payments/pay)
	FeePaid float64 `json:"fee_paid,omitempty"`
	// Message — человекочитаемое сообщение сервера (в ответе pay)
	Message string `json:"message,omitempty"`

	// Поля владельца записи (в списках библиотекаря)

	Username string `json:"username,omitempty"`
	FullName string `json:"full_name,omitempty"`
	Role     string `json:"role,omitempty"`
}
