package mockapi

import (
	"fmt"
	"strings"
	"time"

	"github.com/bigkaa/lms-client/internal/domain/model"
)

// --- Выдачи ---

// CreateBorrow оформляет выдачу книги пользователю.
// Срок возврата назначает сервер (now + borrowPeriod); доступные
// экземпляры декрементируются.
func (s *Store) CreateBorrow(userID, bookID int64) (*model.Borrow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.books[bookID]
	if !ok {
		return nil, fmt.Errorf("книга не найдена")
	}
	if b.AvailableCopies < 1 {
		return nil, fmt.Errorf("нет доступных экземпляров")
	}
	for _, br := range s.borrows {
		if br.UserID == userID && br.BookID == bookID && br.ReturnedAt == nil {
			return nil, fmt.Errorf("книга уже на руках у читателя")
		}
	}

	b.AvailableCopies--
	now := s.now()

	s.nextBorrowID++
	rec := &borrowRecord{
		Borrow: model.Borrow{
			ID:           s.nextBorrowID,
			UserID:       userID,
			BookID:       bookID,
			BorrowedAt:   now,
			DueDate:      now.Add(borrowPeriod),
			BookTitle:    b.Title,
			BookAuthor:   b.Author,
			BookISBN:     b.ISBN,
			BookCoverURL: b.CoverURL,
		},
		paymentStatus: model.PaymentStatusUnpaid,
	}
	s.borrows[rec.ID] = rec
	out := rec.Borrow
	return &out, nil
}

// ReturnBorrow фиксирует возврат: ставит returned_at, финализирует
// fee_applied (база + полные часы просрочки; вовремя — 0) и возвращает
// экземпляр в каталог. Если на книгу есть очередь — возвращает
// пользователя, которому книга стала доступна.
func (s *Store) ReturnBorrow(borrowID, userID int64, librarian bool) (*model.Borrow, *model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.borrows[borrowID]
	if !ok {
		return nil, nil, fmt.Errorf("запись выдачи не найдена")
	}
	if rec.UserID != userID && !librarian {
		return nil, nil, fmt.Errorf("возврат чужой выдачи запрещён")
	}
	if rec.ReturnedAt != nil {
		return nil, nil, fmt.Errorf("книга уже возвращена")
	}

	now := s.now()
	rec.ReturnedAt = &now
	if now.After(rec.DueDate) {
		hours := int(now.Sub(rec.DueDate) / time.Hour)
		rec.FeeApplied = baseFee + hourlyRate*float64(hours)
	} else {
		rec.FeeApplied = 0
		rec.paymentStatus = model.PaymentStatusPaid
	}

	var next *model.Reservation
	if b, ok := s.books[rec.BookID]; ok {
		b.AvailableCopies++
		// Освободившийся экземпляр уходит первому в очереди
		for i, r := range s.reservations {
			if r.BookID == rec.BookID {
				next = r
				s.reservations = append(s.reservations[:i], s.reservations[i+1:]...)
				b.AvailableCopies--
				break
			}
		}
	}

	out := rec.Borrow
	return &out, next, nil
}

// BorrowsByUser возвращает выдачи пользователя.
// history=false — только книги на руках; history=true — включая возвращённые.
func (s *Store) BorrowsByUser(userID int64, history bool) []model.Borrow {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []model.Borrow{}
	for id := int64(1); id <= s.nextBorrowID; id++ {
		rec, ok := s.borrows[id]
		if !ok || rec.UserID != userID {
			continue
		}
		if !history && rec.ReturnedAt != nil {
			continue
		}
		out = append(out, rec.Borrow)
	}
	return out
}

// AllBorrows возвращает все выдачи.
// overdueOnly — только просроченные невозвращённые.
func (s *Store) AllBorrows(overdueOnly bool) []model.Borrow {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	out := []model.Borrow{}
	for id := int64(1); id <= s.nextBorrowID; id++ {
		rec, ok := s.borrows[id]
		if !ok {
			continue
		}
		if overdueOnly && !rec.IsOverdue(now) {
			continue
		}
		out = append(out, rec.Borrow)
	}
	return out
}

// OverdueUnreturned возвращает просроченные невозвращённые записи
// (для фонового генератора overdue-уведомлений).
func (s *Store) OverdueUnreturned() []model.Borrow {
	return s.AllBorrows(true)
}

// --- Платежи ---

// PayFee оплачивает зафиксированный штраф по записи выдачи.
// Оплачивается ровно fee_applied — сервер не принимает сумму извне.
func (s *Store) PayFee(borrowID, userID int64, librarian bool) (*model.BorrowWithPayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.borrows[borrowID]
	if !ok {
		return nil, fmt.Errorf("запись выдачи не найдена")
	}
	if rec.UserID != userID && !librarian {
		return nil, fmt.Errorf("оплата чужого штрафа запрещена")
	}
	if rec.ReturnedAt == nil {
		return nil, fmt.Errorf("штраф фиксируется при возврате книги")
	}
	if rec.paymentStatus == model.PaymentStatusPaid {
		return nil, fmt.Errorf("штраф уже оплачен")
	}

	now := s.now()
	rec.paymentStatus = model.PaymentStatusPaid
	rec.paidAt = &now

	out := s.withPaymentLocked(rec)
	out.FeePaid = rec.FeeApplied
	out.Message = fmt.Sprintf("Оплачен штраф %.2f по выдаче %d", rec.FeeApplied, rec.ID)
	return out, nil
}

// PaymentsList возвращает платёжные записи.
// userID == 0 — все пользователи; status == "" — любой статус.
func (s *Store) PaymentsList(userID int64, status string) []model.BorrowWithPayment {
	s.mu.Lock()
	defer s.mu.Unlock()

	if status != model.PaymentStatusPaid && status != model.PaymentStatusUnpaid {
		status = ""
	}

	out := []model.BorrowWithPayment{}
	for id := int64(1); id <= s.nextBorrowID; id++ {
		rec, ok := s.borrows[id]
		if !ok {
			continue
		}
		if userID != 0 && rec.UserID != userID {
			continue
		}
		// Записи без штрафа не считаются платёжными
		if rec.FeeApplied == 0 && rec.ReturnedAt != nil {
			continue
		}
		if status == model.PaymentStatusUnpaid && (rec.ReturnedAt == nil || rec.paymentStatus != model.PaymentStatusUnpaid) {
			continue
		}
		if status == model.PaymentStatusPaid && rec.paymentStatus != model.PaymentStatusPaid {
			continue
		}
		if status == "" && rec.ReturnedAt == nil {
			continue
		}
		out = append(out, *s.withPaymentLocked(rec))
	}
	return out
}

// PaymentsSummary возвращает сводку по штрафам.
// userID == 0 — по всем пользователям.
func (s *Store) PaymentsSummary(userID int64) model.PaymentSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sum model.PaymentSummary
	for _, rec := range s.borrows {
		if userID != 0 && rec.UserID != userID {
			continue
		}
		if rec.FeeApplied == 0 {
			continue
		}
		if rec.paymentStatus == model.PaymentStatusPaid {
			sum.TotalPaid += rec.FeeApplied
			sum.CountPaid++
		} else if rec.ReturnedAt != nil {
			sum.TotalUnpaid += rec.FeeApplied
			sum.CountUnpaid++
		}
	}
	return sum
}

// withPaymentLocked собирает BorrowWithPayment с полями владельца.
// Вызывается под mu.
func (s *Store) withPaymentLocked(rec *borrowRecord) *model.BorrowWithPayment {
	out := &model.BorrowWithPayment{
		Borrow:        rec.Borrow,
		PaymentStatus: rec.paymentStatus,
		PaidAt:        rec.paidAt,
	}
	if a, ok := s.users[rec.UserID]; ok {
		out.Username = a.Username
		out.FullName = a.FullName
		out.Role = a.Role
	}
	return out
}

// --- Вспомогательные функции ---

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
