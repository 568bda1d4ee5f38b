package mockapi

import (
	"context"
	"log/slog"
	"time"

	"github.com/bigkaa/lms-client/internal/domain/model"
)

// OverdueChecker — фоновый генератор overdue-уведомлений.
// Периодически сканирует невозвращённые просроченные выдачи и
// отправляет читателю (overdue) и библиотекарям (overdue_librarian)
// уведомления. Повторное уведомление по той же выдаче уходит только
// при росте количества полных часов просрочки.
type OverdueChecker struct {
	handler  *Handler
	interval time.Duration
	logger   *slog.Logger

	// lastNotified: borrow id → полных часов на момент последнего уведомления
	lastNotified map[int64]int
}

// NewOverdueChecker создаёт фоновый генератор.
func NewOverdueChecker(handler *Handler, interval time.Duration, logger *slog.Logger) *OverdueChecker {
	return &OverdueChecker{
		handler:      handler,
		interval:     interval,
		logger:       logger.With(slog.String("component", "overdue_checker")),
		lastNotified: map[int64]int{},
	}
}

// Run запускает цикл проверки до отмены контекста.
func (c *OverdueChecker) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.check()
		}
	}
}

// check — один проход по просроченным выдачам.
func (c *OverdueChecker) check() {
	now := c.handler.store.now()
	librarians := c.librarians()

	for _, b := range c.handler.store.OverdueUnreturned() {
		hours := int(now.Sub(b.DueDate) / time.Hour)
		if last, ok := c.lastNotified[b.ID]; ok && last >= hours {
			continue
		}
		c.lastNotified[b.ID] = hours

		fee := baseFee + hourlyRate*float64(hours)
		due := b.DueDate.Format(time.RFC3339)

		borrower, _ := c.handler.store.userByID(b.UserID)

		c.handler.notify(model.Notification{
			Type:          model.NotificationTypeOverdue,
			UserID:        b.UserID,
			Username:      borrower.Username,
			FullName:      borrower.FullName,
			BookID:        b.BookID,
			BookTitle:     b.BookTitle,
			BorrowID:      b.ID,
			HoursOverdue:  hours,
			CurrentFee:    fee,
			PaymentStatus: model.PaymentStatusUnpaid,
			DueDate:       due,
		})

		for _, lib := range librarians {
			c.handler.notify(model.Notification{
				Type:             model.NotificationTypeOverdueLibrarian,
				UserID:           lib.ID,
				Username:         lib.Username,
				FullName:         lib.FullName,
				BookID:           b.BookID,
				BookTitle:        b.BookTitle,
				BorrowID:         b.ID,
				HoursOverdue:     hours,
				CurrentFee:       fee,
				PaymentStatus:    model.PaymentStatusUnpaid,
				DueDate:          due,
				BorrowerUsername: borrower.Username,
				BorrowerFullName: borrower.FullName,
				BorrowerRole:     borrower.Role,
			})
		}

		c.logger.Debug("overdue-уведомления отправлены",
			slog.Int64("borrow_id", b.ID),
			slog.Int("hours", hours),
		)
	}
}

// librarians возвращает всех пользователей с библиотекарскими правами.
func (c *OverdueChecker) librarians() []model.User {
	out := []model.User{}
	for _, u := range c.handler.store.Users() {
		if u.IsLibrarian() {
			out = append(out, u)
		}
	}
	return out
}
