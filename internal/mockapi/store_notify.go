package mockapi

import (
	"errors"
	"fmt"

	"github.com/bigkaa/lms-client/internal/domain/model"
)

// --- Резервирования ---

var (
	errReservationNotFound  = errors.New("резервирование не найдено")
	errReservationForbidden = errors.New("резервирование принадлежит другому пользователю")
)

// CreateReservation ставит пользователя в очередь на книгу.
// Резервировать можно только книгу без доступных экземпляров.
func (s *Store) CreateReservation(userID, bookID int64) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.books[bookID]
	if !ok {
		return nil, fmt.Errorf("книга не найдена")
	}
	if b.AvailableCopies > 0 {
		return nil, fmt.Errorf("книга доступна, резервирование не требуется")
	}
	for _, r := range s.reservations {
		if r.UserID == userID && r.BookID == bookID {
			return nil, fmt.Errorf("читатель уже в очереди на эту книгу")
		}
	}

	s.nextReservationID++
	r := &model.Reservation{
		ID:        s.nextReservationID,
		UserID:    userID,
		BookID:    bookID,
		CreatedAt: s.now(),
	}
	if a, ok := s.users[userID]; ok {
		r.Username = a.Username
		r.FullName = a.FullName
	}
	s.reservations = append(s.reservations, r)
	out := *r
	return &out, nil
}

// Reservations возвращает страницу очереди (insertion order — позиция
// в очереди). bookID == 0 — все книги; page нумеруется с 1.
func (s *Store) Reservations(bookID int64, page, pageSize int) model.ReservationPage {
	s.mu.Lock()
	defer s.mu.Unlock()

	filtered := []model.Reservation{}
	for _, r := range s.reservations {
		if bookID != 0 && r.BookID != bookID {
			continue
		}
		filtered = append(filtered, *r)
	}

	total := len(filtered)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return model.ReservationPage{Items: filtered[start:end], Total: total}
}

// CancelReservation убирает запись из очереди.
// Отменить чужое резервирование может только библиотекарь.
func (s *Store) CancelReservation(id, userID int64, librarian bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, r := range s.reservations {
		if r.ID != id {
			continue
		}
		if r.UserID != userID && !librarian {
			return errReservationForbidden
		}
		s.reservations = append(s.reservations[:i], s.reservations[i+1:]...)
		return nil
	}
	return errReservationNotFound
}

// ReservationsByUser возвращает резервирования пользователя.
func (s *Store) ReservationsByUser(userID int64) []model.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []model.Reservation{}
	for _, r := range s.reservations {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out
}

// --- Уведомления ---

// AddNotification сохраняет уведомление, присваивая id.
func (s *Store) AddNotification(n model.Notification) model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextNotificationID++
	n.ID = s.nextNotificationID
	s.notifications[n.ID] = &notificationRecord{Notification: n}
	return n
}

// UnreadNotifications возвращает непрочитанные уведомления пользователя
// (свежие первыми).
func (s *Store) UnreadNotifications(userID int64) model.NotificationList {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := []model.Notification{}
	for id := s.nextNotificationID; id >= 1; id-- {
		rec, ok := s.notifications[id]
		if !ok || rec.read || rec.UserID != userID {
			continue
		}
		items = append(items, rec.Notification)
	}
	return model.NotificationList{Items: items, Count: len(items)}
}

// MarkNotificationRead отмечает уведомление прочитанным.
// Чужое уведомление отметить нельзя.
func (s *Store) MarkNotificationRead(id, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.notifications[id]
	if !ok {
		return fmt.Errorf("уведомление не найдено")
	}
	if rec.UserID != userID {
		return fmt.Errorf("уведомление принадлежит другому пользователю")
	}
	rec.read = true
	return nil
}
