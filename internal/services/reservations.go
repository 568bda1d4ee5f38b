package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/bigkaa/lms-client/internal/api"
	"github.com/bigkaa/lms-client/internal/domain/model"
)

// ReservationService — очередь резервирований недоступных книг.
// Запись исчезает из очереди либо при отмене (Cancel), либо когда
// сервер выдаёт освободившийся экземпляр следующему в очереди.
type ReservationService struct {
	gw     *api.Client
	logger *slog.Logger
}

// NewReservationService создаёт сервис резервирований.
func NewReservationService(gw *api.Client, logger *slog.Logger) *ReservationService {
	return &ReservationService{
		gw:     gw,
		logger: logger.With(slog.String("component", "reservation_service")),
	}
}

// Create ставит текущего пользователя в очередь на книгу.
func (s *ReservationService) Create(ctx context.Context, bookID int64) (*model.Reservation, error) {
	var reservation model.Reservation
	err := s.gw.PostJSON(ctx, "/api/reservations/", map[string]int64{"book_id": bookID}, &reservation)
	if err != nil {
		return nil, fmt.Errorf("резервирование книги %d: %w", bookID, err)
	}
	return &reservation, nil
}

// List возвращает страницу очереди резервирований.
// bookID == 0 — все книги; page нумеруется с 1.
// Позиция в очереди — порядковый номер записи: (page-1)*pageSize + индекс + 1.
func (s *ReservationService) List(ctx context.Context, bookID int64, page, pageSize int) (*model.ReservationPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(pageSize))
	if bookID != 0 {
		q.Set("book_id", strconv.FormatInt(bookID, 10))
	}

	var result model.ReservationPage
	if err := s.gw.GetJSON(ctx, "/api/reservations/?"+q.Encode(), &result); err != nil {
		return nil, fmt.Errorf("очередь резервирований: %w", err)
	}
	return &result, nil
}

// Cancel снимает резервирование. Сервер разрешает отмену владельцу
// записи и библиотекарю.
func (s *ReservationService) Cancel(ctx context.Context, id int64) error {
	if err := s.gw.DeleteJSON(ctx, fmt.Sprintf("/api/reservations/%d", id), nil); err != nil {
		return fmt.Errorf("отмена резервирования %d: %w", id, err)
	}
	return nil
}

// My возвращает резервирования текущего пользователя.
func (s *ReservationService) My(ctx context.Context) ([]model.Reservation, error) {
	var reservations []model.Reservation
	if err := s.gw.GetJSON(ctx, "/api/reservations/my", &reservations); err != nil {
		return nil, fmt.Errorf("мои резервирования: %w", err)
	}
	return reservations, nil
}
