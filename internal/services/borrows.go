package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bigkaa/lms-client/internal/api"
	"github.com/bigkaa/lms-client/internal/domain/model"
)

// BorrowService — операции выдачи и возврата книг.
type BorrowService struct {
	gw     *api.Client
	logger *slog.Logger
}

// NewBorrowService создаёт сервис выдач.
func NewBorrowService(gw *api.Client, logger *slog.Logger) *BorrowService {
	return &BorrowService{
		gw:     gw,
		logger: logger.With(slog.String("component", "borrow_service")),
	}
}

// Borrow оформляет выдачу книги текущему пользователю.
// Срок возврата назначает сервер.
func (s *BorrowService) Borrow(ctx context.Context, bookID int64) (*model.Borrow, error) {
	var borrow model.Borrow
	err := s.gw.PostJSON(ctx, "/api/borrows/", map[string]int64{"book_id": bookID}, &borrow)
	if err != nil {
		return nil, fmt.Errorf("выдача книги %d: %w", bookID, err)
	}
	return &borrow, nil
}

// Return возвращает книгу. Сервер ставит returned_at и финализирует
// fee_applied; с этого момента запись неизменна.
func (s *BorrowService) Return(ctx context.Context, borrowID int64) (*model.Borrow, error) {
	var borrow model.Borrow
	err := s.gw.PostJSON(ctx, fmt.Sprintf("/api/borrows/%d/return", borrowID), nil, &borrow)
	if err != nil {
		return nil, fmt.Errorf("возврат по выдаче %d: %w", borrowID, err)
	}
	return &borrow, nil
}

// My возвращает выдачи текущего пользователя.
// history=true включает в ответ возвращённые книги.
func (s *BorrowService) My(ctx context.Context, history bool) ([]model.Borrow, error) {
	path := "/api/borrows/my"
	if history {
		path += "?history=true"
	}
	var borrows []model.Borrow
	if err := s.gw.GetJSON(ctx, path, &borrows); err != nil {
		return nil, fmt.Errorf("мои выдачи: %w", err)
	}
	return borrows, nil
}

// All возвращает все выдачи (операция библиотекаря).
func (s *BorrowService) All(ctx context.Context) ([]model.Borrow, error) {
	var borrows []model.Borrow
	if err := s.gw.GetJSON(ctx, "/api/borrows/", &borrows); err != nil {
		return nil, fmt.Errorf("все выдачи: %w", err)
	}
	return borrows, nil
}

// Overdue возвращает просроченные невозвращённые выдачи
// (операция библиотекаря).
func (s *BorrowService) Overdue(ctx context.Context) ([]model.Borrow, error) {
	var borrows []model.Borrow
	if err := s.gw.GetJSON(ctx, "/api/borrows/overdue", &borrows); err != nil {
		return nil, fmt.Errorf("просроченные выдачи: %w", err)
	}
	return borrows, nil
}
