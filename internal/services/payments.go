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

// PaymentService — оплата штрафов за просрочку.
// Источник истины по суммам — сервер (fee_applied / payment records);
// клиентский пакет fees даёт только живую оценку для отображения.
type PaymentService struct {
	gw     *api.Client
	logger *slog.Logger
}

// NewPaymentService создаёт сервис платежей.
func NewPaymentService(gw *api.Client, logger *slog.Logger) *PaymentService {
	return &PaymentService{
		gw:     gw,
		logger: logger.With(slog.String("component", "payment_service")),
	}
}

// Unpaid возвращает неоплаченные штрафы текущего пользователя.
func (s *PaymentService) Unpaid(ctx context.Context) ([]model.BorrowWithPayment, error) {
	return s.list(ctx, "/api/payments/unpaid")
}

// Summary возвращает сводку по штрафам текущего пользователя.
func (s *PaymentService) Summary(ctx context.Context) (*model.PaymentSummary, error) {
	return s.summary(ctx, "/api/payments/summary")
}

// History возвращает платёжную историю текущего пользователя.
// statusFilter: "paid", "unpaid" или "" — все записи.
func (s *PaymentService) History(ctx context.Context, statusFilter string) ([]model.BorrowWithPayment, error) {
	path := "/api/payments/history"
	if statusFilter != "" {
		path += "?status_filter=" + url.QueryEscape(statusFilter)
	}
	return s.list(ctx, path)
}

// AllUnpaid возвращает неоплаченные штрафы всех пользователей
// (операция библиотекаря).
func (s *PaymentService) AllUnpaid(ctx context.Context) ([]model.BorrowWithPayment, error) {
	return s.list(ctx, "/api/payments/all-unpaid")
}

// AllSummary возвращает сводку по штрафам всех пользователей
// (операция библиотекаря).
func (s *PaymentService) AllSummary(ctx context.Context) (*model.PaymentSummary, error) {
	return s.summary(ctx, "/api/payments/all-summary")
}

// AllHistory возвращает платёжную историю всех пользователей
// (операция библиотекаря). limit <= 0 — серверное значение по умолчанию.
func (s *PaymentService) AllHistory(ctx context.Context, statusFilter string, limit int) ([]model.BorrowWithPayment, error) {
	q := url.Values{}
	if statusFilter != "" {
		q.Set("status_filter", statusFilter)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/api/payments/all-history"
	if enc := q.Encode(); enc != "" {
		path += "?" + enc
	}
	return s.list(ctx, path)
}

// Pay оплачивает штраф по записи выдачи. Оплачивается ровно
// серверная fee_applied — сумма в запросе не передаётся.
func (s *PaymentService) Pay(ctx context.Context, borrowID int64) (*model.BorrowWithPayment, error) {
	var result model.BorrowWithPayment
	err := s.gw.PostJSON(ctx, fmt.Sprintf("/api/payments/pay/%d", borrowID), nil, &result)
	if err != nil {
		return nil, fmt.Errorf("оплата штрафа по выдаче %d: %w", borrowID, err)
	}
	s.logger.Info("штраф оплачен",
		slog.Int64("borrow_id", borrowID),
		slog.Float64("fee_paid", result.FeePaid),
	)
	return &result, nil
}

func (s *PaymentService) list(ctx context.Context, path string) ([]model.BorrowWithPayment, error) {
	var items []model.BorrowWithPayment
	if err := s.gw.GetJSON(ctx, path, &items); err != nil {
		return nil, fmt.Errorf("платежи %s: %w", path, err)
	}
	return items, nil
}

func (s *PaymentService) summary(ctx context.Context, path string) (*model.PaymentSummary, error) {
	var summary model.PaymentSummary
	if err := s.gw.GetJSON(ctx, path, &summary); err != nil {
		return nil, fmt.Errorf("сводка платежей %s: %w", path, err)
	}
	return &summary, nil
}
