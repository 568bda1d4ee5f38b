package mockapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/bigkaa/lms-client/internal/domain/model"
)

// handleBorrowCreate — POST /api/borrows/.
func (h *Handler) handleBorrowCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BookID int64 `json:"book_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	borrow, err := h.store.CreateBorrow(userFrom(r).ID, req.BookID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, borrow)
}

// handleBorrowReturn — POST /api/borrows/{id}/return.
// Сервер финализирует fee_applied; если книга была в очереди —
// следующему резервисту уходит уведомление "available".
func (h *Handler) handleBorrowReturn(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	user := userFrom(r)
	borrow, next, err := h.store.ReturnBorrow(id, user.ID, user.IsLibrarian())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if next != nil {
		h.notify(model.Notification{
			Type:      model.NotificationTypeAvailable,
			UserID:    next.UserID,
			Username:  next.Username,
			FullName:  next.FullName,
			BookID:    borrow.BookID,
			BookTitle: borrow.BookTitle,
		})
	}

	writeJSON(w, http.StatusOK, borrow)
}

// handleBorrowsMy — GET /api/borrows/my?history=.
// Без history (или history=false) — только книги на руках.
func (h *Handler) handleBorrowsMy(w http.ResponseWriter, r *http.Request) {
	history := r.URL.Query().Get("history") == "true"
	writeJSON(w, http.StatusOK, h.store.BorrowsByUser(userFrom(r).ID, history))
}

// handleBorrowsAll — GET /api/borrows/ (библиотекарь).
func (h *Handler) handleBorrowsAll(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.AllBorrows(false))
}

// handleBorrowsOverdue — GET /api/borrows/overdue (библиотекарь).
func (h *Handler) handleBorrowsOverdue(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.AllBorrows(true))
}

// --- Резервирования ---

// handleReservationCreate — POST /api/reservations/.
func (h *Handler) handleReservationCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BookID int64 `json:"book_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	reservation, err := h.store.CreateReservation(userFrom(r).ID, req.BookID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, reservation)
}

// handleReservationsList — GET /api/reservations/?book_id&page&page_size.
func (h *Handler) handleReservationsList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := queryInt(q.Get("page"), 1)
	pageSize := queryInt(q.Get("page_size"), 20)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	bookID, _ := strconv.ParseInt(q.Get("book_id"), 10, 64)

	writeJSON(w, http.StatusOK, h.store.Reservations(bookID, page, pageSize))
}

// handleReservationCancel — DELETE /api/reservations/{id}.
// Отменить чужое резервирование может только библиотекарь.
func (h *Handler) handleReservationCancel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	user := userFrom(r)
	if err := h.store.CancelReservation(id, user.ID, user.IsLibrarian()); err != nil {
		if errors.Is(err, errReservationForbidden) {
			writeError(w, http.StatusForbidden, "Permission denied")
			return
		}
		writeError(w, http.StatusNotFound, "Reservation not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// handleReservationsMy — GET /api/reservations/my.
func (h *Handler) handleReservationsMy(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.ReservationsByUser(userFrom(r).ID))
}

// --- Платежи ---

// handlePaymentsUnpaid — GET /api/payments/unpaid.
func (h *Handler) handlePaymentsUnpaid(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.PaymentsList(userFrom(r).ID, model.PaymentStatusUnpaid))
}

// handlePaymentsSummary — GET /api/payments/summary.
func (h *Handler) handlePaymentsSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.PaymentsSummary(userFrom(r).ID))
}

// handlePaymentsHistory — GET /api/payments/history?status_filter=.
// Без фильтра возвращаются все платёжные записи пользователя.
func (h *Handler) handlePaymentsHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.PaymentsList(userFrom(r).ID, r.URL.Query().Get("status_filter")))
}

// handlePaymentsAllUnpaid — GET /api/payments/all-unpaid (библиотекарь).
func (h *Handler) handlePaymentsAllUnpaid(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.PaymentsList(0, model.PaymentStatusUnpaid))
}

// handlePaymentsAllSummary — GET /api/payments/all-summary (библиотекарь).
func (h *Handler) handlePaymentsAllSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.PaymentsSummary(0))
}

// handlePaymentsAllHistory — GET /api/payments/all-history?status_filter=&limit=
// (библиотекарь).
func (h *Handler) handlePaymentsAllHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items := h.store.PaymentsList(0, q.Get("status_filter"))
	if limit := queryInt(q.Get("limit"), 100); limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	writeJSON(w, http.StatusOK, items)
}

// handlePaymentPay — POST /api/payments/pay/{id}.
func (h *Handler) handlePaymentPay(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	user := userFrom(r)
	result, err := h.store.PayFee(id, user.ID, user.IsLibrarian())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// --- Пользователи ---

// handleUsersList — GET /api/users/ (библиотекарь).
func (h *Handler) handleUsersList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Users())
}

// handleUserCreate — POST /api/users/ (библиотекарь).
func (h *Handler) handleUserCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
		Role     string `json:"role"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Role == "" {
		req.Role = model.RoleStudent
	}

	user, err := h.store.CreateUser(req.Username, req.Password, req.FullName, req.Role)
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// handleUserDelete — DELETE /api/users/{id} (библиотекарь).
func (h *Handler) handleUserDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if !h.store.DeleteUser(id) {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// queryInt разбирает целочисленный query-параметр с fallback.
func queryInt(val string, def int) int {
	if val == "" {
		return def
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return n
}
