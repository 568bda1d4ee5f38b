package mockapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// httpRequestsTotal — счётчик обработанных HTTP-запросов mock-сервера.
var httpRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "lms_mockapi_http_requests_total",
		Help: "Общее количество HTTP-запросов, обработанных mock-сервером",
	},
	[]string{"method", "status"},
)

// Handler — HTTP-обработчики mock-сервера LMS.
type Handler struct {
	store    *Store
	hub      *Hub
	jwtKey   []byte
	coverDir string
	logger   *slog.Logger
}

// NewHandler создаёт обработчики поверх состояния store.
// jwtKey — ключ подписи HS256; coverDir — каталог файлов обложек
// (сервится по /static/covers/).
func NewHandler(store *Store, hub *Hub, jwtKey []byte, coverDir string, logger *slog.Logger) *Handler {
	return &Handler{
		store:    store,
		hub:      hub,
		jwtKey:   jwtKey,
		coverDir: coverDir,
		logger:   logger.With(slog.String("component", "mockapi")),
	}
}

// Router собирает chi-маршрутизатор со всеми endpoints.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(h.loggingMiddleware)

	r.Handle("/metrics", promhttp.Handler())

	// Публичные endpoints
	r.Post("/api/auth/login", h.handleLogin)
	r.Post("/api/auth/register", h.handleRegister)
	r.Get("/api/books/", h.handleBooksList)
	r.Get("/api/books/categories", h.handleCategories)
	r.Get("/api/books/{id}", h.handleBookGet)

	if h.coverDir != "" {
		fs := http.StripPrefix("/static/covers/", http.FileServer(http.Dir(h.coverDir)))
		r.Get("/static/covers/*", fs.ServeHTTP)
	}

	// Авторизованные endpoints
	r.Group(func(r chi.Router) {
		r.Use(h.authMiddleware)

		r.Get("/api/auth/me", h.handleMe)
		r.Post("/api/auth/set-cookie", h.handleSetCookie)

		r.Post("/api/borrows/", h.handleBorrowCreate)
		r.Post("/api/borrows/{id}/return", h.handleBorrowReturn)
		r.Get("/api/borrows/my", h.handleBorrowsMy)

		r.Post("/api/reservations/", h.handleReservationCreate)
		r.Get("/api/reservations/", h.handleReservationsList)
		r.Get("/api/reservations/my", h.handleReservationsMy)
		r.Delete("/api/reservations/{id}", h.handleReservationCancel)

		r.Get("/api/payments/unpaid", h.handlePaymentsUnpaid)
		r.Get("/api/payments/summary", h.handlePaymentsSummary)
		r.Get("/api/payments/history", h.handlePaymentsHistory)
		r.Post("/api/payments/pay/{id}", h.handlePaymentPay)

		r.Get("/api/notifications/", h.handleNotificationsList)
		r.Post("/api/notifications/mark-read", h.handleNotificationRead)
		r.Get("/api/notifications/stream", h.handleNotificationsStream)

		// Операции библиотекаря
		r.Group(func(r chi.Router) {
			r.Use(h.requireLibrarian)

			r.Post("/api/books/", h.handleBookCreate)
			r.Put("/api/books/{id}", h.handleBookUpdate)
			r.Delete("/api/books/{isbn}", h.handleBookDelete)
			r.Post("/api/books/{id}/cover", h.handleBookCover)

			r.Get("/api/borrows/", h.handleBorrowsAll)
			r.Get("/api/borrows/overdue", h.handleBorrowsOverdue)

			r.Get("/api/payments/all-unpaid", h.handlePaymentsAllUnpaid)
			r.Get("/api/payments/all-summary", h.handlePaymentsAllSummary)
			r.Get("/api/payments/all-history", h.handlePaymentsAllHistory)

			r.Get("/api/users/", h.handleUsersList)
			r.Post("/api/users/", h.handleUserCreate)
			r.Delete("/api/users/{id}", h.handleUserDelete)
		})
	})

	return r
}

// loggingMiddleware логирует каждый запрос и пишет метрики.
func (h *Handler) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		httpRequestsTotal.WithLabelValues(r.Method, strconv.Itoa(ww.Status())).Inc()
		h.logger.Debug("запрос обработан",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("duration", time.Since(started)),
		)
	})
}

// --- Вспомогательные функции ---

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError записывает ошибку в формате FastAPI: {"detail": "..."}.
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// decodeBody декодирует JSON-тело запроса; false — ответ уже записан.
func decodeBody(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// pathID извлекает числовой {id} из пути; false — ответ уже записан.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return id, true
}
