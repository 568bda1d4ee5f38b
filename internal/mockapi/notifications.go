package mockapi

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bigkaa/lms-client/internal/domain/model"
)

// pingInterval — интервал keepalive-комментариев SSE-потока.
const pingInterval = 15 * time.Second

// notify сохраняет уведомление и рассылает его живым соединениям.
func (h *Handler) notify(n model.Notification) {
	n = h.store.AddNotification(n)
	h.hub.Publish(n)
	h.logger.Debug("уведомление отправлено",
		slog.Int64("id", n.ID),
		slog.String("type", n.Type),
		slog.Int64("user_id", n.UserID),
	)
}

// handleNotificationsList — GET /api/notifications/ (непрочитанные).
func (h *Handler) handleNotificationsList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.UnreadNotifications(userFrom(r).ID))
}

// handleNotificationRead — POST /api/notifications/mark-read, тело {"id": N}.
// Чужое уведомление отметить нельзя.
func (h *Handler) handleNotificationRead(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID int64 `json:"id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.store.MarkNotificationRead(req.ID, userFrom(r).ID); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleNotificationsStream — GET /api/notifications/stream (SSE).
// Формат кадра: data: {json}\n\n; keepalive-комментарии ": ping".
// Graceful disconnect при закрытии клиентом соединения (context cancel).
func (h *Handler) handleNotificationsStream(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	// ResponseController находит http.Flusher сквозь обёртки middleware
	rc := http.NewResponseController(w)
	if err := rc.Flush(); err != nil {
		http.Error(w, "SSE не поддерживается", http.StatusInternalServerError)
		return
	}

	events, unsubscribe := h.hub.Subscribe(user.ID)
	defer unsubscribe()

	h.logger.Debug("SSE клиент подключён",
		slog.String("username", user.Username),
		slog.String("remote_addr", r.RemoteAddr),
	)

	fmt.Fprint(w, ": connected\n\n")
	_ = rc.Flush()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			h.logger.Debug("SSE клиент отключён",
				slog.String("username", user.Username),
			)
			return
		case <-ticker.C:
			fmt.Fprint(w, ": ping\n\n")
			_ = rc.Flush()
		case n := <-events:
			data, err := json.Marshal(n)
			if err != nil {
				h.logger.Error("Ошибка сериализации уведомления", slog.String("error", err.Error()))
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			_ = rc.Flush()
		}
	}
}
