// metrics.go — Prometheus-метрики HTTP-клиента.
// Нормализация путей предотвращает взрывной рост кардинальности
// (числовые id в пути заменяются на {id}).
package api

import (
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// httpRequestsTotal — общее количество исходящих HTTP-запросов.
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lmsc_http_requests_total",
			Help: "Общее количество HTTP-запросов LMS Client к backend",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDuration — гистограмма длительности исходящих запросов.
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lmsc_http_request_duration_seconds",
			Help:    "Длительность HTTP-запросов LMS Client в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// observeRequest записывает метрики одного запроса.
// status == 0 — транспортная ошибка до получения ответа.
func observeRequest(method, path string, status int, started time.Time) {
	normalized := normalizePath(path)
	httpRequestsTotal.WithLabelValues(method, normalized, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, normalized).Observe(time.Since(started).Seconds())
}

// normalizePath заменяет числовые сегменты пути на {id}:
// /api/books/42 → /api/books/{id}, /api/borrows/7/return → /api/borrows/{id}/return.
// Query string отбрасывается.
func normalizePath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}

	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if seg == "" {
			continue
		}
		if _, err := strconv.ParseInt(seg, 10, 64); err == nil {
			segments[i] = "{id}"
		}
	}
	return strings.Join(segments, "/")
}
