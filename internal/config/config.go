// Пакет config — загрузка и валидация конфигурации LMS Client
// из переменных окружения (с опциональным .env файлом).
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации LMS Client.
type Config struct {
	// --- Backend ---

	// APIURL — базовый URL REST backend (LMS_API_URL).
	// Все относительные пути статики (обложки) резолвятся относительно него.
	APIURL string
	// HTTPTimeout — таймаут обычных HTTP-запросов
	HTTPTimeout time.Duration

	// --- Логирование ---

	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- Сессия ---

	// StateFile — путь к browser-scoped файлу состояния
	// (TokenMap, known_users; общий для всех процессов клиента)
	StateFile string

	// --- Уведомления ---

	// SSERetry — пауза перед переподключением SSE-потока
	SSERetry time.Duration
	// NotifyDedupSize — размер dedup-множества виденных id
	NotifyDedupSize int

	// --- Кэш каталога ---

	// CacheSize — максимальное количество записей в LRU-кэше книг
	CacheSize int
	// CacheTTL — время жизни записи кэша
	CacheTTL time.Duration
}

// Load загружает конфигурацию из переменных окружения.
// Если в рабочем каталоге есть .env — переменные из него подхватываются
// (без перекрытия уже заданных в окружении).
func Load() (*Config, error) {
	// .env — best effort: отсутствие файла не ошибка
	_ = godotenv.Load()

	cfg := &Config{}
	var err error

	// --- Backend ---

	// LMS_API_URL — базовый URL backend (по умолчанию локальный dev-сервер)
	cfg.APIURL = strings.TrimRight(getEnvDefault("LMS_API_URL", "http://127.0.0.1:8000"), "/")

	// LMS_HTTP_TIMEOUT — таймаут HTTP-запросов (по умолчанию 30s)
	cfg.HTTPTimeout, err = getEnvDuration("LMS_HTTP_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("LMS_HTTP_TIMEOUT: %w", err)
	}

	// --- Логирование ---

	// LMS_LOG_LEVEL — уровень логирования (по умолчанию info)
	logLevel := getEnvDefault("LMS_LOG_LEVEL", "info")
	cfg.LogLevel, err = parseLogLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("LMS_LOG_LEVEL: %w", err)
	}

	// LMS_LOG_FORMAT — формат логов (по умолчанию text: клиент пишет в терминал)
	cfg.LogFormat = getEnvDefault("LMS_LOG_FORMAT", "text")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("LMS_LOG_FORMAT: недопустимый формат %q, допустимые: json, text", cfg.LogFormat)
	}

	// --- Сессия ---

	// LMS_STATE_FILE — файл browser-scoped состояния
	// (по умолчанию <user config dir>/lms-client/state.json)
	cfg.StateFile = getEnvDefault("LMS_STATE_FILE", defaultStateFile())

	// --- Уведомления ---

	// LMS_SSE_RETRY — пауза переподключения SSE (по умолчанию 3s, как у EventSource)
	cfg.SSERetry, err = getEnvDuration("LMS_SSE_RETRY", 3*time.Second)
	if err != nil {
		return nil, fmt.Errorf("LMS_SSE_RETRY: %w", err)
	}

	// LMS_NOTIFY_DEDUP_SIZE — размер dedup-множества (по умолчанию 1024)
	cfg.NotifyDedupSize, err = getEnvInt("LMS_NOTIFY_DEDUP_SIZE", 1024)
	if err != nil {
		return nil, fmt.Errorf("LMS_NOTIFY_DEDUP_SIZE: %w", err)
	}

	// --- Кэш каталога ---

	// LMS_CACHE_SIZE — размер LRU-кэша книг (по умолчанию 256)
	cfg.CacheSize, err = getEnvInt("LMS_CACHE_SIZE", 256)
	if err != nil {
		return nil, fmt.Errorf("LMS_CACHE_SIZE: %w", err)
	}

	// LMS_CACHE_TTL — TTL кэша книг (по умолчанию 5m)
	cfg.CacheTTL, err = getEnvDuration("LMS_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("LMS_CACHE_TTL: %w", err)
	}

	return cfg, nil
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
// Логи пишутся в stderr, чтобы не смешиваться с выводом CLI-команд.
func SetupLogger(cfg *Config) *slog.Logger {
	return buildLogger(cfg.LogLevel, cfg.LogFormat)
}

// buildLogger собирает slog-логгер и делает его логгером по умолчанию.
func buildLogger(level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// defaultStateFile возвращает путь к файлу состояния по умолчанию.
// Если user config dir недоступен — файл в текущем каталоге
// (session store переживает и это: ошибки хранилища глотаются).
func defaultStateFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".lms-client-state.json"
	}
	return filepath.Join(dir, "lms-client", "state.json")
}

// --- Вспомогательные функции ---

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
