package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
)

// MockAPIConfig — параметры mock backend (cmd/lms-mockapi).
type MockAPIConfig struct {
	// Addr — адрес прослушивания (LMS_MOCKAPI_ADDR)
	Addr string
	// JWTKey — ключ подписи HS256 (LMS_MOCKAPI_JWT_KEY)
	JWTKey string
	// CoverDir — каталог файлов обложек (LMS_MOCKAPI_COVER_DIR)
	CoverDir string
	// OverdueInterval — период фоновой проверки просрочек
	OverdueInterval time.Duration
	// Seed — наполнять ли состояние демонстрационными данными
	Seed bool

	// Логирование — те же переменные, что у клиента
	LogLevel  slog.Level
	LogFormat string
}

// LoadMockAPI загружает конфигурацию mock backend из переменных окружения.
func LoadMockAPI() (*MockAPIConfig, error) {
	_ = godotenv.Load()

	cfg := &MockAPIConfig{}
	var err error

	// LMS_MOCKAPI_ADDR — адрес прослушивания (по умолчанию :8000)
	cfg.Addr = getEnvDefault("LMS_MOCKAPI_ADDR", ":8000")

	// LMS_MOCKAPI_JWT_KEY — ключ подписи токенов.
	// Дефолт допустим: сервер предназначен только для локальной разработки.
	cfg.JWTKey = getEnvDefault("LMS_MOCKAPI_JWT_KEY", "lms-mockapi-dev-key")

	// LMS_MOCKAPI_COVER_DIR — каталог обложек (по умолчанию ./covers)
	cfg.CoverDir = getEnvDefault("LMS_MOCKAPI_COVER_DIR", "covers")

	// LMS_MOCKAPI_OVERDUE_INTERVAL — период проверки просрочек (по умолчанию 1m)
	cfg.OverdueInterval, err = getEnvDuration("LMS_MOCKAPI_OVERDUE_INTERVAL", time.Minute)
	if err != nil {
		return nil, fmt.Errorf("LMS_MOCKAPI_OVERDUE_INTERVAL: %w", err)
	}

	// LMS_MOCKAPI_SEED — демонстрационные данные (по умолчанию включены)
	cfg.Seed = getEnvDefault("LMS_MOCKAPI_SEED", "true") == "true"

	cfg.LogLevel, err = parseLogLevel(getEnvDefault("LMS_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("LMS_LOG_LEVEL: %w", err)
	}
	cfg.LogFormat = getEnvDefault("LMS_LOG_FORMAT", "text")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("LMS_LOG_FORMAT: недопустимый формат %q, допустимые: json, text", cfg.LogFormat)
	}

	return cfg, nil
}

// SetupMockAPILogger настраивает логгер mock backend.
func SetupMockAPILogger(cfg *MockAPIConfig) *slog.Logger {
	return buildLogger(cfg.LogLevel, cfg.LogFormat)
}
