// main.go — точка входа mock backend LMS.
// In-memory реализация REST-контракта для локальной разработки клиента:
// аутентификация, каталог, выдачи, резервирования, платежи, SSE-поток
// уведомлений, Prometheus-метрики.
package main

import (
	"context"
	"log"
	"log/slog"

	"github.com/bigkaa/lms-client/internal/config"
	"github.com/bigkaa/lms-client/internal/mockapi"
	"github.com/bigkaa/lms-client/internal/server"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.LoadMockAPI()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	// 2. Настройка логгера
	logger := config.SetupMockAPILogger(cfg)
	logger.Info("LMS mock backend запускается",
		slog.String("version", config.Version),
		slog.String("addr", cfg.Addr),
	)

	// 3. In-memory состояние (опционально с демо-данными)
	store := mockapi.NewStore()
	if cfg.Seed {
		if err := store.Seed(); err != nil {
			log.Fatalf("Ошибка наполнения демо-данными: %v", err)
		}
		logger.Info("Демонстрационные данные загружены",
			slog.String("librarian", "librarian / Librarian-Pass1!"),
			slog.String("student", "student / Student-Pass1!"),
		)
	}

	// 4. Обработчики и hub живых уведомлений
	hub := mockapi.NewHub()
	handler := mockapi.NewHandler(store, hub, []byte(cfg.JWTKey), cfg.CoverDir, logger)

	// 5. Фоновый генератор overdue-уведомлений
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	checker := mockapi.NewOverdueChecker(handler, cfg.OverdueInterval, logger)
	go checker.Run(ctx)

	// 6. Запуск сервера (блокирующий вызов с graceful shutdown)
	srv := server.New(cfg.Addr, handler.Router(), logger)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		log.Fatalf("Сервер завершился с ошибкой: %v", err)
	}

	logger.Info("LMS mock backend остановлен")
}
