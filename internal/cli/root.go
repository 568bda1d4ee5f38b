// Пакет cli — командный интерфейс LMS Client (cobra).
// Каждая команда работает через доменные сервисы; сессия хранится в
// файле состояния, поэтому login переживает перезапуск команды.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bigkaa/lms-client/internal/api"
	"github.com/bigkaa/lms-client/internal/config"
	"github.com/bigkaa/lms-client/internal/services"
	"github.com/bigkaa/lms-client/internal/session"
)

// app — собранные зависимости команд.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *session.FileStore
	gw     *api.Client

	auth         *services.AuthService
	books        *services.BookService
	borrows      *services.BorrowService
	reservations *services.ReservationService
	payments     *services.PaymentService
	users        *services.UserService
}

// newApp загружает конфигурацию и собирает сервисы.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("конфигурация: %w", err)
	}
	logger := config.SetupLogger(cfg)

	store := session.New(cfg.StateFile)
	gw, err := api.New(cfg.APIURL, cfg.HTTPTimeout, store, logger)
	if err != nil {
		return nil, err
	}

	cache := services.NewBookCache(cfg.CacheSize, cfg.CacheTTL)

	return &app{
		cfg:          cfg,
		logger:       logger,
		store:        store,
		gw:           gw,
		auth:         services.NewAuthService(gw, store, logger),
		books:        services.NewBookService(gw, cache, logger),
		borrows:      services.NewBorrowService(gw, logger),
		reservations: services.NewReservationService(gw, logger),
		payments:     services.NewPaymentService(gw, logger),
		users:        services.NewUserService(gw, logger),
	}, nil
}

// Execute — точка входа CLI.
func Execute() {
	root := &cobra.Command{
		Use:           "lms-client",
		Short:         "Клиент библиотечной системы LMS",
		Long:          "Клиент библиотечной системы LMS: каталог, выдачи, резервирования, штрафы и уведомления реального времени.",
		Version:       config.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	a := &app{}
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		built, err := newApp()
		if err != nil {
			return err
		}
		*a = *built
		return nil
	}

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newRegisterCmd(a),
		newBooksCmd(a),
		newBorrowCmd(a),
		newReturnCmd(a),
		newBorrowsCmd(a),
		newReserveCmd(a),
		newUnreserveCmd(a),
		newReservationsCmd(a),
		newPayCmd(a),
		newPaymentsCmd(a),
		newUsersCmd(a),
		newNotifyCmd(a),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Ошибка:", err)
		os.Exit(1)
	}
}

// table возвращает tabwriter для табличного вывода в stdout.
func table() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
}
