package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bigkaa/lms-client/internal/notify"
)

func newNotifyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Уведомления реального времени",
	}
	cmd.AddCommand(
		newNotifyWatchCmd(a),
		newNotifyListCmd(a),
		newNotifyReadCmd(a),
	)
	return cmd
}

// newNotifyWatchCmd — подписка на SSE-поток. Новые события печатаются
// в stdout; счётчик непрочитанных обновляется по шине. Ctrl+C — выход.
func newNotifyWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Следить за потоком уведомлений",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bus := notify.NewBus()
			bell := notify.NewBell(a.gw, bus)
			defer bell.Close()

			// Стартовый снимок непрочитанных
			if err := bell.Refresh(cmd.Context()); err != nil {
				return err
			}
			for _, n := range bell.Unread() {
				fmt.Printf("[непрочитано] %s\n", notify.ToastText(n))
			}

			consumer, err := notify.NewConsumer(a.gw, bus, func(text string) {
				fmt.Printf("[%s] %s\n", time.Now().Format("15:04:05"), text)
			}, a.cfg.SSERetry, a.cfg.NotifyDedupSize, a.logger)
			if err != nil {
				return err
			}

			consumer.Start(cmd.Context())
			defer consumer.Stop()

			fmt.Fprintln(os.Stderr, "Поток уведомлений открыт, Ctrl+C для выхода")

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			select {
			case <-quit:
			case <-cmd.Context().Done():
			}
			return nil
		},
	}
}

func newNotifyListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Непрочитанные уведомления",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bell := notify.NewBell(a.gw, notify.NewBus())
			defer bell.Close()

			if err := bell.Refresh(cmd.Context()); err != nil {
				return err
			}

			unread := bell.Unread()
			if len(unread) == 0 {
				fmt.Println("Непрочитанных уведомлений нет")
				return nil
			}
			for _, n := range unread {
				fmt.Printf("%d\t%s\n", n.ID, notify.ToastText(n))
			}
			return nil
		},
	}
}

func newNotifyReadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "read <id>",
		Short: "Отметить уведомление прочитанным",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			bell := notify.NewBell(a.gw, notify.NewBus())
			defer bell.Close()
			if err := bell.MarkRead(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Printf("Уведомление %d отмечено прочитанным\n", id)
			return nil
		},
	}
}
