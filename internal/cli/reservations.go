package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newReserveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reserve <book-id>",
		Short: "Встать в очередь на книгу",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			r, err := a.reservations.Create(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Printf("Резервирование создано (id %d). Когда книга освободится, придёт уведомление.\n", r.ID)
			return nil
		},
	}
}

func newUnreserveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "unreserve <reservation-id>",
		Short: "Отменить резервирование",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.reservations.Cancel(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Printf("Резервирование %d отменено\n", id)
			return nil
		},
	}
}

func newReservationsCmd(a *app) *cobra.Command {
	var (
		bookID   int64
		page     int
		pageSize int
		mine     bool
	)

	cmd := &cobra.Command{
		Use:   "reservations",
		Short: "Очередь резервирований",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if mine {
				list, err := a.reservations.My(cmd.Context())
				if err != nil {
					return err
				}
				w := table()
				fmt.Fprintln(w, "ID\tКНИГА\tСОЗДАНО")
				for _, r := range list {
					fmt.Fprintf(w, "%d\t%d\t%s\n", r.ID, r.BookID, r.CreatedAt.Local().Format("2006-01-02 15:04"))
				}
				return w.Flush()
			}

			result, err := a.reservations.List(cmd.Context(), bookID, page, pageSize)
			if err != nil {
				return err
			}

			w := table()
			fmt.Fprintln(w, "ПОЗИЦИЯ\tID\tКНИГА\tЧИТАТЕЛЬ\tСОЗДАНО")
			for i, r := range result.Items {
				// Позиция в очереди — порядковый номер записи
				position := (page-1)*pageSize + i + 1
				name := r.FullName
				if name == "" {
					name = r.Username
				}
				fmt.Fprintf(w, "%d\t%d\t%d\t%s\t%s\n",
					position, r.ID, r.BookID, name, r.CreatedAt.Local().Format("2006-01-02 15:04"))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Printf("Всего в очереди: %d\n", result.Total)
			return nil
		},
	}

	cmd.Flags().Int64Var(&bookID, "book", 0, "только очередь на книгу с этим id")
	cmd.Flags().IntVar(&page, "page", 1, "страница")
	cmd.Flags().IntVar(&pageSize, "page-size", 20, "размер страницы")
	cmd.Flags().BoolVar(&mine, "mine", false, "только мои резервирования")
	return cmd
}
