package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bigkaa/lms-client/internal/domain/model"
	"github.com/bigkaa/lms-client/internal/fees"
)

func newBorrowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "borrow <book-id>",
		Short: "Взять книгу",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			borrow, err := a.borrows.Borrow(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Printf("Книга выдана, вернуть до %s (выдача %d)\n",
				borrow.DueDate.Local().Format("2006-01-02 15:04"), borrow.ID)
			return nil
		},
	}
}

func newReturnCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "return <borrow-id>",
		Short: "Вернуть книгу",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			borrow, err := a.borrows.Return(cmd.Context(), id)
			if err != nil {
				return err
			}
			if borrow.FeeApplied > 0 {
				fmt.Printf("Книга возвращена, начислен штраф %.2f\n", borrow.FeeApplied)
			} else {
				fmt.Println("Книга возвращена вовремя")
			}
			return nil
		},
	}
}

func newBorrowsCmd(a *app) *cobra.Command {
	var all, overdue, history bool

	cmd := &cobra.Command{
		Use:   "borrows",
		Short: "Список выдач",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				list []model.Borrow
				err  error
			)
			switch {
			case overdue:
				list, err = a.borrows.Overdue(cmd.Context())
			case all:
				list, err = a.borrows.All(cmd.Context())
			default:
				list, err = a.borrows.My(cmd.Context(), history)
			}
			if err != nil {
				return err
			}

			now := time.Now()
			w := table()
			fmt.Fprintln(w, "ID\tКНИГА\tВЫДАНА\tСРОК\tСТАТУС\tШТРАФ")
			for _, b := range list {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%.2f\n",
					b.ID, b.BookTitle,
					b.BorrowedAt.Local().Format("2006-01-02"),
					b.DueDate.Local().Format("2006-01-02"),
					borrowStatus(&b, now),
					fees.DisplayFee(&b, now),
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "все выдачи (библиотекарь)")
	cmd.Flags().BoolVar(&overdue, "overdue", false, "только просроченные (библиотекарь)")
	cmd.Flags().BoolVar(&history, "history", false, "включая возвращённые книги")
	return cmd
}

// borrowStatus — человекочитаемый статус выдачи.
func borrowStatus(b *model.Borrow, now time.Time) string {
	switch {
	case b.ReturnedAt != nil:
		return "возвращена " + b.ReturnedAt.Local().Format("2006-01-02")
	case b.IsOverdue(now):
		return fmt.Sprintf("просрочена (%d ч)", fees.HoursOverdue(b.DueDate, now))
	default:
		return "на руках"
	}
}
