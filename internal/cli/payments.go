package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bigkaa/lms-client/internal/domain/model"
)

func newPayCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "pay <borrow-id>",
		Short: "Оплатить штраф по выдаче",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			result, err := a.payments.Pay(cmd.Context(), id)
			if err != nil {
				return err
			}
			if result.Message != "" {
				fmt.Println(result.Message)
			} else {
				fmt.Printf("Оплачено %.2f\n", result.FeePaid)
			}
			return nil
		},
	}
}

func newPaymentsCmd(a *app) *cobra.Command {
	var (
		all, history bool
		status       string
		limit        int
	)

	cmd := &cobra.Command{
		Use:   "payments",
		Short: "Штрафы и история оплат",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var (
				items []model.BorrowWithPayment
				sum   *model.PaymentSummary
				err   error
			)
			switch {
			case all && history:
				items, err = a.payments.AllHistory(ctx, status, limit)
			case all:
				items, err = a.payments.AllUnpaid(ctx)
			case history:
				items, err = a.payments.History(ctx, status)
			default:
				items, err = a.payments.Unpaid(ctx)
			}
			if err != nil {
				return err
			}

			w := table()
			fmt.Fprintln(w, "ВЫДАЧА\tКНИГА\tЧИТАТЕЛЬ\tСУММА\tСТАТУС")
			for _, p := range items {
				name := p.FullName
				if name == "" {
					name = p.Username
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\t%s\n",
					p.ID, p.BookTitle, name, p.FeeApplied, p.PaymentStatus)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if all {
				sum, err = a.payments.AllSummary(ctx)
			} else {
				sum, err = a.payments.Summary(ctx)
			}
			if err != nil {
				return err
			}
			fmt.Printf("Не оплачено: %.2f (%d), оплачено: %.2f (%d)\n",
				sum.TotalUnpaid, sum.CountUnpaid, sum.TotalPaid, sum.CountPaid)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "по всем пользователям (библиотекарь)")
	cmd.Flags().BoolVar(&history, "history", false, "платёжная история вместо задолженности")
	cmd.Flags().StringVar(&status, "status", "", "фильтр истории: paid или unpaid")
	cmd.Flags().IntVar(&limit, "limit", 100, "максимум записей (--all --history)")
	return cmd
}
