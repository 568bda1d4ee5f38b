package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bigkaa/lms-client/internal/domain/model"
	"github.com/bigkaa/lms-client/internal/services"
)

func newUsersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Управление пользователями (библиотекарь)",
	}
	cmd.AddCommand(
		newUsersListCmd(a),
		newUsersAddCmd(a),
		newUsersDeleteCmd(a),
	)
	return cmd
}

func newUsersListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Список пользователей",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := a.users.List(cmd.Context())
			if err != nil {
				return err
			}

			w := table()
			fmt.Fprintln(w, "ID\tИМЯ\tПОЛНОЕ ИМЯ\tРОЛЬ\tАКТИВЕН")
			for _, u := range users {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%t\n",
					u.ID, u.Username, u.FullName, u.Role, u.IsActive)
			}
			return w.Flush()
		},
	}
}

func newUsersAddCmd(a *app) *cobra.Command {
	var (
		fullName string
		role     string
	)

	cmd := &cobra.Command{
		Use:   "add <username>",
		Short: "Создать пользователя",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := promptPassword("Пароль: ")
			if err != nil {
				return err
			}

			user, err := a.users.Create(cmd.Context(), services.RegisterRequest{
				Username: args[0],
				Password: password,
				FullName: fullName,
				Role:     role,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Пользователь %s (%s) создан, id %d\n", user.Username, user.Role, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&fullName, "full-name", "", "полное имя")
	cmd.Flags().StringVar(&role, "role", model.RoleStudent, "роль: student, faculty, librarian, admin")
	cmd.MarkFlagRequired("full-name")
	return cmd
}

func newUsersDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Удалить пользователя",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.users.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Printf("Пользователь %d удалён\n", id)
			return nil
		},
	}
}
