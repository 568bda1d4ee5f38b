package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/bigkaa/lms-client/internal/services"
)

// newLoginCmd — вход в систему. Пароль запрашивается без эха;
// при недоступном терминале читается из stdin.
func newLoginCmd(a *app) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Вход в систему",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := args[0]

			if password == "" {
				var err error
				password, err = promptPassword("Пароль: ")
				if err != nil {
					return err
				}
			}

			user, err := a.auth.Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}

			name := user.FullName
			if name == "" {
				name = user.Username
			}
			fmt.Printf("Вход выполнен: %s (%s)\n", name, user.Role)
			return nil
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "пароль (небезопасно: виден в истории shell)")
	return cmd
}

// newLogoutCmd — выход. С аргументом — адресный выход конкретного
// пользователя, без — выход активного.
func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout [username]",
		Short: "Выход из системы",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := ""
			if len(args) == 1 {
				username = args[0]
			}
			a.auth.Logout(username)
			fmt.Println("Выход выполнен")
			return nil
		},
	}
}

// newWhoamiCmd — текущий пользователь по токену сессии.
func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Текущий пользователь",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.auth.Me(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("%s (%s), роль: %s\n", user.Username, user.FullName, user.Role)

			if known := a.store.KnownUsers(); len(known) > 1 {
				names := make([]string, 0, len(known))
				for name := range known {
					names = append(names, name)
				}
				fmt.Printf("Известные аккаунты: %s\n", strings.Join(names, ", "))
			}
			return nil
		},
	}
}

// newRegisterCmd — регистрация нового читателя.
func newRegisterCmd(a *app) *cobra.Command {
	var fullName string

	cmd := &cobra.Command{
		Use:   "register <username>",
		Short: "Регистрация нового читателя",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := promptPassword("Пароль: ")
			if err != nil {
				return err
			}
			confirm, err := promptPassword("Повторите пароль: ")
			if err != nil {
				return err
			}
			if password != confirm {
				return fmt.Errorf("пароли не совпадают")
			}

			user, err := a.auth.Register(cmd.Context(), services.RegisterRequest{
				Username: args[0],
				Password: password,
				FullName: fullName,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Пользователь %s зарегистрирован\n", user.Username)
			return nil
		},
	}

	cmd.Flags().StringVar(&fullName, "full-name", "", "полное имя")
	cmd.MarkFlagRequired("full-name")
	return cmd
}

// promptPassword читает пароль без эха (или построчно, если stdin — не терминал).
func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		data, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("чтение пароля: %w", err)
		}
		return string(data), nil
	}

	var line string
	if _, err := fmt.Fscanln(os.Stdin, &line); err != nil {
		return "", fmt.Errorf("чтение пароля: %w", err)
	}
	return line, nil
}
