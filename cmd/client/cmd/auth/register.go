package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"salesync/cmd/client/cmd/types"
	"salesync/cmd/client/cmd/ui"
)

var RegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Зарегистрировать нового пользователя",
	Long: `Регистрация нового пользователя на сервере синхронизации.

После регистрации данные можно синхронизировать между устройствами.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		ui.Title("Регистрация нового пользователя")

		login, err := readLogin("Логин: ")
		if err != nil {
			return err
		}
		password, err := readPassword("Пароль: ")
		if err != nil {
			return err
		}
		passwordConfirm, err := readPassword("Повторите пароль: ")
		if err != nil {
			return err
		}

		if password != passwordConfirm {
			return fmt.Errorf("пароли не совпадают")
		}
		if len(password) < 8 {
			return fmt.Errorf("пароль должен содержать минимум 8 символов")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		if err := app.Register(ctx, login, password); err != nil {
			return err
		}

		ui.Success("Регистрация успешно завершена")
		ui.Hint("Теперь войдите в систему: salesync auth login")
		return nil
	},
}
