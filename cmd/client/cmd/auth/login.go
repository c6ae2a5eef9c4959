package auth

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"salesync/cmd/client/cmd/types"
	"salesync/cmd/client/cmd/ui"
)

var pullAfterLogin bool

var LoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Войти в систему",
	Long: `Аутентификация на сервере синхронизации.

После входа токен сохраняется локально для последующих операций.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		ui.Title("Вход в систему")

		login, err := readLogin("Логин: ")
		if err != nil {
			return err
		}
		password, err := readPassword("Пароль: ")
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
		defer cancel()

		if err := app.Login(ctx, login, password); err != nil {
			return err
		}
		ui.Success("Вход выполнен успешно")

		if !pullAfterLogin {
			return nil
		}

		result, err := app.SyncFromServer(ctx)
		switch {
		case err != nil:
			ui.Warn("Ошибка синхронизации: %v", err)
			ui.Hint("Можно продолжить работу офлайн")
		case !result.Success:
			ui.Warn("Синхронизация завершена с ошибками (%d)", len(result.Errors))
		default:
			ui.Success("Получено с сервера: %d", result.Downloaded)
		}
		return nil
	},
}

func init() {
	LoginCmd.Flags().BoolVar(&pullAfterLogin, "pull", true, "загрузить данные с сервера после входа")
}
