package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"salesync/cmd/client/cmd/auth"
	"salesync/cmd/client/cmd/data"
	"salesync/cmd/client/cmd/sync"
	"salesync/cmd/client/cmd/ui"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Проверить настройки клиента",
	Long: `Команда init показывает, где клиент хранит данные, и проверяет
соединение с сервером. Локальное хранилище создается при первом запуске.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ui.Title("Инициализация Salesync")
		ui.Field("Данные", cfg.DataPath)
		ui.Field("Токен", cfg.TokenPath)
		ui.Field("Журнал", cfg.LogFile)
		ui.Field("Сервер", cfg.ServerAddress)
		ui.Line("")

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		if err := app.CheckConnection(ctx); err != nil {
			ui.Warn("Не удалось подключиться к серверу: %v", err)
			ui.Hint("Работа офлайн доступна, синхронизация выполнится позже")
		} else {
			ui.Success("Соединение с сервером установлено")
		}

		ui.Line("")
		ui.Line("Что дальше:")
		ui.Hint("1. Зарегистрируйтесь: salesync auth register")
		ui.Hint("2. Войдите: salesync auth login")
		ui.Hint("3. Добавьте клиента: salesync client add --nom Diop --telephone 770000001")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	rootCmd.AddCommand(auth.AuthCmd)
	auth.AuthCmd.AddCommand(auth.RegisterCmd)
	auth.AuthCmd.AddCommand(auth.LoginCmd)
	auth.AuthCmd.AddCommand(auth.LogoutCmd)

	rootCmd.AddCommand(data.ClientCmd)
	data.ClientCmd.AddCommand(data.ClientAddCmd)
	data.ClientCmd.AddCommand(data.ClientListCmd)
	rootCmd.AddCommand(data.SaleCmd)
	data.SaleCmd.AddCommand(data.SaleAddCmd)
	rootCmd.AddCommand(data.PaymentCmd)
	data.PaymentCmd.AddCommand(data.PaymentAddCmd)
	rootCmd.AddCommand(data.ListCmd)
	rootCmd.AddCommand(data.WipeCmd)

	rootCmd.AddCommand(sync.SyncCmd)
	sync.SyncCmd.AddCommand(sync.PushCmd)
	sync.SyncCmd.AddCommand(sync.PullCmd)
	sync.SyncCmd.AddCommand(sync.FullCmd)
	sync.SyncCmd.AddCommand(sync.StatusCmd)
	sync.SyncCmd.AddCommand(sync.WatchCmd)
}
