package auth

import (
	"github.com/spf13/cobra"

	"salesync/cmd/client/cmd/types"
	"salesync/cmd/client/cmd/ui"
)

var LogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Выйти из системы",
	Long:  `Удаляет сохраненный токен. Локальные данные остаются на устройстве.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		if err := app.Logout(); err != nil {
			return err
		}
		ui.Success("Выход выполнен")
		return nil
	},
}
