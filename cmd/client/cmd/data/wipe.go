package data

import (
	"fmt"

	"github.com/spf13/cobra"

	"salesync/cmd/client/cmd/types"
	"salesync/cmd/client/cmd/ui"
)

var wipeConfirmed bool

var WipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Удалить все локальные данные",
	Long: `Удаляет все сущности и связи с сервером на этом устройстве.
Данные на сервере не затрагиваются и вернутся при следующей загрузке.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !wipeConfirmed {
			return fmt.Errorf("подтвердите удаление флагом --yes")
		}
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		if err := app.Wipe(cmd.Context()); err != nil {
			return err
		}
		ui.Success("Локальные данные удалены")
		return nil
	},
}

func init() {
	WipeCmd.Flags().BoolVar(&wipeConfirmed, "yes", false, "подтвердить удаление")
}
