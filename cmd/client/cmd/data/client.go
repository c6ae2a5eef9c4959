package data

import (
	"github.com/spf13/cobra"

	"salesync/cmd/client/cmd/types"
	"salesync/cmd/client/cmd/ui"
	"salesync/internal/domain/entity"
)

var newClient entity.Client

var ClientCmd = &cobra.Command{
	Use:   "client",
	Short: "Клиенты",
}

var ClientAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Добавить клиента",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		c := newClient
		id, err := app.AddClient(cmd.Context(), &c)
		if err != nil {
			return err
		}
		ui.Success("Клиент #%d сохранен", id)
		return nil
	},
}

var ClientListCmd = &cobra.Command{
	Use:   "list",
	Short: "Список клиентов",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		return listKind(cmd, app, entity.KindClient)
	},
}

func init() {
	f := ClientAddCmd.Flags()
	f.StringVar(&newClient.Prenom, "prenom", "", "имя")
	f.StringVar(&newClient.Nom, "nom", "", "фамилия")
	f.StringVar(&newClient.Telephone, "telephone", "", "телефон")
	f.StringVar(&newClient.Adresse, "adresse", "", "адрес")
	f.StringVar(&newClient.Type, "type", "particulier", "тип клиента")
	_ = ClientAddCmd.MarkFlagRequired("nom")
}
