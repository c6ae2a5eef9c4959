package data

import (
	"github.com/spf13/cobra"

	"salesync/cmd/client/cmd/types"
	"salesync/internal/domain/entity"
)

var ListCmd = &cobra.Command{
	Use:       "list <kind>",
	Short:     "Список локальных сущностей одного вида",
	Long:      `Виды: clients, products, templates, goals, expenses, sales, payments, reminders.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"clients", "products", "templates", "goals", "expenses", "sales", "payments", "reminders"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		kind, err := entity.ParseKind(args[0])
		if err != nil {
			return err
		}
		return listKind(cmd, app, kind)
	},
}
