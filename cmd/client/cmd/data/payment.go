package data

import (
	"fmt"

	"github.com/spf13/cobra"

	"salesync/cmd/client/cmd/types"
	"salesync/cmd/client/cmd/ui"
	"salesync/internal/domain/entity"
)

var newPayment entity.Payment

var PaymentCmd = &cobra.Command{
	Use:   "payment",
	Short: "Платежи",
}

var PaymentAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Добавить платеж по продаже",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		if newPayment.Montant <= 0 {
			return fmt.Errorf("сумма платежа должна быть положительной")
		}

		p := newPayment
		id, err := app.AddPayment(cmd.Context(), &p)
		if err != nil {
			return err
		}
		ui.Success("Платеж #%d сохранен", id)
		return nil
	},
}

func init() {
	f := PaymentAddCmd.Flags()
	f.Int64Var(&newPayment.SaleID, "sale", 0, "локальный id продажи")
	f.Float64Var(&newPayment.Montant, "montant", 0, "сумма")
	f.StringVar(&newPayment.Mode, "mode", "especes", "способ оплаты")
	_ = PaymentAddCmd.MarkFlagRequired("sale")
	_ = PaymentAddCmd.MarkFlagRequired("montant")
}
