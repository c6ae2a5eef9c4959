package data

import (
	"fmt"

	"github.com/spf13/cobra"

	"salesync/cmd/client/cmd/types"
	"salesync/cmd/client/cmd/ui"
	"salesync/internal/domain/entity"
)

var (
	saleClientID int64
	saleArticles []string
	salePaid     float64
)

var SaleCmd = &cobra.Command{
	Use:   "sale",
	Short: "Продажи",
}

var SaleAddCmd = &cobra.Command{
	Use:     "add",
	Short:   "Добавить продажу",
	Example: `  salesync sale add --client 1 --article "Savon:3:500" --article "Huile:1:2500" --paye 1000`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		if len(saleArticles) == 0 {
			return fmt.Errorf("нужен хотя бы один --article")
		}

		sale := &entity.Sale{ClientID: saleClientID, MontantPaye: salePaid}
		for _, raw := range saleArticles {
			a, err := parseArticle(raw)
			if err != nil {
				return err
			}
			sale.Articles = append(sale.Articles, a)
			sale.Total += float64(a.Quantite) * a.Prix
		}
		sale.Statut = saleStatus(sale.Total, sale.MontantPaye)

		id, err := app.AddSale(cmd.Context(), sale)
		if err != nil {
			return err
		}
		ui.Success("Продажа #%d сохранена: %.2f (%s)", id, sale.Total, sale.Statut)
		return nil
	},
}

func init() {
	f := SaleAddCmd.Flags()
	f.Int64Var(&saleClientID, "client", 0, "локальный id клиента")
	f.StringArrayVar(&saleArticles, "article", nil, "артикул nom:quantite:prix, можно повторять")
	f.Float64Var(&salePaid, "paye", 0, "оплаченная сумма")
	_ = SaleAddCmd.MarkFlagRequired("client")
}
