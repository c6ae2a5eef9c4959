// Package data команды работы с локальными сущностями.
package data

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"salesync/cmd/client/cmd/types"
	"salesync/cmd/client/cmd/ui"
	"salesync/internal/app/client"
	"salesync/internal/domain/entity"
)

// item сущность в выводе list
type item struct {
	LocalID  int64        `json:"local_id"`
	RemoteID string       `json:"remote_id,omitempty"`
	Entity   entity.Local `json:"entity"`
}

func listKind(cmd *cobra.Command, app *client.App, kind entity.Kind) error {
	items, err := app.List(cmd.Context(), kind)
	if err != nil {
		return err
	}

	out := make([]item, 0, len(items))
	for _, e := range items {
		rid, _ := app.RemoteID(cmd.Context(), kind, e.LocalID())
		out = append(out, item{LocalID: e.LocalID(), RemoteID: rid, Entity: e})
	}

	if types.JSONOutput(cmd) {
		return ui.JSON(out)
	}

	ui.Title("%s: %d", kind.Plural(), len(out))
	for _, it := range out {
		body, err := json.Marshal(it.Entity)
		if err != nil {
			return err
		}
		remote := it.RemoteID
		if remote == "" {
			remote = "не синхронизирован"
		}
		ui.Line("#%d [%s] %s", it.LocalID, remote, body)
	}
	return nil
}

// parseArticle разбирает "nom:quantite:prix"
func parseArticle(s string) (entity.Article, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return entity.Article{}, fmt.Errorf("артикул %q: ожидается nom:quantite:prix", s)
	}
	qty, err := strconv.Atoi(parts[1])
	if err != nil || qty <= 0 {
		return entity.Article{}, fmt.Errorf("артикул %q: неверное количество", s)
	}
	price, err := strconv.ParseFloat(parts[2], 64)
	if err != nil || price < 0 {
		return entity.Article{}, fmt.Errorf("артикул %q: неверная цена", s)
	}
	return entity.Article{Nom: strings.TrimSpace(parts[0]), Quantite: qty, Prix: price}, nil
}

// saleStatus статус продажи по сумме и оплате
func saleStatus(total, paid float64) string {
	switch {
	case paid <= 0:
		return "impaye"
	case paid < total:
		return "partiel"
	default:
		return "paye"
	}
}
