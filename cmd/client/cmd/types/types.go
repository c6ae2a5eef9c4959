// Package types общие для команд ключи контекста.
package types

import (
	"fmt"

	"github.com/spf13/cobra"

	"salesync/internal/app/client"
)

type contextKey string

const (
	ClientAppKey  contextKey = "app"
	JSONOutputKey contextKey = "json"
)

// App достает приложение, созданное в PersistentPreRunE корневой команды
func App(cmd *cobra.Command) (*client.App, error) {
	app, ok := cmd.Context().Value(ClientAppKey).(*client.App)
	if !ok || app == nil {
		return nil, fmt.Errorf("приложение не инициализировано")
	}
	return app, nil
}

// JSONOutput включен ли вывод в формате JSON (--json)
func JSONOutput(cmd *cobra.Command) bool {
	on, _ := cmd.Context().Value(JSONOutputKey).(bool)
	return on
}
