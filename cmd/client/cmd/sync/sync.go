package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"salesync/cmd/client/cmd/types"
	"salesync/cmd/client/cmd/ui"
	"salesync/internal/app/client"
)

const timeLayout = "2006-01-02 15:04:05"

var watchInterval time.Duration

var SyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Управление синхронизацией",
	Long: `Синхронизация данных между устройством и сервером.

push отправляет локальные данные, pull загружает данные сервера,
full выполняет загрузку и затем отправку.`,
}

var PushCmd = &cobra.Command{
	Use:   "push",
	Short: "Отправить локальные данные на сервер",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSync(cmd, "Отправка данных", (*client.App).SyncToServer)
	},
}

var PullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Загрузить данные с сервера",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSync(cmd, "Загрузка данных", (*client.App).SyncFromServer)
	},
}

var FullCmd = &cobra.Command{
	Use:   "full",
	Short: "Загрузить, затем отправить",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSync(cmd, "Полная синхронизация", (*client.App).FullSync)
	},
}

var StatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Показать статус синхронизации",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		return showSyncStatus(cmd, app)
	},
}

var WatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Фоновая загрузка с сервера до Ctrl+C",
	Long: `Периодически загружает данные сервера. Интервал берется из
SYNC_INTERVAL_SECONDS или флага --interval.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		unsubscribe := app.Subscribe(func(st client.SyncState) {
			if st.IsSyncing {
				ui.Hint("%s синхронизация...", time.Now().Format(timeLayout))
				return
			}
			if !st.LastSyncTime.IsZero() {
				ui.Hint("%s готово, последняя загрузка %s", time.Now().Format(timeLayout), st.LastSyncTime.Format(timeLayout))
			}
		})
		defer unsubscribe()

		ui.Title("Автосинхронизация")
		ui.Hint("Ctrl+C для остановки")

		if watchInterval > 0 {
			return app.RunWithInterval(cmd.Context(), watchInterval)
		}
		return app.Run(cmd.Context())
	},
}

func runSync(cmd *cobra.Command, title string, fn func(*client.App, context.Context) (*client.SyncResult, error)) error {
	app, err := types.App(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
	defer cancel()

	result, err := fn(app, ctx)
	if err != nil && result == nil {
		return err
	}

	if types.JSONOutput(cmd) {
		if jerr := ui.JSON(result); jerr != nil {
			return jerr
		}
		return err
	}

	ui.Title(title)
	printResult(result)
	if err != nil {
		return fmt.Errorf("синхронизация прервана: %w", err)
	}
	return nil
}

func printResult(result *client.SyncResult) {
	if result.Success {
		ui.Success("Синхронизация завершена за %v", result.Duration.Round(time.Millisecond))
	} else {
		ui.Fail("Синхронизация завершена с ошибками за %v", result.Duration.Round(time.Millisecond))
	}

	ui.Field("Отправлено на сервер", result.Uploaded)
	ui.Field("Получено с сервера", result.Downloaded)
	ui.Field("Добавлено", result.Inserted)
	ui.Field("Обновлено", result.Updated)
	ui.Field("Пропущено", result.Skipped)
	ui.Field("Новых связей", result.MappingsCreated)

	if len(result.Errors) > 0 {
		ui.Warn("Ошибок: %d", len(result.Errors))
		for i, e := range result.Errors {
			if i == 3 {
				ui.Hint("... и еще %d", len(result.Errors)-3)
				break
			}
			if e.Kind != "" {
				ui.Hint("• %s %s #%d: %s", e.Operation, e.Kind, e.LocalID, e.Error)
			} else {
				ui.Hint("• %s: %s", e.Operation, e.Error)
			}
		}
	}
}

func showSyncStatus(cmd *cobra.Command, app *client.App) error {
	stats := app.GetSyncService().GetStats()
	state := app.State()

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()
	online := app.IsOnline(ctx)

	if types.JSONOutput(cmd) {
		return ui.JSON(struct {
			State         client.SyncState `json:"state"`
			Stats         client.SyncStats `json:"stats"`
			Online        bool             `json:"online"`
			Authenticated bool             `json:"authenticated"`
		}{state, stats, online, app.IsAuthenticated()})
	}

	ui.Title("Статус синхронизации")
	ui.Field("Изменений не отправлено", state.PendingChanges)
	if !state.LastSyncTime.IsZero() {
		ui.Field("Последняя синхронизация", state.LastSyncTime.Format(timeLayout))
	}
	ui.Field("Всего синхронизаций", stats.TotalSyncs)
	ui.Field("Отправлено", stats.TotalUploaded)
	ui.Field("Получено", stats.TotalDownloaded)
	ui.Field("Ошибок", stats.TotalErrors)

	if online {
		ui.Success("Сервер доступен")
	} else {
		ui.Fail("Сервер недоступен")
	}
	if app.IsAuthenticated() {
		ui.Success("Вход выполнен")
	} else {
		ui.Fail("Требуется вход: salesync auth login")
	}
	return nil
}

func init() {
	WatchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "интервал автосинхронизации")
}
