package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"

	"salesync/cmd/client/cmd/types"
	"salesync/cmd/client/cmd/ui"
	"salesync/internal/app/client"
	"salesync/internal/app/client/config"
	"salesync/internal/utils/logger"
)

var (
	cfg        *config.Config
	log        *slog.Logger
	logCloser  io.Closer
	app        *client.App
	debug      bool
	jsonOutput bool
	serverURL  string
)

var rootCmd = &cobra.Command{
	Use:   "salesync",
	Short: "Salesync - офлайн-клиент учета продаж",
	Long: `Salesync ведет клиентов, продажи и платежи на устройстве без сети
и синхронизирует их с сервером, когда соединение доступно.

Данные хранятся локально в SQLite. Один и тот же набор данных можно
вести с нескольких устройств одного пользователя.`,
	PersistentPreRunE:  setupApp,
	PersistentPostRunE: shutdownApp,
	SilenceUsage:       true,
	SilenceErrors:      true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.Fail("Ошибка: %v", err)
		if hint := client.Hint(err); hint != "" {
			ui.Hint(hint)
		}
		os.Exit(1)
	}
}

func setupApp(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	// Переопределяем настройки из флагов командной строки
	if serverURL != "" {
		cfg.ServerAddress = serverURL
	}
	level := cfg.LogLevel
	if debug {
		level = "debug"
	}

	// Консоль занята выводом команд, журнал пишется в файл
	log, logCloser = logger.NewFile(cfg.Env, logger.FileOptions{Path: cfg.LogFile, Level: level})

	app, err = client.New(cfg, log)
	if err != nil {
		return fmt.Errorf("ошибка инициализации приложения: %w", err)
	}

	ctx := context.WithValue(cmd.Context(), types.ClientAppKey, app)
	ctx = context.WithValue(ctx, types.JSONOutputKey, jsonOutput)
	cmd.SetContext(ctx)

	return nil
}

func shutdownApp(_ *cobra.Command, _ []string) error {
	var err error
	if app != nil {
		err = app.Shutdown()
	}
	if logCloser != nil {
		_ = logCloser.Close()
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "подробный журнал")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "вывод в формате JSON")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "адрес сервера (host:port)")
}
