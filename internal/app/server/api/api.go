// Package api собирает HTTP API сервера синхронизации.
//
//	GET  /health          # Проверка доступности (публичный)
//	POST /auth/register   # Регистрация (публичный)
//	POST /auth/login      # Логин (публичный)
//	GET  /sync/all        # Полный датасет пользователя (auth)
//	POST /sync/all        # Загрузка сущностей устройства (auth)
package api

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/exp/slog"

	healthAPI "salesync/internal/app/server/api/http/health"
	"salesync/internal/app/server/api/http/middleware"
	"salesync/internal/app/server/api/http/middleware/auth"
	"salesync/internal/app/server/api/http/middleware/logger"
	syncAPI "salesync/internal/app/server/api/http/sync"
	userAPI "salesync/internal/app/server/api/http/user"
	"salesync/internal/domain/dataset"
	"salesync/internal/domain/session"
	"salesync/internal/domain/user"
)

// Deps хранилища и сервис сессий, из которых собираются обработчики
type Deps struct {
	Users    user.Repository
	Datasets dataset.Repository
	Sessions session.Servicer
	// Storage проверяется на /health; nil для хранилища в памяти
	Storage healthAPI.Pinger
}

type Handlers struct {
	Health *healthAPI.Handler
	User   *userAPI.Handler
	Sync   *syncAPI.Handler
}

// New создает *chi.Mux с ВСЕМИ операциями через huma.Register
func New(deps Deps, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()
	mux.Use(chimw.Recoverer)

	config := huma.DefaultConfig("Salesync API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {Type: "http", Scheme: "bearer"},
	}
	// без ссылки $schema в телах ответов
	config.CreateHooks = nil

	API := humachi.New(mux, config)

	h := handlers(API, deps, log)
	h.Health.SetupRoutes(API)
	h.User.SetupRoutes(API)
	h.Sync.SetupRoutes(API)

	return mux
}

func handlers(api huma.API, deps Deps, log *slog.Logger) *Handlers {
	authMW := auth.New(api, deps.Sessions, log)
	loggerMW := logger.New(log)
	middlewares := middleware.NewContainer()

	middlewares.Add(loggerMW.Middleware())
	healthHandler := healthAPI.NewHandler(deps.Storage, log, middlewares.GetAllAndClear())

	userService := user.NewService(deps.Users, user.NewPasswordValidator(), log)
	middlewares.Add(loggerMW.Middleware())
	userHandler := userAPI.NewHandler(userService, deps.Sessions, log, middlewares.GetAllAndClear())

	datasetService := dataset.NewService(deps.Datasets, log)
	middlewares.Add(loggerMW.Middleware())
	middlewares.Add(authMW.Middleware())
	syncHandler := syncAPI.NewHandler(datasetService, log, middlewares.GetAllAndClear())

	return &Handlers{
		Health: healthHandler,
		User:   userHandler,
		Sync:   syncHandler,
	}
}
