package health

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

// Pinger проверяет доступность хранилища сервера
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc позволяет передать обычную функцию как Pinger
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// NopPinger для хранилища в памяти, которое всегда доступно
var NopPinger = PingerFunc(func(context.Context) error { return nil })

type Handler struct {
	storage    Pinger
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(storage Pinger, log *slog.Logger, middleware huma.Middlewares) *Handler {
	if storage == nil {
		storage = NopPinger
	}
	return &Handler{
		storage:    storage,
		log:        log.With("component", "health"),
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.healthCheckOp(), h.healthCheck)
}

// healthCheck отвечает 503, если хранилище не отвечает: синхронизация с
// таким сервером все равно закончится ошибкой
func (h *Handler) healthCheck(ctx context.Context, _ *Input) (*Output, error) {
	if err := h.storage.Ping(ctx); err != nil {
		h.log.Error("storage is unreachable", "error", err)
		return nil, huma.Error503ServiceUnavailable("storage unavailable")
	}

	return &Output{Body: Response{Status: StatusOK}}, nil
}
