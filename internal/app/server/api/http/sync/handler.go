package sync

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"salesync/internal/app/server/api/http/middleware/auth"
	"salesync/internal/domain/dataset"
)

type Handler struct {
	service    dataset.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service dataset.Servicer, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.pullOp(), h.pull)
	huma.Register(api, h.pushOp(), h.push)
}

func (h *Handler) pull(ctx context.Context, _ *pullInput) (*pullOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	ds, err := h.service.Pull(ctx, userID)
	if err != nil {
		return nil, huma.Error500InternalServerError("load dataset failed")
	}

	return &pullOutput{Body: ds}, nil
}

func (h *Handler) push(ctx context.Context, input *pushInput) (*pushOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	received, err := h.service.Push(ctx, userID, &input.Body)
	if err != nil {
		if errors.Is(err, dataset.ErrMissingID) {
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}
		return nil, huma.Error500InternalServerError("store dataset failed")
	}

	return &pushOutput{
		Body: PushResponse{Status: "Ok", Received: received},
	}, nil
}
