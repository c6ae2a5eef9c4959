package sync

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) pullOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-pull",
		Method:      http.MethodGet,
		Path:        "/sync/all",
		Summary:     "Полный датасет пользователя",
		Tags:        []string{"sync"},
		Security:    []map[string][]string{{"bearer": {}}},
		Errors:      []int{http.StatusUnauthorized},
		Middlewares: h.middleware,
	}
}

func (h *Handler) pushOp() huma.Operation {
	return huma.Operation{
		OperationID:  "sync-push",
		Method:       http.MethodPost,
		Path:         "/sync/all",
		Summary:      "Загрузка сущностей устройства",
		Description:  "Сущность с уже известным id перезаписывается.",
		Tags:         []string{"sync"},
		Security:     []map[string][]string{{"bearer": {}}},
		MaxBodyBytes: 32 << 20,
		Errors:       []int{http.StatusUnauthorized, http.StatusUnprocessableEntity},
		Middlewares:  h.middleware,
	}
}
