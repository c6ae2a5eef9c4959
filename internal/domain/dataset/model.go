package dataset

import (
	"encoding/json"
	"time"

	"salesync/internal/domain/entity"
)

// Record одна сущность пользователя в серверной схеме. Payload хранится как
// есть, сервер не интерпретирует поля сущности.
type Record struct {
	Kind      entity.Kind     `json:"kind"`
	RemoteID  string          `json:"remote_id"`
	Payload   json.RawMessage `json:"payload"`
	UpdatedAt time.Time       `json:"updated_at"`
}
