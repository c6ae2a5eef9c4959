package mapping

import "salesync/internal/domain/entity"

// Mapping links one remote id to one local id for an entity kind.
type Mapping struct {
	Kind     entity.Kind
	RemoteID string
	LocalID  int64
}
