package mapping

import (
	"context"

	"salesync/internal/domain/entity"
)

// Repository persists identity mappings. Implementations must keep both
// (kind, remote_id) and (kind, local_id) unique: Save replaces any row that
// conflicts on either key.
type Repository interface {
	SaveMapping(ctx context.Context, m Mapping) error
	LocalIDFor(ctx context.Context, kind entity.Kind, remoteID string) (int64, error)
	RemoteIDFor(ctx context.Context, kind entity.Kind, localID int64) (string, error)
	ListMappings(ctx context.Context) ([]Mapping, error)
}
