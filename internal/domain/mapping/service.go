package mapping

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/exp/slog"

	"salesync/internal/domain/entity"
)

// Mapper is the identity mapper used by the sync engine. Lookup failures
// are logged and reported as "no mapping"; Save failures are logged and
// returned so the caller can decide whether to continue.
type Mapper interface {
	Save(ctx context.Context, remoteID string, localID int64, kind entity.Kind) error
	LocalIDFor(ctx context.Context, remoteID string, kind entity.Kind) (int64, bool)
	RemoteIDFor(ctx context.Context, localID int64, kind entity.Kind) (string, bool)
	Snapshot(ctx context.Context) (*Table, error)
}

type Service struct {
	repo Repository
	log  *slog.Logger
}

func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With("component", "mapper"),
	}
}

func (s *Service) Save(ctx context.Context, remoteID string, localID int64, kind entity.Kind) error {
	if remoteID == "" || localID <= 0 {
		return fmt.Errorf("%w: kind=%s remote=%q local=%d", ErrInvalidInput, kind, remoteID, localID)
	}
	if err := kind.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	m := Mapping{Kind: kind, RemoteID: remoteID, LocalID: localID}
	if err := s.repo.SaveMapping(ctx, m); err != nil {
		s.log.Error("save mapping failed", "kind", kind, "remote_id", remoteID, "local_id", localID, "error", err)
		return fmt.Errorf("save mapping: %w", err)
	}
	return nil
}

func (s *Service) LocalIDFor(ctx context.Context, remoteID string, kind entity.Kind) (int64, bool) {
	id, err := s.repo.LocalIDFor(ctx, kind, remoteID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Warn("mapping lookup failed", "kind", kind, "remote_id", remoteID, "error", err)
		}
		return 0, false
	}
	return id, true
}

func (s *Service) RemoteIDFor(ctx context.Context, localID int64, kind entity.Kind) (string, bool) {
	id, err := s.repo.RemoteIDFor(ctx, kind, localID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Warn("mapping lookup failed", "kind", kind, "local_id", localID, "error", err)
		}
		return "", false
	}
	return id, true
}

// Snapshot loads every mapping into a Table.
func (s *Service) Snapshot(ctx context.Context) (*Table, error) {
	all, err := s.repo.ListMappings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list mappings: %w", err)
	}
	return NewTable(all...), nil
}
