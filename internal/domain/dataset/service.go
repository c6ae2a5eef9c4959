package dataset

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/exp/slog"

	"salesync/internal/domain/entity"
)

// Servicer серверная сторона /sync/all
type Servicer interface {
	// Pull возвращает полный датасет пользователя
	Pull(ctx context.Context, userID int) (*entity.Dataset, error)

	// Push сохраняет присланные сущности, более поздняя запись побеждает.
	// Возвращает число принятых сущностей по видам.
	Push(ctx context.Context, userID int, ds *entity.Dataset) (map[string]int, error)
}

type Service struct {
	repo Repository
	log  *slog.Logger
}

func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With("component", "dataset"),
	}
}

func (s *Service) Pull(ctx context.Context, userID int) (*entity.Dataset, error) {
	records, err := s.repo.List(ctx, userID)
	if err != nil {
		s.log.Error("list records", "user_id", userID, "error", err)
		return nil, err
	}

	ds := entity.NewDataset()
	for _, rec := range records {
		r, err := entity.DecodeRemote(rec.Kind, rec.Payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %s/%s: %v", ErrInvalidRecord, rec.Kind, rec.RemoteID, err)
		}
		if err := ds.Add(r); err != nil {
			return nil, err
		}
	}

	s.log.Debug("dataset pulled", "user_id", userID, "entities", ds.Len())
	return ds, nil
}

func (s *Service) Push(ctx context.Context, userID int, ds *entity.Dataset) (map[string]int, error) {
	if ds == nil {
		ds = entity.NewDataset()
	}

	records := make([]Record, 0, ds.Len())
	for _, kind := range entity.UploadOrder {
		for _, item := range ds.Items(kind) {
			if item.RemoteID() == "" {
				return nil, fmt.Errorf("%w: %s", ErrMissingID, kind)
			}
			payload, err := json.Marshal(item)
			if err != nil {
				return nil, fmt.Errorf("encode %s %s: %w", kind, item.RemoteID(), err)
			}
			records = append(records, Record{
				Kind:     kind,
				RemoteID: item.RemoteID(),
				Payload:  payload,
			})
		}
	}

	if len(records) > 0 {
		if err := s.repo.Upsert(ctx, userID, records); err != nil {
			s.log.Error("upsert records", "user_id", userID, "count", len(records), "error", err)
			return nil, err
		}
	}

	received := ds.Counts()
	s.log.Info("dataset pushed", "user_id", userID, "entities", len(records))
	return received, nil
}
