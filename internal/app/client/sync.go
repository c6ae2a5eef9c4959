// internal/app/client/sync.go
package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"salesync/internal/app/client/translate"
	"salesync/internal/domain/entity"
	"salesync/internal/domain/mapping"
)

const (
	DirectionUpload   = "upload"
	DirectionDownload = "download"
	DirectionFull     = "full"
)

// RemoteAPI — удаленное хранилище, единственный собеседник SyncService
type RemoteAPI interface {
	FetchAll(ctx context.Context) (*entity.Dataset, error)
	PushAll(ctx context.Context, dataset *entity.Dataset) (*PushSummary, error)
}

// OnlineChecker — проверка доступности сервера перед каждым циклом
type OnlineChecker interface {
	IsOnline(ctx context.Context) bool
}

// SyncService управляет синхронизацией данных между клиентом и сервером.
// Одновременно выполняется не более одного цикла.
type SyncService struct {
	store  Storage
	remote RemoteAPI
	tokens TokenSource
	probe  OnlineChecker
	state  *StateStore
	mapper mapping.Mapper
	dedup  *Deduplicator
	now    func() time.Time
	newID  func() string
	log    *slog.Logger

	mu    sync.RWMutex
	stats SyncStats
	auto  autoSync
}

// SyncError ошибка синхронизации отдельной сущности или всего цикла
type SyncError struct {
	Kind      entity.Kind `json:"kind,omitempty"`
	LocalID   int64       `json:"local_id,omitempty"`
	RemoteID  string      `json:"remote_id,omitempty"`
	Operation string      `json:"operation"`
	Error     string      `json:"error"`
	Timestamp time.Time   `json:"timestamp"`
}

// SyncStats статистика синхронизации за время жизни процесса
type SyncStats struct {
	TotalSyncs      int       `json:"total_syncs"`
	LastSuccessful  time.Time `json:"last_successful"`
	LastFailed      time.Time `json:"last_failed"`
	TotalUploaded   int       `json:"total_uploaded"`
	TotalDownloaded int       `json:"total_downloaded"`
	TotalSkipped    int       `json:"total_skipped"`
	TotalErrors     int       `json:"total_errors"`
	AvgSyncDuration float64   `json:"avg_sync_duration"`
}

// SyncResult результат синхронизации
type SyncResult struct {
	Direction       string        `json:"direction"`
	Success         bool          `json:"success"`
	Uploaded        int           `json:"uploaded"`
	Downloaded      int           `json:"downloaded"`
	Inserted        int           `json:"inserted"`
	Updated         int           `json:"updated"`
	Skipped         int           `json:"skipped"`
	MappingsCreated int           `json:"mappings_created"`
	Errors          []SyncError   `json:"errors"`
	Duration        time.Duration `json:"duration"`
	StartTime       time.Time     `json:"start_time"`
	EndTime         time.Time     `json:"end_time"`
}

// Option настраивает SyncService
type Option func(*SyncService)

// WithClock подменяет источник времени
func WithClock(now func() time.Time) Option {
	return func(s *SyncService) { s.now = now }
}

// WithIDGenerator подменяет генератор удаленных id для новых сущностей
func WithIDGenerator(fn func() string) Option {
	return func(s *SyncService) { s.newID = fn }
}

// NewSyncService создает новый сервис синхронизации
func NewSyncService(store Storage, remote RemoteAPI, tokens TokenSource, probe OnlineChecker, state *StateStore, log *slog.Logger, opts ...Option) *SyncService {
	log = log.With("component", "sync")
	mapper := mapping.NewService(store, log)

	s := &SyncService{
		store:  store,
		remote: remote,
		tokens: tokens,
		probe:  probe,
		state:  state,
		mapper: mapper,
		dedup:  NewDeduplicator(store, mapper, log),
		now:    time.Now,
		newID:  uuid.NewString,
		log:    log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SyncToServer отправляет все локальные сущности на сервер
func (s *SyncService) SyncToServer(ctx context.Context) (*SyncResult, error) {
	if err := s.begin(ctx); err != nil {
		return nil, err
	}
	defer s.state.EndSync()

	result := s.newResult(DirectionUpload)
	err := s.upload(ctx, result)
	s.finish(result, err)

	return result, err
}

// SyncFromServer загружает полный набор данных с сервера и сливает его
// в локальное хранилище; данные сервера имеют приоритет
func (s *SyncService) SyncFromServer(ctx context.Context) (*SyncResult, error) {
	if err := s.begin(ctx); err != nil {
		return nil, err
	}
	defer s.state.EndSync()

	result := s.newResult(DirectionDownload)
	err := s.download(ctx, result)
	s.finish(result, err)

	return result, err
}

// FullSync выполняет загрузку, затем отправку. Если загрузка не удалась,
// отправка не выполняется.
func (s *SyncService) FullSync(ctx context.Context) (*SyncResult, error) {
	if err := s.begin(ctx); err != nil {
		return nil, err
	}
	defer s.state.EndSync()

	result := s.newResult(DirectionFull)

	if err := s.download(ctx, result); err != nil {
		err = fmt.Errorf("download: %w", err)
		s.finish(result, err)
		return result, err
	}

	// Условия проверяются повторно перед второй половиной цикла
	if err := s.ready(ctx); err != nil {
		err = fmt.Errorf("upload: %w", err)
		s.finish(result, err)
		return result, err
	}

	err := s.upload(ctx, result)
	if err != nil {
		err = fmt.Errorf("upload: %w", err)
	}
	s.finish(result, err)

	return result, err
}

// begin проверяет условия и переводит состояние в Syncing
func (s *SyncService) begin(ctx context.Context) error {
	if !s.authenticated() {
		return ErrNotAuthenticated
	}
	if s.state.State().IsSyncing {
		return ErrSyncInProgress
	}
	if !s.probe.IsOnline(ctx) {
		return ErrOffline
	}
	if !s.state.TryBeginSync() {
		return ErrSyncInProgress
	}
	return nil
}

func (s *SyncService) ready(ctx context.Context) error {
	if !s.authenticated() {
		return ErrNotAuthenticated
	}
	if !s.probe.IsOnline(ctx) {
		return ErrOffline
	}
	return nil
}

func (s *SyncService) authenticated() bool {
	_, ok := s.tokens.Token()
	return ok
}

func (s *SyncService) upload(ctx context.Context, result *SyncResult) error {
	if err := s.store.Ping(ctx); err != nil {
		return err
	}

	// Изменения, сделанные во время отправки, не будут подтверждены ею
	pending := s.state.State().PendingChanges

	refs, err := s.mapper.Snapshot(ctx)
	if err != nil {
		return &StoreError{Op: "snapshot", Err: err}
	}

	dataset := entity.NewDataset()
	for _, kind := range entity.UploadOrder {
		if err := ctx.Err(); err != nil {
			return err
		}

		items, err := s.store.List(ctx, kind)
		if err != nil {
			if isFatal(err) {
				return err
			}
			s.skip(result, SyncError{Kind: kind, Operation: "list"}, &StoreError{Kind: kind, Op: "list", Err: err})
			continue
		}

		for _, local := range items {
			if err := s.prepareUpload(ctx, local, refs, dataset, result); err != nil {
				return err
			}
		}
	}

	s.log.Info("Отправка данных на сервер", "entities", dataset.Len(), "skipped", result.Skipped)

	summary, err := s.remote.PushAll(ctx, dataset)
	if err != nil {
		return err
	}

	result.Uploaded = dataset.Len()
	s.state.CompleteUpload(s.now(), pending)
	s.log.Debug("Сервер подтвердил прием", "status", summary.Status, "received", summary.Received)

	return nil
}

// prepareUpload переводит сущность в серверный вид и до отправки сохраняет
// маппинг, чтобы повторная отправка после сбоя не создала дубликат.
// Возвращает только фатальные ошибки.
func (s *SyncService) prepareUpload(ctx context.Context, local entity.Local, refs *mapping.Table, dataset *entity.Dataset, result *SyncResult) error {
	kind, localID := local.Kind(), local.LocalID()

	remoteID, mapped := refs.RemoteIDFor(kind, localID)
	if !mapped {
		remoteID = s.newID()
	}

	remote, err := translate.ToRemote(local, remoteID, refs)
	if err != nil {
		s.skip(result, SyncError{Kind: kind, LocalID: localID, Operation: "translate"}, err)
		return nil
	}

	if !mapped {
		if err := s.mapper.Save(ctx, remoteID, localID, kind); err != nil {
			if isFatal(err) {
				return err
			}
			s.skip(result, SyncError{Kind: kind, LocalID: localID, RemoteID: remoteID, Operation: "save_mapping"},
				&StoreError{Kind: kind, Op: "save_mapping", Err: err})
			return nil
		}
		refs.Put(mapping.Mapping{Kind: kind, RemoteID: remoteID, LocalID: localID})
		result.MappingsCreated++
	}

	return dataset.Add(remote)
}

func (s *SyncService) download(ctx context.Context, result *SyncResult) error {
	if err := s.store.Ping(ctx); err != nil {
		return err
	}

	dataset, err := s.remote.FetchAll(ctx)
	if err != nil {
		return err
	}
	s.log.Info("Получены данные с сервера", "entities", dataset.Len())

	refs, err := s.mapper.Snapshot(ctx)
	if err != nil {
		return &StoreError{Op: "snapshot", Err: err}
	}

	// Родители применяются раньше детей
	for _, kind := range entity.DownloadOrder {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, remote := range dataset.Items(kind) {
			if err := s.applyRemote(ctx, remote, refs, result); err != nil {
				return err
			}
		}
	}

	result.Downloaded = result.Inserted + result.Updated
	s.state.CompleteDownload(s.now())

	return nil
}

// applyRemote сливает одну удаленную сущность в локальное хранилище.
// Возвращает только фатальные ошибки.
func (s *SyncService) applyRemote(ctx context.Context, remote entity.Remote, refs *mapping.Table, result *SyncResult) error {
	kind, remoteID := remote.Kind(), remote.RemoteID()
	if remoteID == "" {
		s.skip(result, SyncError{Kind: kind, Operation: "validate"}, fmt.Errorf("%w: empty id", entity.ErrInvalidData))
		return nil
	}

	match, err := s.dedup.ResolveLocalMatch(ctx, remote)
	if err != nil {
		if isFatal(err) {
			return err
		}
		s.skip(result, SyncError{Kind: kind, RemoteID: remoteID, Operation: "dedup"}, err)
		return nil
	}

	local, err := translate.FromRemote(remote, refs)
	if err != nil {
		s.skip(result, SyncError{Kind: kind, RemoteID: remoteID, Operation: "translate"}, err)
		return nil
	}

	if match.Found() {
		local.SetLocalID(match.LocalID)
		if err := s.store.Update(ctx, local); err != nil {
			if isFatal(err) {
				return err
			}
			s.skip(result, SyncError{Kind: kind, LocalID: match.LocalID, RemoteID: remoteID, Operation: "update"},
				&StoreError{Kind: kind, Op: "update", Err: err})
			return nil
		}
		result.Updated++
	} else {
		if _, err := s.store.Add(ctx, local); err != nil {
			if isFatal(err) {
				return err
			}
			s.skip(result, SyncError{Kind: kind, RemoteID: remoteID, Operation: "insert"},
				&StoreError{Kind: kind, Op: "insert", Err: err})
			return nil
		}
		result.Inserted++
	}

	localID := local.LocalID()
	if current, ok := refs.LocalIDFor(kind, remoteID); ok && current == localID {
		return nil
	}

	refs.Put(mapping.Mapping{Kind: kind, RemoteID: remoteID, LocalID: localID})
	if err := s.mapper.Save(ctx, remoteID, localID, kind); err != nil {
		if isFatal(err) {
			return err
		}
		// Сущность записана; без маппинга следующий цикл найдет ее медленнее
		s.record(result, SyncError{Kind: kind, LocalID: localID, RemoteID: remoteID, Operation: "save_mapping"},
			&StoreError{Kind: kind, Op: "save_mapping", Err: err})
		return nil
	}
	result.MappingsCreated++

	return nil
}

func (s *SyncService) newResult(direction string) *SyncResult {
	return &SyncResult{
		Direction: direction,
		StartTime: s.now(),
		Errors:    []SyncError{},
	}
}

// skip фиксирует пропущенную сущность
func (s *SyncService) skip(result *SyncResult, e SyncError, err error) {
	result.Skipped++
	s.record(result, e, err)
}

func (s *SyncService) record(result *SyncResult, e SyncError, err error) {
	e.Error = err.Error()
	e.Timestamp = s.now()
	result.Errors = append(result.Errors, e)

	s.log.Warn("Ошибка синхронизации сущности",
		"kind", e.Kind,
		"local_id", e.LocalID,
		"remote_id", e.RemoteID,
		"operation", e.Operation,
		"error", err,
	)
}

func (s *SyncService) finish(result *SyncResult, err error) {
	result.EndTime = s.now()
	result.Duration = result.EndTime.Sub(result.StartTime)
	result.Success = err == nil

	if err != nil {
		result.Errors = append(result.Errors, SyncError{
			Operation: result.Direction,
			Error:     err.Error(),
			Timestamp: result.EndTime,
		})
		s.log.Error("Синхронизация прервана", "direction", result.Direction, "error", err)
	} else {
		s.log.Info("Синхронизация завершена",
			"direction", result.Direction,
			"uploaded", result.Uploaded,
			"downloaded", result.Downloaded,
			"skipped", result.Skipped,
			"duration", result.Duration,
		)
	}

	s.updateStats(result)
}

// updateStats обновляет статистику синхронизации
func (s *SyncService) updateStats(result *SyncResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.TotalSyncs++

	if result.Success {
		s.stats.LastSuccessful = result.EndTime
	} else {
		s.stats.LastFailed = result.EndTime
	}

	s.stats.TotalUploaded += result.Uploaded
	s.stats.TotalDownloaded += result.Downloaded
	s.stats.TotalSkipped += result.Skipped
	s.stats.TotalErrors += len(result.Errors)

	// Обновляем среднюю продолжительность
	s.stats.AvgSyncDuration = (s.stats.AvgSyncDuration*float64(s.stats.TotalSyncs-1) +
		result.Duration.Seconds()) / float64(s.stats.TotalSyncs)
}

// GetStats возвращает копию статистики синхронизации
func (s *SyncService) GetStats() SyncStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// IsSyncing проверяет, выполняется ли синхронизация
func (s *SyncService) IsSyncing() bool {
	return s.state.State().IsSyncing
}

// GetLastSyncTime возвращает время последней успешной синхронизации
func (s *SyncService) GetLastSyncTime() time.Time {
	return s.state.State().LastSyncTime
}

// isFatal — хранилище недоступно, цикл прерывается целиком
func isFatal(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}
