package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"salesync/internal/domain/entity"
	"salesync/internal/domain/mapping"
)

// MemoryStorage - временное in-memory хранилище, используется если SQLite
// недоступен. Данные копируются на входе и выходе.
type MemoryStorage struct {
	mu       sync.RWMutex
	closed   bool
	rows     map[entity.Kind]map[int64][]byte
	lastID   map[entity.Kind]int64
	mappings *mapping.Table
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		rows:     make(map[entity.Kind]map[int64][]byte),
		lastID:   make(map[entity.Kind]int64),
		mappings: mapping.NewTable(),
	}
}

func (m *MemoryStorage) Ping(context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrStoreUnavailable
	}
	return nil
}

func (m *MemoryStorage) List(_ context.Context, kind entity.Kind) ([]entity.Local, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(kind); err != nil {
		return nil, err
	}

	ids := m.sortedIDs(kind)
	out := make([]entity.Local, 0, len(ids))
	for _, id := range ids {
		e, err := m.decode(kind, id)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *MemoryStorage) Get(_ context.Context, kind entity.Kind, id int64) (entity.Local, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(kind); err != nil {
		return nil, err
	}
	if _, ok := m.rows[kind][id]; !ok {
		return nil, fmt.Errorf("%w: %s #%d", entity.ErrNotFound, kind, id)
	}
	return m.decode(kind, id)
}

func (m *MemoryStorage) Add(_ context.Context, e entity.Local) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kind := e.Kind()
	if err := m.check(kind); err != nil {
		return 0, err
	}

	m.lastID[kind]++
	id := m.lastID[kind]
	e.SetLocalID(id)

	data, err := json.Marshal(e)
	if err != nil {
		return 0, err
	}
	if m.rows[kind] == nil {
		m.rows[kind] = make(map[int64][]byte)
	}
	m.rows[kind][id] = data

	return id, nil
}

func (m *MemoryStorage) Update(_ context.Context, e entity.Local) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kind := e.Kind()
	if err := m.check(kind); err != nil {
		return err
	}
	if _, ok := m.rows[kind][e.LocalID()]; !ok {
		return fmt.Errorf("%w: %s #%d", entity.ErrNotFound, kind, e.LocalID())
	}

	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	m.rows[kind][e.LocalID()] = data

	return nil
}

func (m *MemoryStorage) Delete(_ context.Context, kind entity.Kind, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(kind); err != nil {
		return err
	}
	if _, ok := m.rows[kind][id]; !ok {
		return fmt.Errorf("%w: %s #%d", entity.ErrNotFound, kind, id)
	}
	delete(m.rows[kind], id)
	return nil
}

func (m *MemoryStorage) Count(_ context.Context, kind entity.Kind) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(kind); err != nil {
		return 0, err
	}
	return len(m.rows[kind]), nil
}

func (m *MemoryStorage) FindClientsByPhone(ctx context.Context, phoneKey string) ([]*entity.Client, error) {
	if phoneKey == "" {
		return nil, nil
	}
	return find(ctx, m, entity.KindClient, func(c *entity.Client) bool {
		return entity.NormalizePhone(c.Telephone) == phoneKey
	})
}

func (m *MemoryStorage) FindTemplates(ctx context.Context, name, message string) ([]*entity.Template, error) {
	return find(ctx, m, entity.KindTemplate, func(t *entity.Template) bool {
		return t.Name == name && t.Message == message
	})
}

func (m *MemoryStorage) FindSales(ctx context.Context, clientID int64, total float64, from, to int64) ([]*entity.Sale, error) {
	return find(ctx, m, entity.KindSale, func(s *entity.Sale) bool {
		return s.ClientID == clientID && s.Total == total && s.Date > from && s.Date < to
	})
}

func (m *MemoryStorage) SaveMapping(_ context.Context, mp mapping.Mapping) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreUnavailable
	}
	m.mappings.Put(mp)
	return nil
}

func (m *MemoryStorage) LocalIDFor(_ context.Context, kind entity.Kind, remoteID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return 0, ErrStoreUnavailable
	}
	id, ok := m.mappings.LocalIDFor(kind, remoteID)
	if !ok {
		return 0, mapping.ErrNotFound
	}
	return id, nil
}

func (m *MemoryStorage) RemoteIDFor(_ context.Context, kind entity.Kind, localID int64) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return "", ErrStoreUnavailable
	}
	id, ok := m.mappings.RemoteIDFor(kind, localID)
	if !ok {
		return "", mapping.ErrNotFound
	}
	return id, nil
}

func (m *MemoryStorage) ListMappings(context.Context) ([]mapping.Mapping, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrStoreUnavailable
	}

	return m.mappings.All(), nil
}

func (m *MemoryStorage) Wipe(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreUnavailable
	}
	m.rows = make(map[entity.Kind]map[int64][]byte)
	m.mappings = mapping.NewTable()
	return nil
}

func (m *MemoryStorage) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *MemoryStorage) check(kind entity.Kind) error {
	if m.closed {
		return ErrStoreUnavailable
	}
	return kind.Validate()
}

func (m *MemoryStorage) sortedIDs(kind entity.Kind) []int64 {
	ids := make([]int64, 0, len(m.rows[kind]))
	for id := range m.rows[kind] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (m *MemoryStorage) decode(kind entity.Kind, id int64) (entity.Local, error) {
	e, err := entity.NewLocal(kind)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(m.rows[kind][id], e); err != nil {
		return nil, err
	}
	e.SetLocalID(id)
	return e, nil
}

func find[T entity.Local](ctx context.Context, m *MemoryStorage, kind entity.Kind, match func(T) bool) ([]T, error) {
	all, err := m.List(ctx, kind)
	if err != nil {
		return nil, err
	}
	var out []T
	for _, e := range all {
		if typed, ok := e.(T); ok && match(typed) {
			out = append(out, typed)
		}
	}
	return out, nil
}
