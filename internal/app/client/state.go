package client

import (
	"context"
	"sync"
	"time"
)

// SyncState наблюдаемое состояние синхронизации
type SyncState struct {
	LastSyncTime   time.Time `json:"last_sync_time"`
	IsSyncing      bool      `json:"is_syncing"`
	PendingChanges int       `json:"pending_changes"`
}

// StateStore хранит SyncState и оповещает подписчиков при каждом изменении.
// Подписчики вызываются синхронно, вне блокировки.
type StateStore struct {
	mu        sync.Mutex
	state     SyncState
	listeners map[int]func(SyncState)
	nextID    int
}

func NewStateStore() *StateStore {
	return &StateStore{
		listeners: make(map[int]func(SyncState)),
	}
}

// State возвращает копию текущего состояния
func (s *StateStore) State() SyncState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe регистрирует слушателя; возвращает функцию отписки
func (s *StateStore) Subscribe(fn func(SyncState)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// Updates отдает снимки состояния в канал до отмены ctx, затем закрывает его.
// Медленный читатель видит только последний снимок.
func (s *StateStore) Updates(ctx context.Context) <-chan SyncState {
	ch := make(chan SyncState, 1)

	var mu sync.Mutex
	closed := false
	unsubscribe := s.Subscribe(func(st SyncState) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case <-ch:
		default:
		}
		ch <- st
	})

	go func() {
		<-ctx.Done()
		unsubscribe()
		mu.Lock()
		closed = true
		close(ch)
		mu.Unlock()
	}()

	return ch
}

// MarkPendingChange увеличивает счетчик неотправленных изменений
func (s *StateStore) MarkPendingChange() {
	s.update(func(st *SyncState) { st.PendingChanges++ })
}

// TryBeginSync переводит состояние в Syncing; false если цикл уже идет
func (s *StateStore) TryBeginSync() bool {
	s.mu.Lock()
	if s.state.IsSyncing {
		s.mu.Unlock()
		return false
	}
	s.state.IsSyncing = true
	snapshot := s.state
	s.mu.Unlock()

	s.notify(snapshot)
	return true
}

// EndSync возвращает состояние в Idle без изменения счетчиков
func (s *StateStore) EndSync() {
	s.update(func(st *SyncState) { st.IsSyncing = false })
}

// CompleteDownload фиксирует успешную загрузку с сервера
func (s *StateStore) CompleteDownload(at time.Time) {
	s.update(func(st *SyncState) {
		st.LastSyncTime = at
	})
}

// CompleteUpload фиксирует подтвержденную отправку. Изменения, сделанные
// во время отправки, остаются в счетчике.
func (s *StateStore) CompleteUpload(at time.Time, sent int) {
	s.update(func(st *SyncState) {
		st.LastSyncTime = at
		st.PendingChanges -= sent
		if st.PendingChanges < 0 {
			st.PendingChanges = 0
		}
	})
}

// Reset очищает состояние после полной очистки локальных данных
func (s *StateStore) Reset() {
	s.update(func(st *SyncState) {
		st.LastSyncTime = time.Time{}
		st.PendingChanges = 0
	})
}

func (s *StateStore) update(fn func(*SyncState)) {
	s.mu.Lock()
	fn(&s.state)
	snapshot := s.state
	s.mu.Unlock()

	s.notify(snapshot)
}

func (s *StateStore) notify(st SyncState) {
	s.mu.Lock()
	listeners := make([]func(SyncState), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(st)
	}
}
