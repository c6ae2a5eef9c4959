package client

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"salesync/internal/domain/entity"
)

var testNow = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type staticTokens struct {
	mu    sync.Mutex
	token string
}

func (s *staticTokens) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.token != ""
}

func (s *staticTokens) set(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

type probeFunc func(ctx context.Context) bool

func (f probeFunc) IsOnline(ctx context.Context) bool { return f(ctx) }

func online() probeFunc  { return func(context.Context) bool { return true } }
func offline() probeFunc { return func(context.Context) bool { return false } }

// fakeRemote держит набор данных сервера в памяти
type fakeRemote struct {
	mu       sync.Mutex
	dataset  *entity.Dataset
	pushed   []*entity.Dataset
	fetches  int
	fetchErr error
	pushErr  error

	// если задан, PushAll сообщает о начале в started и ждет release
	started chan struct{}
	release chan struct{}
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{dataset: entity.NewDataset()}
}

func (f *fakeRemote) FetchAll(ctx context.Context) (*entity.Dataset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	copied := *f.dataset
	return &copied, nil
}

func (f *fakeRemote) PushAll(ctx context.Context, dataset *entity.Dataset) (*PushSummary, error) {
	if f.started != nil {
		f.started <- struct{}{}
		<-f.release
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pushErr != nil {
		return nil, f.pushErr
	}
	f.pushed = append(f.pushed, dataset)
	return &PushSummary{Status: "Ok", Received: dataset.Counts()}, nil
}

func (f *fakeRemote) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

func (f *fakeRemote) lastPush() *entity.Dataset {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.pushed) == 0 {
		return nil
	}
	return f.pushed[len(f.pushed)-1]
}

type testEnv struct {
	store  *MemoryStorage
	remote *fakeRemote
	tokens *staticTokens
	state  *StateStore
	sync   *SyncService
}

func newTestEnv(t *testing.T, probe OnlineChecker) *testEnv {
	t.Helper()

	seq := 0
	env := &testEnv{
		store:  NewMemoryStorage(),
		remote: newFakeRemote(),
		tokens: &staticTokens{token: "token"},
		state:  NewStateStore(),
	}
	env.sync = NewSyncService(env.store, env.remote, env.tokens, probe, env.state, discardLogger(),
		WithClock(func() time.Time { return testNow }),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("gen-%d", seq)
		}),
	)
	return env
}

func (e *testEnv) add(t *testing.T, ent entity.Local) int64 {
	t.Helper()
	id, err := e.store.Add(context.Background(), ent)
	require.NoError(t, err)
	return id
}

func (e *testEnv) count(t *testing.T, kind entity.Kind) int {
	t.Helper()
	n, err := e.store.Count(context.Background(), kind)
	require.NoError(t, err)
	return n
}

func (e *testEnv) mappings(t *testing.T) int {
	t.Helper()
	all, err := e.store.ListMappings(context.Background())
	require.NoError(t, err)
	return len(all)
}
