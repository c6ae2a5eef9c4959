package postgres

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"salesync/internal/domain/dataset"
	"salesync/internal/domain/entity"
	"salesync/internal/domain/user"
)

// Тесты требуют живой PostgreSQL, адрес берётся из SALESYNC_TEST_DATABASE_URI
func testStorage(t *testing.T) *Storage {
	t.Helper()
	uri := os.Getenv("SALESYNC_TEST_DATABASE_URI")
	if uri == "" {
		t.Skip("SALESYNC_TEST_DATABASE_URI not set")
	}
	s, err := New(context.Background(), uri, "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStorage_Ping(t *testing.T) {
	s := testStorage(t)
	require.NoError(t, s.Ping(context.Background()))
}

func TestUserRepository(t *testing.T) {
	s := testStorage(t)
	repo := NewUserRepository(s.Pool(), slog.Default())
	ctx := context.Background()
	login := "u-" + uuid.NewString()[:8]

	id, err := repo.Create(ctx, login, "hash")
	require.NoError(t, err)
	assert.Positive(t, id)

	_, err = repo.Create(ctx, login, "other")
	assert.ErrorIs(t, err, user.ErrAlreadyExists)

	u, err := repo.FindByLogin(ctx, login)
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, "hash", u.Password)

	_, err = repo.FindByLogin(ctx, "missing-"+login)
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestDatasetRepository_UpsertList(t *testing.T) {
	s := testStorage(t)
	users := NewUserRepository(s.Pool(), slog.Default())
	repo := NewDatasetRepository(s.Pool(), slog.Default())
	ctx := context.Background()

	userID, err := users.Create(ctx, "d-"+uuid.NewString()[:8], "hash")
	require.NoError(t, err)

	first, _ := json.Marshal(entity.ClientDTO{ID: "c-1", Nom: "Diop"})
	second, _ := json.Marshal(entity.ClientDTO{ID: "c-1", Nom: "Ndiaye"})

	require.NoError(t, repo.Upsert(ctx, userID, []dataset.Record{{Kind: entity.KindClient, RemoteID: "c-1", Payload: first}}))
	require.NoError(t, repo.Upsert(ctx, userID, []dataset.Record{{Kind: entity.KindClient, RemoteID: "c-1", Payload: second}}))

	records, err := repo.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.JSONEq(t, string(second), string(records[0].Payload))
}
