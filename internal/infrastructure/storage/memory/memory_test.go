package memory

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesync/internal/domain/dataset"
	"salesync/internal/domain/entity"
	"salesync/internal/domain/user"
)

func TestUserRepository(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	id, err := repo.Create(ctx, "awa.diop", "hash")
	require.NoError(t, err)
	assert.Equal(t, 1, id)

	_, err = repo.Create(ctx, "awa.diop", "other")
	assert.ErrorIs(t, err, user.ErrAlreadyExists)

	id2, err := repo.Create(ctx, "moussa", "hash2")
	require.NoError(t, err)
	assert.Equal(t, 2, id2)

	u, err := repo.FindByLogin(ctx, "awa.diop")
	require.NoError(t, err)
	assert.Equal(t, 1, u.ID)
	assert.Equal(t, "hash", u.Password)

	_, err = repo.FindByLogin(ctx, "nobody")
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestUserRepository_ConcurrentCreate(t *testing.T) {
	repo := NewUserRepository()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.Create(context.Background(), "same", "hash"); err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
}

func TestDatasetRepository(t *testing.T) {
	repo := NewDatasetRepository()
	ctx := context.Background()

	c1, _ := json.Marshal(entity.ClientDTO{ID: "c-1", Nom: "Diop"})
	c1b, _ := json.Marshal(entity.ClientDTO{ID: "c-1", Nom: "Ndiaye"})
	s1, _ := json.Marshal(entity.SaleDTO{ID: "s-1", ClientID: "c-1"})

	require.NoError(t, repo.Upsert(ctx, 1, []dataset.Record{
		{Kind: entity.KindClient, RemoteID: "c-1", Payload: c1},
		{Kind: entity.KindSale, RemoteID: "s-1", Payload: s1},
	}))
	require.NoError(t, repo.Upsert(ctx, 1, []dataset.Record{
		{Kind: entity.KindClient, RemoteID: "c-1", Payload: c1b},
	}))

	records, err := repo.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "c-1", records[0].RemoteID)
	assert.JSONEq(t, string(c1b), string(records[0].Payload))
	assert.False(t, records[0].UpdatedAt.IsZero())
	assert.Equal(t, entity.KindSale, records[1].Kind)

	other, err := repo.List(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestDatasetRepository_CopiesPayload(t *testing.T) {
	repo := NewDatasetRepository()
	payload := []byte(`{"id":"p-1"}`)

	require.NoError(t, repo.Upsert(context.Background(), 1, []dataset.Record{
		{Kind: entity.KindProduct, RemoteID: "p-1", Payload: payload},
	}))
	payload[2] = 'X'

	records, err := repo.List(context.Background(), 1)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"p-1"}`, string(records[0].Payload))
}
