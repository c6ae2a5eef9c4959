package client

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesync/internal/app/client/translate"
	"salesync/internal/domain/entity"
	"salesync/internal/domain/mapping"
)

func newTestDeduplicator(store *MemoryStorage) *Deduplicator {
	log := discardLogger()
	return NewDeduplicator(store, mapping.NewService(store, log), log)
}

func TestDeduplicator_ByMapping(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()
	id, err := store.Add(ctx, &entity.Product{Nom: "savon"})
	require.NoError(t, err)
	require.NoError(t, store.SaveMapping(ctx, mapping.Mapping{Kind: entity.KindProduct, RemoteID: "p-1", LocalID: id}))

	match, err := newTestDeduplicator(store).ResolveLocalMatch(ctx, entity.ProductDTO{ID: "p-1", Nom: "autre"})
	require.NoError(t, err)

	assert.Equal(t, Match{LocalID: id, Source: MatchMapping}, match)
}

func TestDeduplicator_StaleMapping(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()
	require.NoError(t, store.SaveMapping(ctx, mapping.Mapping{Kind: entity.KindProduct, RemoteID: "p-1", LocalID: 42}))

	match, err := newTestDeduplicator(store).ResolveLocalMatch(ctx, entity.ProductDTO{ID: "p-1"})
	require.NoError(t, err)

	assert.False(t, match.Found())
	assert.True(t, match.Stale)
}

func TestDeduplicator_ClientByPhone(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()
	id, err := store.Add(ctx, &entity.Client{Nom: "Diop", Telephone: "+221 77 000 00 01"})
	require.NoError(t, err)

	tests := []struct {
		name  string
		phone string
		found bool
	}{
		{name: "same digits", phone: "221770000001", found: true},
		{name: "international prefix", phone: "00221 77-000-00-01", found: true},
		{name: "other number", phone: "221770000002", found: false},
		{name: "empty phone", phone: "", found: false},
	}

	d := newTestDeduplicator(store)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match, err := d.ResolveLocalMatch(ctx, entity.ClientDTO{ID: "c-1", Telephone: tt.phone})
			require.NoError(t, err)
			assert.Equal(t, tt.found, match.Found())
			if tt.found {
				assert.Equal(t, id, match.LocalID)
				assert.Equal(t, MatchNaturalKey, match.Source)
			}
		})
	}
}

func TestDeduplicator_CandidateMappedElsewhereIsRejected(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()
	id, err := store.Add(ctx, &entity.Client{Nom: "Diop", Telephone: "770000001"})
	require.NoError(t, err)
	require.NoError(t, store.SaveMapping(ctx, mapping.Mapping{Kind: entity.KindClient, RemoteID: "c-other", LocalID: id}))

	match, err := newTestDeduplicator(store).ResolveLocalMatch(ctx, entity.ClientDTO{ID: "c-1", Telephone: "770000001"})
	require.NoError(t, err)

	assert.False(t, match.Found())
}

func TestDeduplicator_TemplateByNameAndMessage(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()
	id, err := store.Add(ctx, &entity.Template{Name: "relance", Message: "Bonjour {nom}"})
	require.NoError(t, err)

	d := newTestDeduplicator(store)

	match, err := d.ResolveLocalMatch(ctx, entity.TemplateDTO{ID: "t-1", Nom: "relance", Message: "Bonjour {nom}"})
	require.NoError(t, err)
	assert.Equal(t, id, match.LocalID)

	match, err = d.ResolveLocalMatch(ctx, entity.TemplateDTO{ID: "t-2", Nom: "relance", Message: "Salut"})
	require.NoError(t, err)
	assert.False(t, match.Found())
}

func TestDeduplicator_SaleClosestInWindow(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC).UnixMilli()

	clientID, err := store.Add(ctx, &entity.Client{Nom: "Diop"})
	require.NoError(t, err)
	require.NoError(t, store.SaveMapping(ctx, mapping.Mapping{Kind: entity.KindClient, RemoteID: "c-1", LocalID: clientID}))

	far, err := store.Add(ctx, &entity.Sale{ClientID: clientID, Total: 1500, Date: base - 50_000})
	require.NoError(t, err)
	near, err := store.Add(ctx, &entity.Sale{ClientID: clientID, Total: 1500, Date: base + 10_000})
	require.NoError(t, err)
	_, err = store.Add(ctx, &entity.Sale{ClientID: clientID, Total: 999, Date: base})
	require.NoError(t, err)

	d := newTestDeduplicator(store)
	remote := entity.SaleDTO{ID: "s-1", ClientID: "c-1", Montant: 1500, DateVente: translate.FormatTime(base)}

	match, err := d.ResolveLocalMatch(ctx, remote)
	require.NoError(t, err)
	assert.Equal(t, near, match.LocalID)

	// ближайшая уже занята, берется следующая
	require.NoError(t, store.SaveMapping(ctx, mapping.Mapping{Kind: entity.KindSale, RemoteID: "s-other", LocalID: near}))
	match, err = d.ResolveLocalMatch(ctx, remote)
	require.NoError(t, err)
	assert.Equal(t, far, match.LocalID)
}

func TestDeduplicator_SaleWithoutMappedClient(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()
	clientID, err := store.Add(ctx, &entity.Client{Nom: "Diop"})
	require.NoError(t, err)
	_, err = store.Add(ctx, &entity.Sale{ClientID: clientID, Total: 10, Date: 1000})
	require.NoError(t, err)

	match, err := newTestDeduplicator(store).ResolveLocalMatch(ctx,
		entity.SaleDTO{ID: "s-1", ClientID: "c-unknown", Montant: 10, DateVente: translate.FormatTime(1000)})
	require.NoError(t, err)

	assert.False(t, match.Found())
}

func TestDeduplicator_NoNaturalKey(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()
	_, err := store.Add(ctx, &entity.Expense{Label: "taxi", Amount: 10})
	require.NoError(t, err)

	match, err := newTestDeduplicator(store).ResolveLocalMatch(ctx, entity.ExpenseDTO{ID: "e-1", Libelle: "taxi", Montant: 10})
	require.NoError(t, err)

	assert.Equal(t, Match{}, match)
}

func TestDeduplicator_StoreUnavailable(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()
	require.NoError(t, store.Close())

	_, err := newTestDeduplicator(store).ResolveLocalMatch(ctx, entity.ClientDTO{ID: "c-1", Telephone: "1"})

	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}
