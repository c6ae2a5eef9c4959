package client

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesync/internal/app/client/translate"
	"salesync/internal/domain/entity"
	"salesync/internal/domain/mapping"
)

func freshDeviceDataset() *entity.Dataset {
	ds := entity.NewDataset()
	ds.Clients = []entity.ClientDTO{
		{ID: "c-1", Nom: "Diop", Prenom: "Awa", Telephone: "770000001"},
		{ID: "c-2", Nom: "Fall", Prenom: "Moussa", Telephone: "770000002"},
		{ID: "c-3", Nom: "Ndiaye", Prenom: "Fatou", Telephone: "770000003"},
	}
	ds.Sales = []entity.SaleDTO{
		{ID: "s-1", ClientID: "c-1", Montant: 1500, DateVente: "2024-05-01T10:00:00Z", Produits: "[]"},
		{ID: "s-2", ClientID: "c-2", Montant: 2500, DateVente: "2024-05-02T10:00:00Z", Produits: "[]"},
	}
	return ds
}

func TestSyncFromServer_FreshDevice(t *testing.T) {
	env := newTestEnv(t, online())
	env.remote.dataset = freshDeviceDataset()
	ctx := context.Background()

	result, err := env.sync.SyncFromServer(ctx)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 3, env.count(t, entity.KindClient))
	assert.Equal(t, 2, env.count(t, entity.KindSale))
	assert.Equal(t, 5, env.mappings(t))
	assert.Equal(t, 5, result.MappingsCreated)
	assert.Equal(t, 5, result.Inserted)
	assert.Zero(t, result.Skipped)

	// clientId каждой продажи ведет обратно к нужному удаленному клиенту
	want := map[string]string{"s-1": "c-1", "s-2": "c-2"}
	for saleRemote, clientRemote := range want {
		saleID, err := env.store.LocalIDFor(ctx, entity.KindSale, saleRemote)
		require.NoError(t, err)

		got, err := env.store.Get(ctx, entity.KindSale, saleID)
		require.NoError(t, err)
		sale := got.(*entity.Sale)

		rid, err := env.store.RemoteIDFor(ctx, entity.KindClient, sale.ClientID)
		require.NoError(t, err)
		assert.Equal(t, clientRemote, rid)
	}

	state := env.state.State()
	assert.Equal(t, testNow, state.LastSyncTime)
	assert.False(t, state.IsSyncing)
}

func TestSyncFromServer_Idempotent(t *testing.T) {
	env := newTestEnv(t, online())
	env.remote.dataset = freshDeviceDataset()
	ctx := context.Background()

	_, err := env.sync.SyncFromServer(ctx)
	require.NoError(t, err)
	clients, sales, maps := env.count(t, entity.KindClient), env.count(t, entity.KindSale), env.mappings(t)

	second, err := env.sync.SyncFromServer(ctx)
	require.NoError(t, err)

	assert.Equal(t, clients, env.count(t, entity.KindClient))
	assert.Equal(t, sales, env.count(t, entity.KindSale))
	assert.Equal(t, maps, env.mappings(t))
	assert.Zero(t, second.Inserted)
	assert.Equal(t, 5, second.Updated)
	assert.Zero(t, second.MappingsCreated)
}

func TestSyncFromServer_DoesNotResetPendingChanges(t *testing.T) {
	env := newTestEnv(t, online())
	env.state.MarkPendingChange()

	_, err := env.sync.SyncFromServer(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, env.state.State().PendingChanges)
}

func TestSyncFromServer_SkipsUnresolvedReferences(t *testing.T) {
	env := newTestEnv(t, online())
	ds := entity.NewDataset()
	ds.Clients = []entity.ClientDTO{{ID: "c-1", Nom: "Diop"}}
	ds.Sales = []entity.SaleDTO{
		{ID: "s-orphan", ClientID: "c-missing", Montant: 100, DateVente: "2024-05-01T10:00:00Z"},
		{ID: "s-ok", ClientID: "c-1", Montant: 100, DateVente: "2024-05-01T10:00:00Z"},
	}
	ds.Payments = []entity.PaymentDTO{
		{ID: "p-orphan", VenteID: "s-orphan", Montant: 50, DatePaiement: "2024-05-01T11:00:00Z"},
		{ID: "p-ok", VenteID: "s-ok", Montant: 50, DatePaiement: "2024-05-01T11:00:00Z"},
	}
	ds.Reminders = []entity.ReminderDTO{
		{ID: "r-ok", ClientID: "c-1", DateRappel: "2024-05-03T09:00:00Z"},
		{ID: "r-orphan", ClientID: "c-1", VenteID: "s-orphan", DateRappel: "2024-05-03T09:00:00Z"},
	}
	env.remote.dataset = ds

	result, err := env.sync.SyncFromServer(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 3, result.Skipped)
	assert.Equal(t, 1, env.count(t, entity.KindSale))
	assert.Equal(t, 1, env.count(t, entity.KindPayment))
	assert.Equal(t, 1, env.count(t, entity.KindReminder))

	// ни одной продажи с нулевым или чужим клиентом
	sales, err := env.store.List(context.Background(), entity.KindSale)
	require.NoError(t, err)
	for _, s := range sales {
		_, err := env.store.Get(context.Background(), entity.KindClient, s.(*entity.Sale).ClientID)
		assert.NoError(t, err)
	}

	skipped := map[string]string{}
	for _, e := range result.Errors {
		skipped[e.RemoteID] = e.Operation
	}
	assert.Equal(t, map[string]string{"s-orphan": "translate", "p-orphan": "translate", "r-orphan": "translate"}, skipped)
}

func TestSyncFromServer_DuplicateSafeSale(t *testing.T) {
	env := newTestEnv(t, online())
	ctx := context.Background()

	clientID := env.add(t, &entity.Client{Nom: "Diop", Telephone: "770000001"})
	require.NoError(t, env.store.SaveMapping(ctx, mapping.Mapping{Kind: entity.KindClient, RemoteID: "c-1", LocalID: clientID}))

	saleDate := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	saleID := env.add(t, &entity.Sale{ClientID: clientID, Total: 1500, Date: saleDate.UnixMilli()})

	ds := entity.NewDataset()
	ds.Clients = []entity.ClientDTO{{ID: "c-1", Nom: "Diop", Telephone: "770000001"}}
	ds.Sales = []entity.SaleDTO{{
		ID:        "s-remote",
		ClientID:  "c-1",
		Montant:   1500,
		DateVente: translate.FormatTime(saleDate.Add(30 * time.Second).UnixMilli()),
	}}
	env.remote.dataset = ds

	result, err := env.sync.SyncFromServer(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, env.count(t, entity.KindSale))
	assert.Zero(t, result.Inserted)

	got, err := env.store.LocalIDFor(ctx, entity.KindSale, "s-remote")
	require.NoError(t, err)
	assert.Equal(t, saleID, got)
}

func TestSyncFromServer_SaleOutsideWindowIsNew(t *testing.T) {
	env := newTestEnv(t, online())
	ctx := context.Background()

	clientID := env.add(t, &entity.Client{Nom: "Diop"})
	require.NoError(t, env.store.SaveMapping(ctx, mapping.Mapping{Kind: entity.KindClient, RemoteID: "c-1", LocalID: clientID}))

	saleDate := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	env.add(t, &entity.Sale{ClientID: clientID, Total: 1500, Date: saleDate.UnixMilli()})

	ds := entity.NewDataset()
	ds.Sales = []entity.SaleDTO{{
		ID:        "s-remote",
		ClientID:  "c-1",
		Montant:   1500,
		DateVente: translate.FormatTime(saleDate.Add(time.Minute).UnixMilli()),
	}}
	env.remote.dataset = ds

	_, err := env.sync.SyncFromServer(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, env.count(t, entity.KindSale))
}

func TestSyncFromServer_ServerWinsOnConflict(t *testing.T) {
	env := newTestEnv(t, online())
	ctx := context.Background()

	id := env.add(t, &entity.Client{Nom: "Old", Telephone: "1"})
	require.NoError(t, env.store.SaveMapping(ctx, mapping.Mapping{Kind: entity.KindClient, RemoteID: "c-1", LocalID: id}))

	ds := entity.NewDataset()
	ds.Clients = []entity.ClientDTO{{ID: "c-1", Nom: "New", Telephone: "2"}}
	env.remote.dataset = ds

	_, err := env.sync.SyncFromServer(ctx)
	require.NoError(t, err)

	got, err := env.store.Get(ctx, entity.KindClient, id)
	require.NoError(t, err)
	assert.Equal(t, "New", got.(*entity.Client).Nom)
	assert.Equal(t, 1, env.count(t, entity.KindClient))
}

func TestSyncFromServer_StaleMappingIsReplaced(t *testing.T) {
	env := newTestEnv(t, online())
	ctx := context.Background()

	id := env.add(t, &entity.Product{Nom: "savon"})
	require.NoError(t, env.store.SaveMapping(ctx, mapping.Mapping{Kind: entity.KindProduct, RemoteID: "p-1", LocalID: id}))
	require.NoError(t, env.store.Delete(ctx, entity.KindProduct, id))

	ds := entity.NewDataset()
	ds.Products = []entity.ProductDTO{{ID: "p-1", Nom: "savon", Prix: 500}}
	env.remote.dataset = ds

	_, err := env.sync.SyncFromServer(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, env.count(t, entity.KindProduct))
	newID, err := env.store.LocalIDFor(ctx, entity.KindProduct, "p-1")
	require.NoError(t, err)
	assert.NotEqual(t, id, newID, "local ids are never reused")
}

func TestSyncToServer_NotAuthenticated(t *testing.T) {
	env := newTestEnv(t, online())
	env.tokens.set("")

	var seen []SyncState
	env.state.Subscribe(func(s SyncState) { seen = append(seen, s) })

	result, err := env.sync.SyncToServer(context.Background())

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.False(t, env.state.State().IsSyncing)
	for _, s := range seen {
		assert.False(t, s.IsSyncing)
	}
	assert.Nil(t, env.remote.lastPush())
}

func TestSyncToServer_Offline(t *testing.T) {
	env := newTestEnv(t, offline())

	_, err := env.sync.SyncToServer(context.Background())

	assert.ErrorIs(t, err, ErrOffline)
	assert.False(t, env.state.State().IsSyncing)
}

func TestSyncToServer_MutualExclusion(t *testing.T) {
	env := newTestEnv(t, online())
	env.add(t, &entity.Client{Nom: "Diop"})
	env.state.MarkPendingChange()
	env.remote.started = make(chan struct{})
	env.remote.release = make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := env.sync.SyncToServer(context.Background())
		assert.NoError(t, err)
	}()

	<-env.remote.started
	before := env.state.State()
	require.True(t, before.IsSyncing)

	_, err := env.sync.SyncToServer(context.Background())
	assert.ErrorIs(t, err, ErrSyncInProgress)
	_, err = env.sync.FullSync(context.Background())
	assert.ErrorIs(t, err, ErrSyncInProgress)
	assert.Equal(t, before, env.state.State())

	close(env.remote.release)
	wg.Wait()

	assert.False(t, env.state.State().IsSyncing)
	assert.Zero(t, env.state.State().PendingChanges)
}

func TestSyncToServer_FailedTransmissionPreservesPending(t *testing.T) {
	env := newTestEnv(t, online())
	env.add(t, &entity.Client{Nom: "Diop"})
	for i := 0; i < 4; i++ {
		env.state.MarkPendingChange()
	}
	env.remote.pushErr = &ServerError{StatusCode: http.StatusInternalServerError, Message: "boom"}

	result, err := env.sync.SyncToServer(context.Background())

	var serverErr *ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, http.StatusInternalServerError, serverErr.StatusCode)
	assert.False(t, result.Success)

	state := env.state.State()
	assert.Equal(t, 4, state.PendingChanges)
	assert.True(t, state.LastSyncTime.IsZero())
	assert.False(t, state.IsSyncing)

	// маппинг сохранен до отправки, повтор использует тот же удаленный id
	assert.Equal(t, 1, env.mappings(t))
	env.remote.pushErr = nil
	retry, err := env.sync.SyncToServer(context.Background())
	require.NoError(t, err)
	assert.Zero(t, retry.MappingsCreated)
	assert.Equal(t, "gen-1", env.remote.lastPush().Clients[0].ID)
	assert.Zero(t, env.state.State().PendingChanges)
}

func TestSyncToServer_TransportErrorAborts(t *testing.T) {
	env := newTestEnv(t, online())
	env.remote.pushErr = &TransportError{Op: "POST /sync/all", Err: context.DeadlineExceeded}

	_, err := env.sync.SyncToServer(context.Background())

	var transportErr *TransportError
	assert.ErrorAs(t, err, &transportErr)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, env.state.State().IsSyncing)
}

func TestSyncToServer_Success(t *testing.T) {
	env := newTestEnv(t, online())
	ctx := context.Background()

	clientID := env.add(t, &entity.Client{Nom: "Diop", Prenom: "Awa"})
	saleID := env.add(t, &entity.Sale{ClientID: clientID, Total: 900, Date: testNow.UnixMilli()})
	env.add(t, &entity.Payment{SaleID: saleID, Montant: 300, Date: testNow.UnixMilli()})
	env.add(t, &entity.Goal{Type: "ca", Target: 1000, CreatedAt: testNow.UnixMilli()})
	env.state.MarkPendingChange()
	env.state.MarkPendingChange()

	result, err := env.sync.SyncToServer(ctx)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 4, result.Uploaded)
	assert.Equal(t, 4, result.MappingsCreated)

	pushed := env.remote.lastPush()
	require.Len(t, pushed.Clients, 1)
	require.Len(t, pushed.Sales, 1)
	require.Len(t, pushed.Payments, 1)
	assert.Equal(t, pushed.Clients[0].ID, pushed.Sales[0].ClientID)
	assert.Equal(t, pushed.Sales[0].ID, pushed.Payments[0].VenteID)

	state := env.state.State()
	assert.Zero(t, state.PendingChanges)
	assert.Equal(t, testNow, state.LastSyncTime)

	// второй раз те же id, новых маппингов нет
	again, err := env.sync.SyncToServer(ctx)
	require.NoError(t, err)
	assert.Zero(t, again.MappingsCreated)
	assert.Equal(t, pushed.Clients[0].ID, env.remote.lastPush().Clients[0].ID)
}

func TestSyncToServer_SkipsEntityWithMissingParent(t *testing.T) {
	env := newTestEnv(t, online())
	ctx := context.Background()

	clientID := env.add(t, &entity.Client{Nom: "Diop"})
	env.add(t, &entity.Sale{ClientID: clientID, Total: 10})
	env.add(t, &entity.Sale{ClientID: 999, Total: 20})

	result, err := env.sync.SyncToServer(ctx)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Skipped)
	assert.Len(t, env.remote.lastPush().Sales, 1)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "translate", result.Errors[0].Operation)
	assert.Equal(t, entity.KindSale, result.Errors[0].Kind)
}

func TestFullSync_DownloadFailureSkipsUpload(t *testing.T) {
	env := newTestEnv(t, online())
	env.add(t, &entity.Client{Nom: "Diop"})
	env.remote.fetchErr = &TransportError{Op: "GET /sync/all", Err: errors.New("connection reset")}

	result, err := env.sync.FullSync(context.Background())

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.False(t, result.Success)
	assert.Equal(t, DirectionFull, result.Direction)
	assert.Nil(t, env.remote.lastPush())
	assert.False(t, env.state.State().IsSyncing)
}

func TestFullSync_DownloadThenUpload(t *testing.T) {
	env := newTestEnv(t, online())
	env.remote.dataset = freshDeviceDataset()
	env.add(t, &entity.Expense{Label: "transport", Amount: 500})
	env.state.MarkPendingChange()

	result, err := env.sync.FullSync(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 5, result.Downloaded)
	assert.Equal(t, 6, result.Uploaded)

	pushed := env.remote.lastPush()
	ids := map[string]bool{}
	for _, c := range pushed.Clients {
		ids[c.ID] = true
	}
	assert.Equal(t, map[string]bool{"c-1": true, "c-2": true, "c-3": true}, ids, "downloaded entities keep their remote ids")
	assert.Zero(t, env.state.State().PendingChanges)
}

func TestSync_StoreUnavailableAbortsCycle(t *testing.T) {
	env := newTestEnv(t, online())
	require.NoError(t, env.store.Close())

	_, err := env.sync.SyncToServer(context.Background())
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	_, err = env.sync.SyncFromServer(context.Background())
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	assert.False(t, env.state.State().IsSyncing)
	assert.Equal(t, 2, env.sync.GetStats().TotalSyncs)
}

func TestSyncService_Stats(t *testing.T) {
	env := newTestEnv(t, online())
	env.remote.dataset = freshDeviceDataset()

	_, err := env.sync.SyncFromServer(context.Background())
	require.NoError(t, err)
	env.remote.fetchErr = errors.New("down")
	_, err = env.sync.SyncFromServer(context.Background())
	require.Error(t, err)

	stats := env.sync.GetStats()
	assert.Equal(t, 2, stats.TotalSyncs)
	assert.Equal(t, 5, stats.TotalDownloaded)
	assert.Equal(t, testNow, stats.LastSuccessful)
	assert.Equal(t, testNow, stats.LastFailed)
	assert.Equal(t, 1, stats.TotalErrors)
}
