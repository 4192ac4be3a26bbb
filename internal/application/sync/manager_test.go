package sync_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ojsouza/almoxarifado-api/internal/application/inventory"
	syncapp "github.com/ojsouza/almoxarifado-api/internal/application/sync"
	"github.com/ojsouza/almoxarifado-api/internal/domain"
	"github.com/ojsouza/almoxarifado-api/internal/domain/entity"
	"github.com/ojsouza/almoxarifado-api/internal/domain/repository"
	"github.com/ojsouza/almoxarifado-api/internal/infrastructure/cache"
	"github.com/ojsouza/almoxarifado-api/pkg/config"
)

// ──────────────────────────────────────────────────────────────────────────────
// Stubs das tabelas tocadas pelo download completo. A interface embutida supre
// os métodos que o manager não chama (panic se chamados — o teste pegaria).
// ──────────────────────────────────────────────────────────────────────────────

type stubItems struct {
	repository.ItemRepository
	rows    []*entity.InventoryItem
	cleared bool
}

func (s *stubItems) Clear(context.Context) error { s.cleared = true; s.rows = nil; return nil }
func (s *stubItems) BulkUpsert(_ context.Context, its []*entity.InventoryItem) error {
	s.rows = append(s.rows, its...)
	return nil
}
func (s *stubItems) List(context.Context) ([]*entity.InventoryItem, error) { return s.rows, nil }

type stubRecords struct {
	repository.RecordRepository
	rows    []*entity.MovementRecord
	cleared bool
}

func (s *stubRecords) Clear(context.Context) error { s.cleared = true; s.rows = nil; return nil }
func (s *stubRecords) BulkUpsert(_ context.Context, rs []*entity.MovementRecord) error {
	s.rows = append(s.rows, rs...)
	return nil
}
func (s *stubRecords) List(context.Context, int) ([]*entity.MovementRecord, error) {
	return s.rows, nil
}

type stubCatalog struct {
	repository.CatalogRepository
	rows    []*entity.CatalogProduct
	cleared bool
}

func (s *stubCatalog) Clear(context.Context) error { s.cleared = true; return nil }
func (s *stubCatalog) BulkUpsert(_ context.Context, ps []*entity.CatalogProduct) error {
	s.rows = append(s.rows, ps...)
	return nil
}

type stubBatches struct {
	repository.BatchRepository
	rows    []*entity.InventoryBatch
	cleared bool
}

func (s *stubBatches) Clear(context.Context) error { s.cleared = true; return nil }
func (s *stubBatches) BulkUpsert(_ context.Context, bs []*entity.InventoryBatch) error {
	s.rows = append(s.rows, bs...)
	return nil
}

type stubBalances struct {
	repository.BalanceRepository
	rows    []*entity.StockBalance
	cleared bool
}

func (s *stubBalances) Clear(context.Context) error { s.cleared = true; return nil }
func (s *stubBalances) BulkUpsert(_ context.Context, bs []*entity.StockBalance) error {
	s.rows = append(s.rows, bs...)
	return nil
}

type memConfig struct {
	mu   sync.Mutex
	data map[string]string
}

func (c *memConfig) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data[key], nil
}
func (c *memConfig) Set(_ context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		c.data = make(map[string]string)
	}
	c.data[key] = value
	return nil
}

type stubTxRunner struct{ repos inventory.Repos }

func (r *stubTxRunner) Run(_ context.Context, fn func(inventory.Repos) error) error {
	return fn(r.repos)
}

func managerFixture(t *testing.T, backend syncapp.Backend, queued int) (*syncapp.Manager, *stubItems, *cache.Store) {
	t.Helper()
	items := &stubItems{}
	records := &stubRecords{}
	repos := inventory.Repos{
		Catalog:  &stubCatalog{},
		Batches:  &stubBatches{},
		Balances: &stubBalances{},
		Items:    items,
		Records:  records,
		Log:      &memSysLog{},
	}
	store := cache.NewStore(items, records)
	repo := &memQueue{}
	repo.seed(queued)
	queue := syncapp.NewQueue(repo, &memSysLog{}, backend, testSyncCfg, queueLogger())
	cfg := config.RemoteConfig{Endpoint: "https://sync.example.test"}
	manager := syncapp.NewManager(&stubTxRunner{repos: repos}, store, queue, backend, &memConfig{}, cfg, queueLogger())
	return manager, items, store
}

func TestSyncFromCloud_SemBackendConfigurado(t *testing.T) {
	items := &stubItems{}
	records := &stubRecords{}
	store := cache.NewStore(items, records)
	queue := syncapp.NewQueue(&memQueue{}, &memSysLog{}, nil, testSyncCfg, queueLogger())
	manager := syncapp.NewManager(&stubTxRunner{}, store, queue, nil, &memConfig{}, config.RemoteConfig{}, queueLogger())

	err := manager.SyncFromCloud(context.Background())
	require.ErrorIs(t, err, domain.ErrRemoteNotConfigured)
}

// TestSyncFromCloud_RecusaComPendencias cobre a pré-condição dura: o download
// sobrescreveria mudanças locais ainda não replicadas.
func TestSyncFromCloud_RecusaComPendencias(t *testing.T) {
	backend := &scriptedBackend{}
	manager, _, _ := managerFixture(t, backend, 2)

	err := manager.SyncFromCloud(context.Background())
	require.ErrorIs(t, err, domain.ErrPendingLocalChanges)
}

func TestSyncFromCloud_SubstituiEstadoLocal(t *testing.T) {
	backend := &fullDBBackend{
		payload: &syncapp.FullPayload{
			Items: []*entity.InventoryItem{
				{ID: "remoto-1", Name: "Metanol", Quantity: decimal.NewFromInt(4)},
			},
			Catalog:  []*entity.CatalogProduct{{ID: "cat-1", Name: "Metanol"}},
			Batches:  []*entity.InventoryBatch{{ID: "lote-1", CatalogID: "cat-1"}},
			Balances: []*entity.StockBalance{{BatchID: "lote-1", LocationID: "loc", Quantity: decimal.NewFromInt(4)}},
		},
	}
	manager, items, store := managerFixture(t, backend, 0)
	ctx := context.Background()

	// Espelho quente com estado antigo, para verificar a invalidação.
	items.rows = []*entity.InventoryItem{{ID: "local-1", Name: "Velho"}}
	_, err := store.Items.All(ctx)
	require.NoError(t, err)

	require.NoError(t, manager.SyncFromCloud(ctx))

	assert.True(t, items.cleared, "o estado local é limpo antes do upsert")
	require.Len(t, items.rows, 1)
	assert.Equal(t, "remoto-1", items.rows[0].ID)
	assert.False(t, store.Items.Warm(), "os espelhos são invalidados após o download")
}

func TestSyncFromCloud_BackendIndisponivel(t *testing.T) {
	backend := &fullDBBackend{err: errors.New("timeout")}
	manager, items, _ := managerFixture(t, backend, 0)

	err := manager.SyncFromCloud(context.Background())
	require.ErrorIs(t, err, domain.ErrRemoteUnavailable)
	assert.False(t, items.cleared, "nada é tocado quando o download falha")
}

func TestStatus(t *testing.T) {
	backend := &scriptedBackend{}
	manager, _, _ := managerFixture(t, backend, 3)

	status, err := manager.Status(context.Background())
	require.NoError(t, err)
	assert.True(t, status.RemoteConfigured)
	assert.True(t, status.Online)
	assert.Equal(t, int64(3), status.PendingOps)
	assert.False(t, status.Draining)
}

// fullDBBackend devolve um payload fixo (ou erro) em ReadFullDB.
type fullDBBackend struct {
	payload *syncapp.FullPayload
	err     error
}

func (b *fullDBBackend) Ping(context.Context) error { return b.err }
func (b *fullDBBackend) ReadFullDB(context.Context) (*syncapp.FullPayload, error) {
	return b.payload, b.err
}
func (b *fullDBBackend) BatchRequest(context.Context, []syncapp.BatchItem) ([]syncapp.BatchResult, error) {
	return nil, b.err
}
