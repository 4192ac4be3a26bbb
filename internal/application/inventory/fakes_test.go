package inventory_test

import (
	"context"
	"errors"
	"sort"
	"sync/atomic"

	"github.com/shopspring/decimal"
	"github.com/ojsouza/almoxarifado-api/internal/application/inventory"
	"github.com/ojsouza/almoxarifado-api/internal/domain"
	"github.com/ojsouza/almoxarifado-api/internal/domain/entity"
	"github.com/ojsouza/almoxarifado-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes em memória dos repositórios, compartilhando um memStore. O txRunner de
// teste executa a função diretamente; errTxRunner força a falha da "transação"
// para exercitar o rollback dos espelhos.
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	catalogs  map[string]*entity.CatalogProduct
	batches   map[string]*entity.InventoryBatch
	locations map[string]*entity.StorageLocation
	partners  map[string]*entity.BusinessPartner
	balances  map[string]*entity.StockBalance // chave batchID|locationID
	movements []*entity.StockMovement
	items     map[string]*entity.InventoryItem
	records   map[string]*entity.MovementRecord
	queue     []*entity.SyncOperation
	nextOpID  int64
	logs      []string
}

func newMemStore() *memStore {
	return &memStore{
		catalogs:  make(map[string]*entity.CatalogProduct),
		batches:   make(map[string]*entity.InventoryBatch),
		locations: make(map[string]*entity.StorageLocation),
		partners:  make(map[string]*entity.BusinessPartner),
		balances:  make(map[string]*entity.StockBalance),
		items:     make(map[string]*entity.InventoryItem),
		records:   make(map[string]*entity.MovementRecord),
	}
}

func balKey(batchID, locationID string) string { return batchID + "|" + locationID }

func (m *memStore) repos() inventory.Repos {
	return inventory.Repos{
		Catalog:   (*memCatalogRepo)(m),
		Batches:   (*memBatchRepo)(m),
		Locations: (*memLocationRepo)(m),
		Partners:  (*memPartnerRepo)(m),
		Balances:  (*memBalanceRepo)(m),
		Movements: (*memMovementRepo)(m),
		Items:     (*memItemRepo)(m),
		Records:   (*memRecordRepo)(m),
		Queue:     (*memQueueRepo)(m),
		Log:       (*memLogRepo)(m),
	}
}

type memTxRunner struct{ store *memStore }

func (r *memTxRunner) Run(_ context.Context, fn func(inventory.Repos) error) error {
	return fn(r.store.repos())
}

// errTxRunner devolve sempre o erro dado, sem executar nada.
type errTxRunner struct{ err error }

func (r *errTxRunner) Run(context.Context, func(inventory.Repos) error) error { return r.err }

var errBoom = errors.New("boom")

type countKicker struct{ kicks atomic.Int64 }

func (k *countKicker) Kick() { k.kicks.Add(1) }

type noopClassifier struct{}

func (noopClassifier) SuggestCategory(string) string { return "Geral" }
func (noopClassifier) SuggestCas(string) string      { return "" }

type noopLookup struct{}

func (noopLookup) Lookup(context.Context, string) (string, string, []string, error) {
	return "", "", nil, domain.ErrNotFound
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "development", Level: "error"})
}

// ── Catalog ──────────────────────────────────────────────────────────────────

type memCatalogRepo memStore

func (m *memCatalogRepo) GetByID(_ context.Context, id string) (*entity.CatalogProduct, error) {
	return m.catalogs[id], nil
}
func (m *memCatalogRepo) Upsert(_ context.Context, p *entity.CatalogProduct) error {
	m.catalogs[p.ID] = p
	return nil
}
func (m *memCatalogRepo) BulkUpsert(_ context.Context, ps []*entity.CatalogProduct) error {
	for _, p := range ps {
		m.catalogs[p.ID] = p
	}
	return nil
}
func (m *memCatalogRepo) Delete(_ context.Context, id string) error {
	for _, b := range m.batches {
		if b.CatalogID == id {
			return domain.ErrIntegrity
		}
	}
	delete(m.catalogs, id)
	return nil
}
func (m *memCatalogRepo) List(_ context.Context) ([]*entity.CatalogProduct, error) {
	out := make([]*entity.CatalogProduct, 0, len(m.catalogs))
	for _, p := range m.catalogs {
		out = append(out, p)
	}
	return out, nil
}
func (m *memCatalogRepo) Clear(_ context.Context) error {
	m.catalogs = make(map[string]*entity.CatalogProduct)
	return nil
}

// ── Batch ────────────────────────────────────────────────────────────────────

type memBatchRepo memStore

func (m *memBatchRepo) GetByID(_ context.Context, id string) (*entity.InventoryBatch, error) {
	return m.batches[id], nil
}
func (m *memBatchRepo) Upsert(_ context.Context, b *entity.InventoryBatch) error {
	m.batches[b.ID] = b
	return nil
}
func (m *memBatchRepo) BulkUpsert(_ context.Context, bs []*entity.InventoryBatch) error {
	for _, b := range bs {
		m.batches[b.ID] = b
	}
	return nil
}
func (m *memBatchRepo) Delete(_ context.Context, id string) error {
	delete(m.batches, id)
	for k, b := range m.balances {
		if b.BatchID == id {
			delete(m.balances, k)
		}
	}
	return nil
}
func (m *memBatchRepo) List(_ context.Context) ([]*entity.InventoryBatch, error) {
	out := make([]*entity.InventoryBatch, 0, len(m.batches))
	for _, b := range m.batches {
		out = append(out, b)
	}
	return out, nil
}
func (m *memBatchRepo) Clear(_ context.Context) error {
	m.batches = make(map[string]*entity.InventoryBatch)
	return nil
}

// ── Location ─────────────────────────────────────────────────────────────────

type memLocationRepo memStore

func (m *memLocationRepo) GetByID(_ context.Context, id string) (*entity.StorageLocation, error) {
	return m.locations[id], nil
}
func (m *memLocationRepo) Upsert(_ context.Context, l *entity.StorageLocation) error {
	m.locations[l.ID] = l
	return nil
}
func (m *memLocationRepo) BulkUpsert(_ context.Context, ls []*entity.StorageLocation) error {
	for _, l := range ls {
		m.locations[l.ID] = l
	}
	return nil
}
func (m *memLocationRepo) List(_ context.Context) ([]*entity.StorageLocation, error) {
	out := make([]*entity.StorageLocation, 0, len(m.locations))
	for _, l := range m.locations {
		out = append(out, l)
	}
	return out, nil
}
func (m *memLocationRepo) Clear(_ context.Context) error {
	m.locations = make(map[string]*entity.StorageLocation)
	return nil
}

// ── Partner ──────────────────────────────────────────────────────────────────

type memPartnerRepo memStore

func (m *memPartnerRepo) GetByID(_ context.Context, id string) (*entity.BusinessPartner, error) {
	return m.partners[id], nil
}
func (m *memPartnerRepo) Upsert(_ context.Context, p *entity.BusinessPartner) error {
	m.partners[p.ID] = p
	return nil
}
func (m *memPartnerRepo) BulkUpsert(_ context.Context, ps []*entity.BusinessPartner) error {
	for _, p := range ps {
		m.partners[p.ID] = p
	}
	return nil
}
func (m *memPartnerRepo) List(_ context.Context) ([]*entity.BusinessPartner, error) {
	out := make([]*entity.BusinessPartner, 0, len(m.partners))
	for _, p := range m.partners {
		out = append(out, p)
	}
	return out, nil
}
func (m *memPartnerRepo) Clear(_ context.Context) error {
	m.partners = make(map[string]*entity.BusinessPartner)
	return nil
}

// ── Balance ──────────────────────────────────────────────────────────────────

type memBalanceRepo memStore

func (m *memBalanceRepo) Get(_ context.Context, batchID, locationID string) (*entity.StockBalance, error) {
	if b, ok := m.balances[balKey(batchID, locationID)]; ok {
		cp := *b
		return &cp, nil
	}
	return &entity.StockBalance{BatchID: batchID, LocationID: locationID, Quantity: decimal.Zero}, nil
}
func (m *memBalanceRepo) GetForUpdate(ctx context.Context, batchID, locationID string) (*entity.StockBalance, error) {
	return m.Get(ctx, batchID, locationID)
}
func (m *memBalanceRepo) Upsert(_ context.Context, b *entity.StockBalance) error {
	cp := *b
	m.balances[balKey(b.BatchID, b.LocationID)] = &cp
	return nil
}
func (m *memBalanceRepo) BulkUpsert(_ context.Context, bs []*entity.StockBalance) error {
	for _, b := range bs {
		cp := *b
		m.balances[balKey(b.BatchID, b.LocationID)] = &cp
	}
	return nil
}
func (m *memBalanceRepo) ListByBatch(_ context.Context, batchID string) ([]*entity.StockBalance, error) {
	var out []*entity.StockBalance
	for _, b := range m.balances {
		if b.BatchID == batchID {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LocationID < out[j].LocationID })
	return out, nil
}
func (m *memBalanceRepo) StreamSums(_ context.Context, fn func(string, decimal.Decimal) error) error {
	sums := make(map[string]decimal.Decimal)
	for _, b := range m.balances {
		sums[b.BatchID] = sums[b.BatchID].Add(b.Quantity)
	}
	for batchID, sum := range sums {
		if err := fn(batchID, sum); err != nil {
			return err
		}
	}
	return nil
}
func (m *memBalanceRepo) Clear(_ context.Context) error {
	m.balances = make(map[string]*entity.StockBalance)
	return nil
}

// ── StockMovement ────────────────────────────────────────────────────────────

type memMovementRepo memStore

func (m *memMovementRepo) Create(_ context.Context, mv *entity.StockMovement) error {
	m.movements = append(m.movements, mv)
	return nil
}
func (m *memMovementRepo) ListByBatch(_ context.Context, batchID string) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for _, mv := range m.movements {
		if mv.BatchID == batchID {
			out = append(out, mv)
		}
	}
	return out, nil
}
func (m *memMovementRepo) Clear(_ context.Context) error {
	m.movements = nil
	return nil
}

// ── Item ─────────────────────────────────────────────────────────────────────

type memItemRepo memStore

func (m *memItemRepo) GetByID(_ context.Context, id string) (*entity.InventoryItem, error) {
	return m.items[id], nil
}
func (m *memItemRepo) GetByBatch(_ context.Context, batchID string) (*entity.InventoryItem, error) {
	for _, it := range m.items {
		if it.BatchID == batchID {
			return it, nil
		}
	}
	return nil, nil
}
func (m *memItemRepo) Upsert(_ context.Context, it *entity.InventoryItem) error {
	cp := *it
	m.items[it.ID] = &cp
	return nil
}
func (m *memItemRepo) BulkUpsert(_ context.Context, its []*entity.InventoryItem) error {
	for _, it := range its {
		cp := *it
		m.items[it.ID] = &cp
	}
	return nil
}
func (m *memItemRepo) Delete(_ context.Context, id string) error {
	delete(m.items, id)
	return nil
}
func (m *memItemRepo) List(_ context.Context) ([]*entity.InventoryItem, error) {
	out := make([]*entity.InventoryItem, 0, len(m.items))
	for _, it := range m.items {
		out = append(out, it)
	}
	return out, nil
}
func (m *memItemRepo) Stream(_ context.Context, fn func(*entity.InventoryItem) error) error {
	for _, it := range m.items {
		if err := fn(it); err != nil {
			return err
		}
	}
	return nil
}
func (m *memItemRepo) Count(_ context.Context) (int64, error) { return int64(len(m.items)), nil }
func (m *memItemRepo) Clear(_ context.Context) error {
	m.items = make(map[string]*entity.InventoryItem)
	return nil
}

// ── Record ───────────────────────────────────────────────────────────────────

type memRecordRepo memStore

func (m *memRecordRepo) Create(_ context.Context, r *entity.MovementRecord) error {
	cp := *r
	m.records[r.ID] = &cp
	return nil
}
func (m *memRecordRepo) BulkUpsert(_ context.Context, rs []*entity.MovementRecord) error {
	for _, r := range rs {
		cp := *r
		m.records[r.ID] = &cp
	}
	return nil
}
func (m *memRecordRepo) ListByItem(_ context.Context, itemID string) ([]*entity.MovementRecord, error) {
	var out []*entity.MovementRecord
	for _, r := range m.records {
		if r.ItemID == itemID {
			out = append(out, r)
		}
	}
	return out, nil
}
func (m *memRecordRepo) List(_ context.Context, limit int) ([]*entity.MovementRecord, error) {
	out := make([]*entity.MovementRecord, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
func (m *memRecordRepo) Clear(_ context.Context) error {
	m.records = make(map[string]*entity.MovementRecord)
	return nil
}

// ── Fila de sincronização ────────────────────────────────────────────────────

type memQueueRepo memStore

func (m *memQueueRepo) Enqueue(_ context.Context, op *entity.SyncOperation) error {
	m.nextOpID++
	op.ID = m.nextOpID
	m.queue = append(m.queue, op)
	return nil
}
func (m *memQueueRepo) OldestPending(_ context.Context, limit int) ([]*entity.SyncOperation, error) {
	if limit > len(m.queue) {
		limit = len(m.queue)
	}
	return m.queue[:limit], nil
}
func (m *memQueueRepo) Delete(_ context.Context, id int64) error {
	for i, op := range m.queue {
		if op.ID == id {
			m.queue = append(m.queue[:i], m.queue[i+1:]...)
			return nil
		}
	}
	return nil
}
func (m *memQueueRepo) MarkFailed(_ context.Context, id int64, lastError string) error {
	for _, op := range m.queue {
		if op.ID == id {
			op.RetryCount++
			op.LastError = lastError
		}
	}
	return nil
}
func (m *memQueueRepo) Count(_ context.Context) (int64, error) { return int64(len(m.queue)), nil }

// ── Log do sistema ───────────────────────────────────────────────────────────

type memLogRepo memStore

func (m *memLogRepo) Append(_ context.Context, level, event, detail string) error {
	m.logs = append(m.logs, level+" "+event+" "+detail)
	return nil
}
