package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ojsouza/almoxarifado-api/internal/application/inventory"
	"github.com/ojsouza/almoxarifado-api/internal/domain"
	"github.com/ojsouza/almoxarifado-api/internal/domain/entity"
	"github.com/ojsouza/almoxarifado-api/internal/infrastructure/cache"
)

func newQueryUC(m *memStore, store *cache.Store, kicker *countKicker) *inventory.QueryUseCase {
	return inventory.NewQueryUseCase(&memTxRunner{store: m}, store, kicker, testLogger())
}

func seedItems(m *memStore) {
	m.items["i1"] = &entity.InventoryItem{ID: "i1", Name: "Etanol", SapCode: "S1", Quantity: decimal.NewFromInt(5)}
	m.items["i2"] = &entity.InventoryItem{ID: "i2", Name: "Acetona", SapCode: "S2", Quantity: decimal.NewFromInt(3)}
	m.items["i3"] = &entity.InventoryItem{ID: "i3", Name: "ácido nítrico", SapCode: "S3", CasNumber: "7697-37-2"}
}

func TestListItems_OrdenadoPorNome(t *testing.T) {
	m := newMemStore()
	seedItems(m)
	store := cache.NewStore((*memItemRepo)(m), (*memRecordRepo)(m))
	uc := newQueryUC(m, store, &countKicker{})

	items, err := uc.ListItems(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Acetona", items[0].Name)
	assert.Equal(t, "Etanol", items[1].Name)
}

func TestListItems_BuscaLivre(t *testing.T) {
	m := newMemStore()
	seedItems(m)
	store := cache.NewStore((*memItemRepo)(m), (*memRecordRepo)(m))
	uc := newQueryUC(m, store, &countKicker{})
	ctx := context.Background()

	byName, err := uc.ListItems(ctx, "etanol")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "i1", byName[0].ID)

	byCas, err := uc.ListItems(ctx, "7697")
	require.NoError(t, err)
	require.Len(t, byCas, 1)
	assert.Equal(t, "i3", byCas[0].ID)
}

// A busca ignora acentos nos dois lados: "acido" encontra "ácido nítrico" e
// "Ácido" encontra o mesmo item.
func TestListItems_BuscaSemAcentos(t *testing.T) {
	m := newMemStore()
	seedItems(m)
	store := cache.NewStore((*memItemRepo)(m), (*memRecordRepo)(m))
	uc := newQueryUC(m, store, &countKicker{})
	ctx := context.Background()

	semAcento, err := uc.ListItems(ctx, "acido")
	require.NoError(t, err)
	require.Len(t, semAcento, 1)
	assert.Equal(t, "i3", semAcento[0].ID)

	comAcento, err := uc.ListItems(ctx, "Ácido")
	require.NoError(t, err)
	require.Len(t, comAcento, 1)
	assert.Equal(t, "i3", comAcento[0].ID)
}

func TestGetItem_NaoEncontrado(t *testing.T) {
	m := newMemStore()
	store := cache.NewStore((*memItemRepo)(m), (*memRecordRepo)(m))
	uc := newQueryUC(m, store, &countKicker{})

	_, err := uc.GetItem(context.Background(), "nao-existe")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListRecords_MaisRecentePrimeiro(t *testing.T) {
	m := newMemStore()
	now := time.Now()
	m.records["r1"] = &entity.MovementRecord{ID: "r1", ItemID: "i1", Date: now.Add(-time.Hour)}
	m.records["r2"] = &entity.MovementRecord{ID: "r2", ItemID: "i1", Date: now}
	m.records["r3"] = &entity.MovementRecord{ID: "r3", ItemID: "i2", Date: now.Add(-time.Minute)}
	store := cache.NewStore((*memItemRepo)(m), (*memRecordRepo)(m))
	uc := newQueryUC(m, store, &countKicker{})
	ctx := context.Background()

	all, err := uc.ListRecords(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "r2", all[0].ID)

	onlyI1, err := uc.ListRecords(ctx, "i1")
	require.NoError(t, err)
	require.Len(t, onlyI1, 2)
	assert.Equal(t, "r2", onlyI1[0].ID)
	assert.Equal(t, "r1", onlyI1[1].ID)
}

func TestDeleteItem_RemoveLoteEEnfileira(t *testing.T) {
	m, store := seedScenario(t)
	kicker := &countKicker{}
	uc := newQueryUC(m, store, kicker)

	require.NoError(t, uc.DeleteItem(context.Background(), testItemID))

	assert.Nil(t, m.items[testItemID])
	assert.Nil(t, m.batches[testBatchID])
	assert.Empty(t, m.balances, "a remoção do lote leva os balances junto")

	require.Len(t, m.queue, 1)
	assert.Equal(t, entity.SyncActionDeleteItem, m.queue[0].Action)
	assert.Equal(t, int64(1), kicker.kicks.Load())
}

func TestDeleteItem_RollbackDoEspelho(t *testing.T) {
	_, store := seedScenario(t)
	ctx := context.Background()

	_, err := store.Items.All(ctx)
	require.NoError(t, err)

	uc := inventory.NewQueryUseCase(&errTxRunner{err: errBoom}, store, &countKicker{}, testLogger())
	err = uc.DeleteItem(ctx, testItemID)
	require.ErrorIs(t, err, errBoom)

	_, found, err := store.Items.Get(ctx, testItemID)
	require.NoError(t, err)
	assert.True(t, found, "a remoção otimista deve ser revertida após a falha")
}
