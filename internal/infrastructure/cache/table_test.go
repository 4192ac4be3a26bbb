package cache_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ojsouza/almoxarifado-api/internal/infrastructure/cache"
)

type row struct {
	ID    string
	Value int
}

// durableFake simula o armazenamento durável por trás do espelho.
type durableFake struct {
	mu    sync.Mutex
	rows  map[string]*row
	loads int
	fail  error
}

func newDurable(rows ...*row) *durableFake {
	d := &durableFake{rows: make(map[string]*row)}
	for _, r := range rows {
		d.rows[r.ID] = r
	}
	return d
}

func (d *durableFake) load(context.Context) ([]*row, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail != nil {
		return nil, d.fail
	}
	d.loads++
	out := make([]*row, 0, len(d.rows))
	for _, r := range d.rows {
		out = append(out, r)
	}
	return out, nil
}

func (d *durableFake) table() *cache.Table[*row] {
	return cache.NewTable(func(r *row) string { return r.ID }, d.load, cache.NewNotifier(time.Millisecond))
}

func ok(context.Context) error   { return nil }
func boom(context.Context) error { return errors.New("durable boom") }

func TestTable_AquecimentoPreguicoso(t *testing.T) {
	d := newDurable(&row{ID: "a", Value: 1}, &row{ID: "b", Value: 2})
	table := d.table()
	ctx := context.Background()

	assert.False(t, table.Warm(), "espelho nasce frio")

	all, err := table.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.True(t, table.Warm())

	// Leituras seguintes não recarregam.
	_, err = table.All(ctx)
	require.NoError(t, err)
	_, _, err = table.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, d.loads, "o durável só é lido uma vez enquanto o espelho está quente")
}

func TestTable_InvalidateRecarrega(t *testing.T) {
	d := newDurable(&row{ID: "a", Value: 1})
	table := d.table()
	ctx := context.Background()

	_, err := table.All(ctx)
	require.NoError(t, err)

	d.mu.Lock()
	d.rows["b"] = &row{ID: "b", Value: 2}
	d.mu.Unlock()

	table.Invalidate()
	assert.False(t, table.Warm())

	all, err := table.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2, "após invalidar, a leitura reflete o durável atualizado")
	assert.Equal(t, 2, d.loads)
}

func TestTable_StageERollback(t *testing.T) {
	d := newDurable(&row{ID: "a", Value: 1})
	table := d.table()
	ctx := context.Background()

	_, err := table.All(ctx)
	require.NoError(t, err)

	rollback := table.Stage(&row{ID: "a", Value: 99})
	got, okFound, err := table.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, okFound)
	assert.Equal(t, 99, got.Value, "a mutação otimista é visível imediatamente")

	rollback()
	got, _, err = table.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Value, "o rollback restaura o valor anterior")
}

func TestTable_StageEmEspelhoFrioEhNoOp(t *testing.T) {
	d := newDurable(&row{ID: "a", Value: 1})
	table := d.table()

	rollback := table.Stage(&row{ID: "a", Value: 99})
	rollback()
	assert.False(t, table.Warm(), "stage em espelho frio não aquece nem falha")
}

func TestTable_PutRevertoEmFalhaDuravel(t *testing.T) {
	d := newDurable(&row{ID: "a", Value: 1})
	table := d.table()
	ctx := context.Background()

	_, err := table.All(ctx)
	require.NoError(t, err)

	err = table.Put(ctx, &row{ID: "a", Value: 99}, boom)
	require.Error(t, err)

	got, _, err := table.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Value, "falha durável desfaz a mutação otimista")
}

func TestTable_DeleteOtimista(t *testing.T) {
	d := newDurable(&row{ID: "a", Value: 1})
	table := d.table()
	ctx := context.Background()

	_, err := table.All(ctx)
	require.NoError(t, err)

	require.NoError(t, table.Delete(ctx, "a", ok))
	_, found, err := table.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, found)

	count, err := table.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestTable_BulkPutPequenoFazMerge(t *testing.T) {
	d := newDurable(&row{ID: "a", Value: 1})
	table := d.table()
	ctx := context.Background()

	_, err := table.All(ctx)
	require.NoError(t, err)

	batch := []*row{{ID: "a", Value: 10}, {ID: "b", Value: 20}}
	require.NoError(t, table.BulkPut(ctx, batch, ok))

	assert.True(t, table.Warm(), "lote pequeno não invalida o espelho")
	got, _, err := table.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, 20, got.Value)
}

func TestTable_BulkPutGrandeInvalida(t *testing.T) {
	d := newDurable()
	table := d.table()
	ctx := context.Background()

	_, err := table.All(ctx)
	require.NoError(t, err)

	big := make([]*row, cache.BulkThreshold+1)
	for i := range big {
		big[i] = &row{ID: fmt.Sprintf("r%d", i), Value: i}
	}
	require.NoError(t, table.BulkPut(ctx, big, ok))
	assert.False(t, table.Warm(), "acima do limiar o espelho é invalidado, não mesclado")
}

func TestTable_BulkPutFalhaReverteNaOrdemInversa(t *testing.T) {
	d := newDurable(&row{ID: "a", Value: 1})
	table := d.table()
	ctx := context.Background()

	_, err := table.All(ctx)
	require.NoError(t, err)

	batch := []*row{{ID: "a", Value: 10}, {ID: "b", Value: 20}}
	err = table.BulkPut(ctx, batch, boom)
	require.Error(t, err)

	got, _, err := table.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Value)
	_, found, err := table.Get(ctx, "b")
	require.NoError(t, err)
	assert.False(t, found, "linha nova do lote falhado não pode sobrar no espelho")
}

func TestTable_ErroDeCargaPropaga(t *testing.T) {
	d := newDurable()
	d.fail = errors.New("db down")
	table := d.table()

	_, err := table.All(context.Background())
	require.Error(t, err)
	assert.False(t, table.Warm(), "falha de carga deixa o espelho frio para retentar")
}

func TestTable_AllDevolveCopia(t *testing.T) {
	d := newDurable(&row{ID: "a", Value: 1})
	table := d.table()
	ctx := context.Background()

	first, err := table.All(ctx)
	require.NoError(t, err)
	first[0] = &row{ID: "a", Value: 999} // mexe na fatia devolvida

	again, err := table.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, again[0].Value, "a fatia devolvida é um snapshot, não o espelho vivo")
}
