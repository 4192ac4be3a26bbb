package inventory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/ojsouza/almoxarifado-api/internal/domain"
	"github.com/ojsouza/almoxarifado-api/internal/domain/entity"
	"github.com/ojsouza/almoxarifado-api/internal/domain/ident"
	"github.com/ojsouza/almoxarifado-api/internal/infrastructure/cache"
	"github.com/ojsouza/almoxarifado-api/pkg/logger"
)

// QueryUseCase serve as leituras da UI a partir dos espelhos em memória.
// Primeira leitura aquece o espelho; as seguintes não tocam o banco.
type QueryUseCase struct {
	txRunner TxRunner
	store    *cache.Store
	kicker   SyncKicker
	log      *logger.Logger
}

// NewQueryUseCase constrói o caso de uso de consulta.
func NewQueryUseCase(txRunner TxRunner, store *cache.Store, kicker SyncKicker, log *logger.Logger) *QueryUseCase {
	return &QueryUseCase{txRunner: txRunner, store: store, kicker: kicker, log: log}
}

// ListItems devolve os snapshots ordenados por nome, opcionalmente filtrados
// por busca livre (nome, código SAP, lote ou CAS, sem acentos).
func (uc *QueryUseCase) ListItems(ctx context.Context, search string) ([]*entity.InventoryItem, error) {
	items, err := uc.store.Items.All(ctx)
	if err != nil {
		return nil, err
	}
	if search != "" {
		needle := ident.Normalize(search)
		filtered := items[:0]
		for _, it := range items {
			if matchesSearch(it, needle) {
				filtered = append(filtered, it)
			}
		}
		items = filtered
	}
	sort.Slice(items, func(i, j int) bool {
		return strings.ToLower(items[i].Name) < strings.ToLower(items[j].Name)
	})
	return items, nil
}

// GetItem devolve um snapshot pelo id.
func (uc *QueryUseCase) GetItem(ctx context.Context, id string) (*entity.InventoryItem, error) {
	it, ok, err := uc.store.Items.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotFound
	}
	return it, nil
}

// ListRecords devolve o histórico de movimentações, mais recente primeiro.
// itemID vazio devolve o histórico global (limitado ao espelho).
func (uc *QueryUseCase) ListRecords(ctx context.Context, itemID string) ([]*entity.MovementRecord, error) {
	records, err := uc.store.Records.All(ctx)
	if err != nil {
		return nil, err
	}
	if itemID != "" {
		filtered := records[:0]
		for _, r := range records {
			if r.ItemID == itemID {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Date.After(records[j].Date)
	})
	return records, nil
}

// CountItems devolve o total de snapshots no espelho.
func (uc *QueryUseCase) CountItems(ctx context.Context) (int, error) {
	return uc.store.Items.Count(ctx)
}

// DeleteItem remove o snapshot e o lote correspondente do ledger (cascata
// remove os balances). A remoção entra na fila de sincronização na mesma
// transação e o espelho é revertido se a tx falhar.
func (uc *QueryUseCase) DeleteItem(ctx context.Context, id string) error {
	item, ok, err := uc.store.Items.Get(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}

	rollback := uc.store.Items.StageDelete(id)
	err = uc.txRunner.Run(ctx, func(r Repos) error {
		if err := r.Items.Delete(ctx, id); err != nil {
			return err
		}
		if item.BatchID != "" {
			if err := r.Batches.Delete(ctx, item.BatchID); err != nil {
				return err
			}
		}
		payload, err := json.Marshal(map[string]string{"id": id})
		if err != nil {
			return err
		}
		return r.Queue.Enqueue(ctx, &entity.SyncOperation{Action: entity.SyncActionDeleteItem, Payload: payload})
	})
	if err != nil {
		rollback()
		return err
	}

	uc.kicker.Kick()
	uc.log.Info().Str("item", id).Msg("item removido")
	return nil
}

// matchesSearch compara na forma canônica de ident.Normalize, para que a
// busca ignore caixa e acentos ("acido" encontra "Ácido").
func matchesSearch(it *entity.InventoryItem, needle string) bool {
	for _, field := range []string{it.Name, it.SapCode, it.Lot, it.CasNumber} {
		if strings.Contains(ident.Normalize(field), needle) {
			return true
		}
	}
	return false
}
