package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ojsouza/almoxarifado-api/internal/domain"
	"github.com/ojsouza/almoxarifado-api/internal/domain/entity"
	"github.com/ojsouza/almoxarifado-api/internal/domain/ident"
	"github.com/ojsouza/almoxarifado-api/internal/infrastructure/cache"
)

// SnapshotRebuilder recomputa o InventoryItem de um lote deterministicamente a
// partir do ledger: agrega os balances, escolhe o local primário e copia os
// campos descritivos de catálogo e lote. Função pura do estado do ledger,
// exceto timestamps. Usado por todo caminho que muta balances fora do
// orquestrador (ingestão do sync remoto, reconciliação pós-importação).
type SnapshotRebuilder struct {
	txRunner TxRunner
	store    *cache.Store
}

// NewSnapshotRebuilder constrói o rebuilder.
func NewSnapshotRebuilder(txRunner TxRunner, store *cache.Store) *SnapshotRebuilder {
	return &SnapshotRebuilder{txRunner: txRunner, store: store}
}

// Rebuild reconstrói e persiste o snapshot do lote. Devolve o item resultante.
func (s *SnapshotRebuilder) Rebuild(ctx context.Context, batchID string) (*entity.InventoryItem, error) {
	var result *entity.InventoryItem

	err := s.txRunner.Run(ctx, func(r Repos) error {
		it, err := RebuildItem(ctx, r, batchID)
		if err != nil {
			return err
		}
		result = it
		return r.Items.Upsert(ctx, it)
	})
	if err != nil {
		return nil, err
	}

	s.store.Items.Stage(result)
	return result, nil
}

// RebuildItem monta o snapshot de um lote a partir dos repositórios dados
// (tipicamente atados a uma tx maior). Não persiste nada.
func RebuildItem(ctx context.Context, r Repos, batchID string) (*entity.InventoryItem, error) {
	batch, err := r.Batches.GetByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, domain.ErrNotFound
	}
	catalog, err := r.Catalog.GetByID(ctx, batch.CatalogID)
	if err != nil {
		return nil, err
	}
	if catalog == nil {
		return nil, domain.ErrNotFound
	}

	balances, err := r.Balances.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, b := range balances {
		total = total.Add(b.Quantity)
	}
	// Local primário: balance de maior quantidade (empate: primeiro visto).
	sort.SliceStable(balances, func(i, j int) bool {
		return balances[i].Quantity.GreaterThan(balances[j].Quantity)
	})

	var primary entity.StorageLocation
	if len(balances) > 0 {
		if loc, err := r.Locations.GetByID(ctx, balances[0].LocationID); err != nil {
			return nil, err
		} else if loc != nil {
			primary = *loc
		}
	}

	supplier := ""
	if batch.PartnerID != "" {
		if p, err := r.Partners.GetByID(ctx, batch.PartnerID); err != nil {
			return nil, err
		} else if p != nil {
			supplier = p.Name
		}
	}

	// Reaproveita o id do snapshot existente do lote, se houver.
	itemID := ident.ItemID(catalog.SapCode, catalog.Name, batch.Lot)
	if existing, err := r.Items.GetByBatch(ctx, batchID); err != nil {
		return nil, err
	} else if existing != nil {
		itemID = existing.ID
	}

	return &entity.InventoryItem{
		ID:              itemID,
		CatalogID:       catalog.ID,
		BatchID:         batch.ID,
		LocationID:      primary.ID,
		SapCode:         catalog.SapCode,
		Name:            catalog.Name,
		Lot:             batch.Lot,
		Category:        catalog.Category,
		Unit:            catalog.BaseUnit,
		Quantity:        total.Round(quantityScale),
		MinQuantity:     catalog.MinStock,
		Location:        primary.FullPath(),
		Supplier:        supplier,
		ExpiryDate:      batch.ExpiryDate,
		Status:          batch.Status,
		CasNumber:       catalog.CasNumber,
		ChemicalFormula: catalog.ChemicalFormula,
		MolecularMass:   catalog.MolecularMass,
		HazardRisks:     catalog.HazardRisks,
		Controlled:      catalog.Controlled,
		UpdatedAt:       time.Now(),
	}, nil
}
