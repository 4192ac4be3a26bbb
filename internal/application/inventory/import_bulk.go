package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ojsouza/almoxarifado-api/internal/domain/entity"
	"github.com/ojsouza/almoxarifado-api/internal/domain/ident"
	"github.com/ojsouza/almoxarifado-api/internal/infrastructure/cache"
	"github.com/ojsouza/almoxarifado-api/pkg/logger"
)

// ImportRow linha plana de origem externa (planilha já parseada).
type ImportRow struct {
	SapCode         string
	Name            string
	Lot             string
	Category        string
	Unit            string
	Quantity        decimal.Decimal
	MinQuantity     decimal.Decimal
	Warehouse       string
	Cabinet         string
	Shelf           string
	Position        string
	Supplier        string
	ExpiryDate      *time.Time
	Status          string
	CasNumber       string
	ChemicalFormula string
	MolecularMass   string
	HazardRisks     []string
	Controlled      bool
	UnitCost        decimal.Decimal
}

// ImportOptions modos da importação.
type ImportOptions struct {
	Replace             bool // limpa tudo e re-deriva (destrutivo)
	OverwriteQuantities bool // merge: quantidade vem da linha, não do existente
}

// ImportResult contadores da importação.
type ImportResult struct {
	Total   int `json:"total"`
	Created int `json:"created"`
	Updated int `json:"updated"`
	Ignored int `json:"ignored"`
}

// ImportUseCase carrega linhas externas nas DUAS representações dentro de uma
// única transação: o snapshot é mesclado (ou substituído) e o ledger é
// re-derivado do conjunto mesclado com ids determinísticos — reimportar a
// mesma planilha é idempotente.
type ImportUseCase struct {
	txRunner   TxRunner
	store      *cache.Store
	classifier Classifier
	chemicals  ChemicalLookup
	log        *logger.Logger
}

// NewImportUseCase constrói o caso de uso.
func NewImportUseCase(txRunner TxRunner, store *cache.Store, classifier Classifier, chemicals ChemicalLookup, log *logger.Logger) *ImportUseCase {
	return &ImportUseCase{txRunner: txRunner, store: store, classifier: classifier, chemicals: chemicals, log: log}
}

// Import executa a importação. Em modo merge (padrão), campos vazios da linha
// NÃO apagam valores locais (protege enriquecimento local: fórmula química,
// riscos) e a quantidade existente é preservada salvo OverwriteQuantities.
// Qualquer erro invalida todos os espelhos (estado otimista vira suspeito) e
// propaga; a tx garante que não há escrita parcial durável.
func (uc *ImportUseCase) Import(ctx context.Context, rows []ImportRow, opts ImportOptions) (*ImportResult, error) {
	result := &ImportResult{Total: len(rows)}

	err := uc.txRunner.Run(ctx, func(r Repos) error {
		if opts.Replace {
			for _, clear := range []func(context.Context) error{
				r.Records.Clear, r.Items.Clear, r.Balances.Clear,
				r.Movements.Clear, r.Batches.Clear, r.Catalog.Clear,
				r.Partners.Clear, r.Locations.Clear,
			} {
				if err := clear(ctx); err != nil {
					return err
				}
			}
		}

		// Entidades do ledger deduplicadas por id determinístico.
		catalogs := make(map[string]*entity.CatalogProduct)
		batches := make(map[string]*entity.InventoryBatch)
		partners := make(map[string]*entity.BusinessPartner)
		locations := make(map[string]*entity.StorageLocation)
		balances := make(map[string]*entity.StockBalance)
		var items []*entity.InventoryItem

		now := time.Now()
		for _, row := range rows {
			if row.Name == "" && row.SapCode == "" {
				result.Ignored++
				continue
			}

			// Autoclassificação: linhas sem categoria ou identificador químico
			// recebem sugestão heurística; a saída passa pelo mesmo merge.
			if row.Category == "" {
				row.Category = uc.classifier.SuggestCategory(row.Name)
			}
			if row.CasNumber == "" {
				row.CasNumber = uc.classifier.SuggestCas(row.Name)
			}
			if row.CasNumber != "" && row.ChemicalFormula == "" {
				if formula, mass, hazards, err := uc.chemicals.Lookup(ctx, row.CasNumber); err == nil {
					row.ChemicalFormula = formula
					if row.MolecularMass == "" {
						row.MolecularMass = mass
					}
					if len(row.HazardRisks) == 0 {
						row.HazardRisks = hazards
					}
				}
			}

			incoming := rowToItem(row, now)
			final := incoming
			quantityFromRow := true

			if !opts.Replace {
				existing, err := r.Items.GetByID(ctx, incoming.ID)
				if err != nil {
					return err
				}
				if existing != nil {
					final = mergeItems(existing, incoming, opts.OverwriteQuantities)
					quantityFromRow = opts.OverwriteQuantities
					result.Updated++
				} else {
					result.Created++
				}
			} else {
				result.Created++
			}
			items = append(items, final)

			// Re-derivação do ledger a partir do item final (mesma tx, nunca
			// como segundo passo fora dela).
			cat := catalogs[final.CatalogID]
			if cat == nil {
				cat = &entity.CatalogProduct{ID: final.CatalogID, CreatedAt: now}
				catalogs[final.CatalogID] = cat
			}
			cat.SapCode = final.SapCode
			cat.Name = final.Name
			cat.Category = final.Category
			cat.BaseUnit = final.Unit
			cat.CasNumber = final.CasNumber
			cat.ChemicalFormula = final.ChemicalFormula
			cat.MolecularMass = final.MolecularMass
			cat.HazardRisks = final.HazardRisks
			cat.Controlled = final.Controlled
			cat.MinStock = final.MinQuantity
			cat.UpdatedAt = now

			var partnerID string
			if final.Supplier != "" {
				partnerID = ident.PartnerID(final.Supplier)
				partners[partnerID] = &entity.BusinessPartner{
					ID:             partnerID,
					Name:           final.Supplier,
					NormalizedName: ident.Normalize(final.Supplier),
					Kind:           "SUPPLIER",
					CreatedAt:      now,
				}
			}

			locations[final.LocationID] = &entity.StorageLocation{
				ID:        final.LocationID,
				Warehouse: row.Warehouse,
				Cabinet:   row.Cabinet,
				Shelf:     row.Shelf,
				Position:  row.Position,
				CreatedAt: now,
			}

			batches[final.BatchID] = &entity.InventoryBatch{
				ID:         final.BatchID,
				CatalogID:  final.CatalogID,
				Lot:        final.Lot,
				PartnerID:  partnerID,
				ExpiryDate: final.ExpiryDate,
				UnitCost:   row.UnitCost,
				Status:     final.Status,
				CreatedAt:  now,
				UpdatedAt:  now,
			}

			// Balance só quando a quantidade veio da linha: em merge sem
			// OverwriteQuantities o ledger existente permanece autoritativo.
			if quantityFromRow {
				balances[final.BatchID+"|"+final.LocationID] = &entity.StockBalance{
					BatchID:        final.BatchID,
					LocationID:     final.LocationID,
					Quantity:       final.Quantity,
					LastMovementAt: now,
				}
			}
		}

		if err := r.Partners.BulkUpsert(ctx, mapValues(partners)); err != nil {
			return err
		}
		if err := r.Locations.BulkUpsert(ctx, mapValues(locations)); err != nil {
			return err
		}
		if err := r.Catalog.BulkUpsert(ctx, mapValues(catalogs)); err != nil {
			return err
		}
		if err := r.Batches.BulkUpsert(ctx, mapValues(batches)); err != nil {
			return err
		}
		if err := r.Balances.BulkUpsert(ctx, mapValues(balances)); err != nil {
			return err
		}
		if err := r.Items.BulkUpsert(ctx, items); err != nil {
			return err
		}

		mode := "merge"
		if opts.Replace {
			mode = "replace"
		}
		return r.Log.Append(ctx, "info", "import",
			fmt.Sprintf("mode=%s total=%d created=%d updated=%d ignored=%d",
				mode, result.Total, result.Created, result.Updated, result.Ignored))
	})

	// Pós-importação o efeito incremental não compensa: invalida sempre.
	uc.store.InvalidateAll()
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Int("total", result.Total).
		Int("created", result.Created).
		Int("updated", result.Updated).
		Int("ignored", result.Ignored).
		Bool("replace", opts.Replace).
		Msg("importação concluída")
	return result, nil
}

// rowToItem converte a linha plana num InventoryItem com ids determinísticos.
func rowToItem(row ImportRow, now time.Time) *entity.InventoryItem {
	catalogID := ident.CatalogID(row.SapCode, row.Name)
	status := row.Status
	if status == "" {
		status = entity.BatchStatusActive
	}
	unit := row.Unit
	if unit == "" {
		unit = "un"
	}
	loc := entity.StorageLocation{
		Warehouse: row.Warehouse, Cabinet: row.Cabinet, Shelf: row.Shelf, Position: row.Position,
	}
	return &entity.InventoryItem{
		ID:              ident.ItemID(row.SapCode, row.Name, row.Lot),
		CatalogID:       catalogID,
		BatchID:         ident.BatchID(catalogID, row.Lot),
		LocationID:      ident.LocationID(row.Warehouse, row.Cabinet, row.Shelf, row.Position),
		SapCode:         row.SapCode,
		Name:            row.Name,
		Lot:             row.Lot,
		Category:        row.Category,
		Unit:            unit,
		Quantity:        row.Quantity.Round(quantityScale),
		MinQuantity:     row.MinQuantity,
		Location:        loc.FullPath(),
		Supplier:        row.Supplier,
		ExpiryDate:      row.ExpiryDate,
		Status:          status,
		CasNumber:       row.CasNumber,
		ChemicalFormula: row.ChemicalFormula,
		MolecularMass:   row.MolecularMass,
		HazardRisks:     row.HazardRisks,
		Controlled:      row.Controlled,
		UpdatedAt:       now,
	}
}

// mergeItems mescla campo a campo preferindo o valor da linha, salvo quando
// vazio — aí o valor local é preservado. Quantidade vem do existente, a menos
// que overwriteQuantities tenha sido pedido explicitamente.
func mergeItems(existing, incoming *entity.InventoryItem, overwriteQuantities bool) *entity.InventoryItem {
	merged := *incoming
	merged.ID = existing.ID

	if !overwriteQuantities {
		merged.Quantity = existing.Quantity
	}
	if merged.Category == "" {
		merged.Category = existing.Category
	}
	if merged.Unit == "" || merged.Unit == "un" && existing.Unit != "" {
		merged.Unit = existing.Unit
	}
	if merged.MinQuantity.IsZero() {
		merged.MinQuantity = existing.MinQuantity
	}
	if merged.Location == "" || merged.Location == "Não informado" && existing.Location != "" {
		merged.Location = existing.Location
		merged.LocationID = existing.LocationID
	}
	if merged.Supplier == "" {
		merged.Supplier = existing.Supplier
	}
	if merged.ExpiryDate == nil {
		merged.ExpiryDate = existing.ExpiryDate
	}
	if merged.CasNumber == "" {
		merged.CasNumber = existing.CasNumber
	}
	if merged.ChemicalFormula == "" {
		merged.ChemicalFormula = existing.ChemicalFormula
	}
	if merged.MolecularMass == "" {
		merged.MolecularMass = existing.MolecularMass
	}
	if len(merged.HazardRisks) == 0 {
		merged.HazardRisks = existing.HazardRisks
	}
	if !merged.Controlled {
		merged.Controlled = existing.Controlled
	}
	return &merged
}

func mapValues[T any](m map[string]T) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}
