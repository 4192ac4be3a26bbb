package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/ojsouza/almoxarifado-api/internal/domain/entity"
)

// ItemResponse snapshot de inventário para a UI.
type ItemResponse struct {
	ID              string          `json:"id"`
	CatalogID       string          `json:"catalogId,omitempty"`
	BatchID         string          `json:"batchId,omitempty"`
	SapCode         string          `json:"sapCode"`
	Name            string          `json:"name"`
	Lot             string          `json:"lot"`
	Category        string          `json:"category"`
	Unit            string          `json:"unit"`
	Quantity        decimal.Decimal `json:"quantity"`
	MinQuantity     decimal.Decimal `json:"minQuantity"`
	Location        string          `json:"location"`
	Supplier        string          `json:"supplier,omitempty"`
	ExpiryDate      *time.Time      `json:"expiryDate,omitempty"`
	Status          string          `json:"status"`
	CasNumber       string          `json:"casNumber,omitempty"`
	ChemicalFormula string          `json:"chemicalFormula,omitempty"`
	MolecularMass   string          `json:"molecularMass,omitempty"`
	HazardRisks     []string        `json:"hazardRisks,omitempty"`
	Controlled      bool            `json:"controlled"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// ToItemResponse converte o snapshot de domínio para a resposta HTTP.
func ToItemResponse(it *entity.InventoryItem) ItemResponse {
	return ItemResponse{
		ID:              it.ID,
		CatalogID:       it.CatalogID,
		BatchID:         it.BatchID,
		SapCode:         it.SapCode,
		Name:            it.Name,
		Lot:             it.Lot,
		Category:        it.Category,
		Unit:            it.Unit,
		Quantity:        it.Quantity,
		MinQuantity:     it.MinQuantity,
		Location:        it.Location,
		Supplier:        it.Supplier,
		ExpiryDate:      it.ExpiryDate,
		Status:          it.Status,
		CasNumber:       it.CasNumber,
		ChemicalFormula: it.ChemicalFormula,
		MolecularMass:   it.MolecularMass,
		HazardRisks:     it.HazardRisks,
		Controlled:      it.Controlled,
		UpdatedAt:       it.UpdatedAt,
	}
}

// ToItemResponses converte em lote.
func ToItemResponses(its []*entity.InventoryItem) []ItemResponse {
	out := make([]ItemResponse, len(its))
	for i, it := range its {
		out[i] = ToItemResponse(it)
	}
	return out
}

// RecordResponse linha do histórico de movimentações.
type RecordResponse struct {
	ID          string          `json:"id"`
	ItemID      string          `json:"itemId"`
	ProductName string          `json:"productName"`
	Lot         string          `json:"lot"`
	Type        string          `json:"type"`
	Quantity    decimal.Decimal `json:"quantity"`
	PerformedBy string          `json:"performedBy,omitempty"`
	Observation string          `json:"observation,omitempty"`
	Date        time.Time       `json:"date"`
}

// ToRecordResponse converte o registro de domínio para a resposta HTTP.
func ToRecordResponse(r *entity.MovementRecord) RecordResponse {
	return RecordResponse{
		ID:          r.ID,
		ItemID:      r.ItemID,
		ProductName: r.ProductName,
		Lot:         r.Lot,
		Type:        r.Type,
		Quantity:    r.Quantity,
		PerformedBy: r.PerformedBy,
		Observation: r.Observation,
		Date:        r.Date,
	}
}

// ToRecordResponses converte em lote.
func ToRecordResponses(rs []*entity.MovementRecord) []RecordResponse {
	out := make([]RecordResponse, len(rs))
	for i, r := range rs {
		out[i] = ToRecordResponse(r)
	}
	return out
}

// TransactionRequest payload de movimentação de estoque.
// Em AJUSTE, quantity é o valor absoluto alvo, não um delta.
type TransactionRequest struct {
	ItemID         string          `json:"itemId" validate:"required"`
	Type           string          `json:"type" validate:"required"` // ENTRADA, SAIDA, AJUSTE, TRANSFERENCIA
	Quantity       decimal.Decimal `json:"quantity"`
	Date           *time.Time      `json:"date,omitempty"`
	Observation    string          `json:"observation,omitempty"`
	FromLocationID string          `json:"fromLocationId,omitempty"`
	ToLocationID   string          `json:"toLocationId,omitempty"`
}

// ImportItemRequest linha de importação (planilha já parseada no cliente).
type ImportItemRequest struct {
	SapCode         string          `json:"sapCode"`
	Name            string          `json:"name"`
	Lot             string          `json:"lot"`
	Category        string          `json:"category"`
	Unit            string          `json:"unit"`
	Quantity        decimal.Decimal `json:"quantity"`
	MinQuantity     decimal.Decimal `json:"minQuantity"`
	Warehouse       string          `json:"warehouse"`
	Cabinet         string          `json:"cabinet"`
	Shelf           string          `json:"shelf"`
	Position        string          `json:"position"`
	Supplier        string          `json:"supplier"`
	ExpiryDate      *time.Time      `json:"expiryDate,omitempty"`
	Status          string          `json:"status"`
	CasNumber       string          `json:"casNumber"`
	ChemicalFormula string          `json:"chemicalFormula"`
	MolecularMass   string          `json:"molecularMass"`
	HazardRisks     []string        `json:"hazardRisks"`
	Controlled      bool            `json:"controlled"`
	UnitCost        decimal.Decimal `json:"unitCost"`
}

// ImportRequest payload da importação em massa.
type ImportRequest struct {
	Items               []ImportItemRequest `json:"items" validate:"required"`
	Replace             bool                `json:"replace"`
	OverwriteQuantities bool                `json:"overwriteQuantities"`
}
