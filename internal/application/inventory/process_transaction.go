package inventory

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/ojsouza/almoxarifado-api/internal/domain"
	"github.com/ojsouza/almoxarifado-api/internal/domain/entity"
	"github.com/ojsouza/almoxarifado-api/internal/domain/repository"
	"github.com/ojsouza/almoxarifado-api/internal/infrastructure/cache"
	"github.com/ojsouza/almoxarifado-api/pkg/logger"
)

// casas decimais da quantidade de snapshot; evita que deriva de ponto
// flutuante se acumule visivelmente na UI.
const quantityScale = 3

// TransactionInput entrada de ProcessTransaction.
// Para SAIDA/TRANSFERENCIA informar FromLocationID; para ENTRADA, ToLocationID.
// Em AJUSTE, Quantity é o valor absoluto alvo, não um delta.
type TransactionInput struct {
	ItemID         string
	Type           string
	Quantity       decimal.Decimal
	Date           time.Time
	Observation    string
	FromLocationID string
	ToLocationID   string
	UserID         string
}

// ProcessTransactionUseCase executa uma movimentação de estoque como unidade
// atômica sobre as DUAS representações: atualiza StockBalance e StockMovement
// (ledger) e o InventoryItem + MovementRecord (snapshot) na mesma transação.
// O espelho em memória é atualizado otimisticamente antes da escrita durável e
// revertido se ela falhar — o caller nunca reporta sucesso antes do commit.
type ProcessTransactionUseCase struct {
	txRunner TxRunner
	items    repository.ItemRepository
	store    *cache.Store
	kicker   SyncKicker
	log      *logger.Logger
}

// NewProcessTransactionUseCase constrói o caso de uso.
func NewProcessTransactionUseCase(
	txRunner TxRunner,
	items repository.ItemRepository,
	store *cache.Store,
	kicker SyncKicker,
	log *logger.Logger,
) *ProcessTransactionUseCase {
	return &ProcessTransactionUseCase{txRunner: txRunner, items: items, store: store, kicker: kicker, log: log}
}

// Process valida, aplica a movimentação e devolve o registro de histórico.
//
// Semântica por tipo:
//
//	ENTRADA       novo saldo = atual + quantidade; delta = +quantidade
//	SAIDA         novo saldo = atual - quantidade; delta = quantidade (magnitude)
//	AJUSTE        novo saldo = quantidade (valor absoluto); delta = |quantidade - atual|;
//	              o ledger de balances NÃO é tocado — inconsistência conhecida,
//	              tornada explícita no movimento e reconciliável pelo auditor
//	TRANSFERENCIA delta = quantidade; balance de origem e destino na mesma tx
//
// Pós-condição: snapshot e o balance do par (lote, local) afetado ficam
// consistentes; os demais locais do lote são responsabilidade do auditor.
func (uc *ProcessTransactionUseCase) Process(ctx context.Context, in TransactionInput) (*entity.MovementRecord, error) {
	if !entity.ValidMovementType(in.Type) {
		return nil, domain.ErrInvalidInput
	}
	if in.Quantity.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if in.Type == entity.MovementTypeTransferencia && (in.FromLocationID == "" || in.ToLocationID == "") {
		return nil, domain.ErrInvalidInput
	}

	item, err := uc.items.GetByID(ctx, in.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	// Validações rejeitadas ANTES de qualquer escrita.
	if in.Type == entity.MovementTypeSaida && in.Quantity.GreaterThan(item.Quantity) {
		return nil, domain.ErrInsufficientStock
	}

	now := in.Date
	if now.IsZero() {
		now = time.Now()
	}

	updated := *item
	var delta decimal.Decimal
	switch in.Type {
	case entity.MovementTypeEntrada:
		updated.Quantity = item.Quantity.Add(in.Quantity).Round(quantityScale)
		delta = in.Quantity
	case entity.MovementTypeSaida:
		updated.Quantity = item.Quantity.Sub(in.Quantity).Round(quantityScale)
		delta = in.Quantity
	case entity.MovementTypeAjuste:
		updated.Quantity = in.Quantity.Round(quantityScale)
		delta = in.Quantity.Sub(item.Quantity).Abs().Round(quantityScale)
	case entity.MovementTypeTransferencia:
		// Quantidade agregada do lote não muda numa transferência.
		delta = in.Quantity
	}
	updated.UpdatedAt = now

	movement := &entity.StockMovement{
		ID:             uuid.New().String(),
		BatchID:        item.BatchID,
		Type:           in.Type,
		Quantity:       delta,
		FromLocationID: in.FromLocationID,
		ToLocationID:   in.ToLocationID,
		PerformedBy:    in.UserID,
		Observation:    in.Observation,
		CreatedAt:      now,
	}
	record := &entity.MovementRecord{
		ID:          uuid.New().String(),
		ItemID:      item.ID,
		MovementID:  movement.ID,
		ProductName: item.Name,
		Lot:         item.Lot,
		Type:        in.Type,
		Quantity:    delta,
		PerformedBy: in.UserID,
		Observation: in.Observation,
		Date:        now,
	}

	// Mutação otimista: UI vê o efeito imediatamente; rollback se a tx falhar.
	rollbackItem := uc.store.Items.Stage(&updated)
	rollbackRecord := uc.store.Records.Stage(record)

	err = uc.txRunner.Run(ctx, func(r Repos) error {
		if err := uc.applyBalances(ctx, r, item, in, now); err != nil {
			return err
		}
		if err := r.Movements.Create(ctx, movement); err != nil {
			return err
		}
		if err := r.Items.Upsert(ctx, &updated); err != nil {
			return err
		}
		if err := r.Records.Create(ctx, record); err != nil {
			return err
		}
		// Outbox na MESMA transação: um crash entre commit e notificação
		// remota não perde a obrigação de sincronizar.
		return uc.enqueueOutbox(ctx, r.Queue, &updated, record)
	})
	if err != nil {
		rollbackRecord()
		rollbackItem()
		return nil, err
	}

	// Pós-commit: replicação remota em segundo plano, nunca bloqueia o caller.
	uc.kicker.Kick()

	uc.log.Info().
		Str("item", item.ID).
		Str("tipo", in.Type).
		Str("delta", delta.String()).
		Msg("movimentação registrada")
	return record, nil
}

// applyBalances aplica o efeito da movimentação no ledger de balances.
// AJUSTE não toca balances (ver doc de Process).
func (uc *ProcessTransactionUseCase) applyBalances(ctx context.Context, r Repos, item *entity.InventoryItem, in TransactionInput, now time.Time) error {
	if item.BatchID == "" || in.Type == entity.MovementTypeAjuste {
		return nil
	}
	switch in.Type {
	case entity.MovementTypeEntrada:
		loc := in.ToLocationID
		if loc == "" {
			loc = item.LocationID
		}
		return uc.shiftBalance(ctx, r, item.BatchID, loc, in.Quantity, now)
	case entity.MovementTypeSaida:
		loc := in.FromLocationID
		if loc == "" {
			loc = item.LocationID
		}
		return uc.shiftBalance(ctx, r, item.BatchID, loc, in.Quantity.Neg(), now)
	case entity.MovementTypeTransferencia:
		if err := uc.shiftBalance(ctx, r, item.BatchID, in.FromLocationID, in.Quantity.Neg(), now); err != nil {
			return err
		}
		return uc.shiftBalance(ctx, r, item.BatchID, in.ToLocationID, in.Quantity, now)
	}
	return nil
}

// shiftBalance soma delta ao balance do par, bloqueando a linha. Saldo nunca
// fica negativo: o excedente vira deriva entre locais, que o auditor detecta.
func (uc *ProcessTransactionUseCase) shiftBalance(ctx context.Context, r Repos, batchID, locationID string, delta decimal.Decimal, now time.Time) error {
	if locationID == "" {
		return nil
	}
	bal, err := r.Balances.GetForUpdate(ctx, batchID, locationID)
	if err != nil {
		return err
	}
	next := bal.Quantity.Add(delta)
	if next.IsNegative() {
		next = decimal.Zero
	}
	bal.Quantity = next.Round(quantityScale)
	bal.LastMovementAt = now
	return r.Balances.Upsert(ctx, bal)
}

func (uc *ProcessTransactionUseCase) enqueueOutbox(ctx context.Context, queue repository.SyncQueueRepository, item *entity.InventoryItem, record *entity.MovementRecord) error {
	itemPayload, err := json.Marshal(item)
	if err != nil {
		return err
	}
	if err := queue.Enqueue(ctx, &entity.SyncOperation{Action: entity.SyncActionUpsertItem, Payload: itemPayload}); err != nil {
		return err
	}
	recPayload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return queue.Enqueue(ctx, &entity.SyncOperation{Action: entity.SyncActionLogMovement, Payload: recPayload})
}
