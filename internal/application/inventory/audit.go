package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ojsouza/almoxarifado-api/internal/domain/entity"
	"github.com/ojsouza/almoxarifado-api/internal/domain/ident"
	"github.com/ojsouza/almoxarifado-api/internal/domain/repository"
	"github.com/ojsouza/almoxarifado-api/internal/infrastructure/cache"
	"github.com/ojsouza/almoxarifado-api/pkg/logger"
)

// tolerância de comparação entre ledger e snapshot (epsilon de ponto flutuante).
var auditTolerance = decimal.NewFromFloat(0.001)

// AuditResult resultado de uma passada do auditor.
type AuditResult struct {
	Matches     int `json:"matches"`
	Mismatches  int `json:"mismatches"`
	Corrections int `json:"corrections"`
}

// LedgerAuditor compara as duas representações e, opcionalmente, corrige o
// snapshot para igualar o ledger (o ledger é autoritativo).
//
// É uma passada de reconciliação de melhor esforço, não uma transação com
// lock: roda contra um store vivo e tolera mudanças entre a varredura de
// balances e a de snapshots. Rodar repetidamente é idempotente: com o store já
// consistente, fix=true reporta zero correções.
type LedgerAuditor struct {
	balances repository.BalanceRepository
	items    repository.ItemRepository
	sysLog   repository.SystemLogRepository
	store    *cache.Store
	log      *logger.Logger
}

// NewLedgerAuditor constrói o auditor sobre repositórios atados ao pool.
func NewLedgerAuditor(
	balances repository.BalanceRepository,
	items repository.ItemRepository,
	sysLog repository.SystemLogRepository,
	store *cache.Store,
	log *logger.Logger,
) *LedgerAuditor {
	return &LedgerAuditor{balances: balances, items: items, sysLog: sysLog, store: store, log: log}
}

// Run executa a auditoria. Memória limitada ao número de lotes distintos:
// as duas tabelas são percorridas em streaming, nunca materializadas.
func (a *LedgerAuditor) Run(ctx context.Context, fix bool) (*AuditResult, error) {
	// Passada 1: soma de balances por lote.
	sums := make(map[string]decimal.Decimal)
	err := a.balances.StreamSums(ctx, func(batchID string, sum decimal.Decimal) error {
		sums[batchID] = sum
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Passada 2: snapshots comparados com a soma do seu lote.
	result := &AuditResult{}
	var corrections []*entity.InventoryItem
	err = a.items.Stream(ctx, func(it *entity.InventoryItem) error {
		key := it.BatchID
		if key == "" {
			// Linha legada sem lote: id sintético determinístico por
			// sapCode+nome, para que linhas irmãs caiam no mesmo grupo.
			key = ident.SyntheticBatchKey(it.SapCode, it.Name)
		}
		ledgerSum, ok := sums[key]
		if !ok {
			if it.Quantity.IsPositive() {
				// Órfão: snapshot exibe estoque que o ledger desconhece.
				result.Mismatches++
				if fix {
					fixed := *it
					fixed.Quantity = decimal.Zero
					fixed.UpdatedAt = time.Now()
					corrections = append(corrections, &fixed)
				}
				return nil
			}
			result.Matches++
			return nil
		}
		if it.Quantity.Sub(ledgerSum).Abs().LessThanOrEqual(auditTolerance) {
			result.Matches++
			return nil
		}
		result.Mismatches++
		if fix {
			fixed := *it
			fixed.Quantity = ledgerSum.Round(quantityScale)
			fixed.UpdatedAt = time.Now()
			corrections = append(corrections, &fixed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if fix && len(corrections) > 0 {
		// Correções em UM lote; depois o espelho é invalidado, não mesclado:
		// potencialmente muitas linhas mudaram.
		if err := a.items.BulkUpsert(ctx, corrections); err != nil {
			a.store.Items.Invalidate()
			return nil, err
		}
		result.Corrections = len(corrections)
		a.store.Items.Invalidate()
	}

	detail := fmt.Sprintf("matches=%d mismatches=%d corrections=%d", result.Matches, result.Mismatches, result.Corrections)
	if err := a.sysLog.Append(ctx, "info", "ledger_audit", detail); err != nil {
		a.log.Warn().Err(err).Msg("falha ao gravar log de auditoria")
	}
	a.log.Info().
		Int("matches", result.Matches).
		Int("mismatches", result.Mismatches).
		Int("corrections", result.Corrections).
		Bool("fix", fix).
		Msg("auditoria do ledger concluída")
	return result, nil
}
