package cache

import (
	"context"

	"github.com/ojsouza/almoxarifado-api/internal/domain/entity"
	"github.com/ojsouza/almoxarifado-api/internal/domain/repository"
)

// histórico espelhado em memória: só as linhas mais recentes interessam à UI.
const recordMirrorLimit = 5000

// Store agrupa os espelhos das tabelas lidas diretamente pela UI.
// Uma instância por processo; todos os consumidores compartilham os espelhos
// por trás dos acessores da Table (que devolvem cópias).
type Store struct {
	Items   *Table[*entity.InventoryItem]
	Records *Table[*entity.MovementRecord]
}

// NewStore cria os espelhos (frios) sobre os repositórios duráveis.
func NewStore(items repository.ItemRepository, records repository.RecordRepository) *Store {
	return &Store{
		Items: NewTable(
			func(it *entity.InventoryItem) string { return it.ID },
			func(ctx context.Context) ([]*entity.InventoryItem, error) { return items.List(ctx) },
			nil,
		),
		Records: NewTable(
			func(r *entity.MovementRecord) string { return r.ID },
			func(ctx context.Context) ([]*entity.MovementRecord, error) {
				return records.List(ctx, recordMirrorLimit)
			},
			nil,
		),
	}
}

// InvalidateAll descarta todos os espelhos. Chamado após importação, correção
// de auditoria, sync remoto ou qualquer exceção dentro de transação: depois de
// um erro os espelhos são suspeitos e não podem servir estado otimista velho.
func (s *Store) InvalidateAll() {
	s.Items.Invalidate()
	s.Records.Invalidate()
}
