package inventory

import (
	"context"

	"github.com/ojsouza/almoxarifado-api/internal/domain/repository"
)

// Repos agrupa os repositórios atados a uma mesma transação de banco.
// A fila de sincronização (outbox) participa da transação: a obrigação de
// replicar nasce junto com a mutação de negócio, nunca depois do commit.
type Repos struct {
	Catalog   repository.CatalogRepository
	Batches   repository.BatchRepository
	Locations repository.LocationRepository
	Partners  repository.PartnerRepository
	Balances  repository.BalanceRepository
	Movements repository.StockMovementRepository
	Items     repository.ItemRepository
	Records   repository.RecordRepository
	Queue     repository.SyncQueueRepository
	Log       repository.SystemLogRepository
}

// TxRunner executa uma função dentro de uma transação de BD, passando
// repositórios atados àquela tx. Garante atomicidade: ou todas as escritas
// das duas representações ficam visíveis, ou nenhuma.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}

// SyncKicker agenda um drain assíncrono da fila de sincronização. O caminho
// local nunca bloqueia nem falha por causa da replicação remota.
type SyncKicker interface {
	Kick()
}

// Classifier é o colaborador externo de autoclassificação: sugere categoria
// e identificador químico para linhas importadas sem esses campos. A saída
// flui pelas mesmas regras de merge; a implementação fica fora deste pacote.
type Classifier interface {
	SuggestCategory(name string) string
	SuggestCas(name string) string
}

// ChemicalLookup é o colaborador externo de enriquecimento químico.
type ChemicalLookup interface {
	Lookup(ctx context.Context, casNumber string) (formula, molecularMass string, hazardKeywords []string, err error)
}
