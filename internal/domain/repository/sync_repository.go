package repository

import (
	"context"

	"github.com/ojsouza/almoxarifado-api/internal/domain/entity"
)

// SyncQueueRepository fila FIFO durável de operações pendentes de replicação
// remota (outbox). Enqueue participa da mesma transação da mutação de negócio
// quando obtido via TxRunner.
type SyncQueueRepository interface {
	Enqueue(ctx context.Context, op *entity.SyncOperation) error
	// OldestPending devolve até limit operações em ordem FIFO.
	OldestPending(ctx context.Context, limit int) ([]*entity.SyncOperation, error)
	Delete(ctx context.Context, id int64) error
	// MarkFailed incrementa retryCount e registra o último erro.
	MarkFailed(ctx context.Context, id int64, lastError string) error
	Count(ctx context.Context) (int64, error)
}

// SystemLogRepository registro append-only de eventos do sistema
// (auditoria, importação, sincronização).
type SystemLogRepository interface {
	Append(ctx context.Context, level, event, detail string) error
}

// ConfigRepository chave-valor de configuração do sistema.
type ConfigRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}
