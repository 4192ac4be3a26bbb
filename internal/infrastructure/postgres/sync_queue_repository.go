package postgres

import (
	"context"
	"fmt"

	"github.com/ojsouza/almoxarifado-api/internal/domain/entity"
	"github.com/ojsouza/almoxarifado-api/internal/domain/repository"
)

var _ repository.SyncQueueRepository = (*SyncQueueRepo)(nil)

// SyncQueueRepo fila durável de operações pendentes (outbox) sobre PostgreSQL.
// A ordem FIFO é dada pelo id BIGSERIAL.
type SyncQueueRepo struct {
	q Querier
}

// NewSyncQueueRepository constrói o adaptador. Passar pool ou tx (Querier):
// dentro de uma tx, o enqueue é atômico com a mutação de negócio.
func NewSyncQueueRepository(q Querier) *SyncQueueRepo {
	return &SyncQueueRepo{q: q}
}

// Enqueue acrescenta uma operação pendente com retryCount zero.
func (r *SyncQueueRepo) Enqueue(ctx context.Context, op *entity.SyncOperation) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO sync_queue (action, payload, retry_count, last_error, created_at)
		VALUES ($1, $2, 0, '', now())
		RETURNING id, created_at`,
		op.Action, op.Payload,
	).Scan(&op.ID, &op.CreatedAt)
	if err != nil {
		return fmt.Errorf("enqueue sync operation: %w", err)
	}
	return nil
}

// OldestPending devolve até limit operações na ordem de enfileiramento.
func (r *SyncQueueRepo) OldestPending(ctx context.Context, limit int) ([]*entity.SyncOperation, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, action, payload, retry_count, last_error, created_at
		FROM sync_queue ORDER BY id LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list sync queue: %w", err)
	}
	defer rows.Close()
	var out []*entity.SyncOperation
	for rows.Next() {
		var op entity.SyncOperation
		if err := rows.Scan(&op.ID, &op.Action, &op.Payload, &op.RetryCount, &op.LastError, &op.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan sync operation: %w", err)
		}
		out = append(out, &op)
	}
	return out, rows.Err()
}

// Delete remove uma operação concluída (ou descartada).
func (r *SyncQueueRepo) Delete(ctx context.Context, id int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM sync_queue WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete sync operation: %w", err)
	}
	return nil
}

// MarkFailed incrementa retryCount e registra o último erro.
func (r *SyncQueueRepo) MarkFailed(ctx context.Context, id int64, lastError string) error {
	if _, err := r.q.Exec(ctx, `
		UPDATE sync_queue SET retry_count = retry_count + 1, last_error = $2
		WHERE id = $1`, id, lastError); err != nil {
		return fmt.Errorf("mark sync operation failed: %w", err)
	}
	return nil
}

// Count devolve o número de operações pendentes.
func (r *SyncQueueRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM sync_queue`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sync queue: %w", err)
	}
	return n, nil
}
