package sync

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ojsouza/almoxarifado-api/internal/domain/repository"
	"github.com/ojsouza/almoxarifado-api/pkg/config"
	"github.com/ojsouza/almoxarifado-api/pkg/logger"
)

// janela de debounce do Kick: rajadas de mutações disparam UM drain.
const kickWindow = 100 * time.Millisecond

// Queue drena a fila durável de operações pendentes para o backend remoto.
//
// Disciplina FIFO estrita por lotes; single-flight (nunca dois drains
// concorrentes); cada operação tem um orçamento de tentativas e é descartada
// ao esgotá-lo, para que uma operação envenenada não trave a fila para sempre.
// Implementa inventory.SyncKicker.
type Queue struct {
	repo    repository.SyncQueueRepository
	sysLog  repository.SystemLogRepository
	backend Backend
	cfg     config.SyncConfig
	log     *logger.Logger

	draining atomic.Bool
	online   atomic.Bool

	kickMu    sync.Mutex
	kickTimer *time.Timer
}

// NewQueue constrói o drainer. backend nil desliga a replicação (modo offline
// puro): Kick e Drain viram no-ops e a fila só acumula.
func NewQueue(
	repo repository.SyncQueueRepository,
	sysLog repository.SystemLogRepository,
	backend Backend,
	cfg config.SyncConfig,
	log *logger.Logger,
) *Queue {
	q := &Queue{repo: repo, sysLog: sysLog, backend: backend, cfg: cfg, log: log}
	q.online.Store(true)
	return q
}

// Kick agenda um drain em segundo plano. Debounced: chamadas dentro da janela
// são coalescidas num único drain. Nunca bloqueia o caller.
func (q *Queue) Kick() {
	if q.backend == nil {
		return
	}
	q.kickMu.Lock()
	defer q.kickMu.Unlock()
	if q.kickTimer != nil {
		q.kickTimer.Stop()
	}
	q.kickTimer = time.AfterFunc(kickWindow, func() {
		q.Drain(context.Background())
	})
}

// SetOnline informa o estado de conectividade. A transição offline→online
// dispara um drain (as operações acumuladas offline saem imediatamente).
func (q *Queue) SetOnline(online bool) {
	was := q.online.Swap(online)
	if online && !was {
		q.Kick()
	}
}

// Online devolve o último estado de conectividade informado.
func (q *Queue) Online() bool {
	return q.online.Load()
}

// Count devolve o tamanho atual da fila durável.
func (q *Queue) Count(ctx context.Context) (int64, error) {
	return q.repo.Count(ctx)
}

// Draining indica se há um drain em andamento.
func (q *Queue) Draining() bool {
	return q.draining.Load()
}

// StartAutoDrain dispara um drain periódico até o contexto encerrar.
// Rede de segurança para operações que falharam em todos os gatilhos
// orientados a evento (Kick pós-mutação, transição de conectividade).
func (q *Queue) StartAutoDrain(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(q.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				q.Drain(ctx)
			}
		}
	}()
}

// Drain processa a fila em lotes FIFO até esvaziar ou até o primeiro lote com
// falha (de transporte ou de operação). Se outro drain está em andamento,
// retorna imediatamente (o drain ativo verá as operações novas).
func (q *Queue) Drain(ctx context.Context) {
	if q.backend == nil || !q.online.Load() {
		return
	}
	if !q.draining.CompareAndSwap(false, true) {
		return
	}
	defer q.draining.Store(false)

	for {
		ops, err := q.repo.OldestPending(ctx, q.cfg.BatchSize)
		if err != nil {
			q.log.Error().Err(err).Msg("falha ao ler fila de sincronização")
			return
		}
		if len(ops) == 0 {
			return
		}

		items := make([]BatchItem, len(ops))
		byID := make(map[int64]int, len(ops))
		for i, op := range ops {
			items[i] = BatchItem{ID: op.ID, Action: op.Action, Payload: op.Payload}
			byID[op.ID] = i
		}

		results, err := q.backend.BatchRequest(ctx, items)
		if err != nil {
			// Transporte caiu: o lote inteiro conta como uma tentativa.
			q.log.Warn().Err(err).Int("lote", len(ops)).Msg("backend remoto inacessível")
			for _, op := range ops {
				q.fail(ctx, op.ID, op.RetryCount, op.Action, err.Error())
			}
			return
		}

		failed := false
		for _, res := range results {
			i, ok := byID[res.ID]
			if !ok {
				continue
			}
			op := ops[i]
			if res.Success {
				if err := q.repo.Delete(ctx, op.ID); err != nil {
					q.log.Error().Err(err).Int64("op", op.ID).Msg("falha ao remover operação sincronizada")
					return
				}
				continue
			}
			q.fail(ctx, op.ID, op.RetryCount, op.Action, res.Error)
			failed = true
		}
		if failed {
			// Operação falhada permanece na frente da fila FIFO; continuar o
			// loop a reenviaria na hora, queimando o orçamento de tentativas
			// num único drain. Cada gatilho (ticker, kick, transição de
			// conectividade) dá no máximo UMA tentativa a cada operação.
			return
		}
	}
}

// fail registra uma tentativa falhada; ao esgotar o orçamento a operação é
// descartada e o descarte vai para o log do sistema (dado local pode divergir
// do remoto a partir daqui — visível na auditoria).
func (q *Queue) fail(ctx context.Context, id int64, retryCount int, action, cause string) {
	if retryCount+1 >= q.cfg.MaxRetries {
		if err := q.repo.Delete(ctx, id); err != nil {
			q.log.Error().Err(err).Int64("op", id).Msg("falha ao descartar operação")
			return
		}
		q.log.Warn().Int64("op", id).Str("acao", action).Str("causa", cause).Msg("operação descartada após esgotar tentativas")
		if err := q.sysLog.Append(ctx, "warn", "sync_drop", action+": "+cause); err != nil {
			q.log.Warn().Err(err).Msg("falha ao registrar descarte")
		}
		return
	}
	if err := q.repo.MarkFailed(ctx, id, cause); err != nil {
		q.log.Error().Err(err).Int64("op", id).Msg("falha ao marcar tentativa")
	}
}
