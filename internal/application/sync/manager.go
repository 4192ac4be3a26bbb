package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/ojsouza/almoxarifado-api/internal/application/inventory"
	"github.com/ojsouza/almoxarifado-api/internal/domain"
	"github.com/ojsouza/almoxarifado-api/internal/domain/repository"
	"github.com/ojsouza/almoxarifado-api/internal/infrastructure/cache"
	"github.com/ojsouza/almoxarifado-api/pkg/config"
	"github.com/ojsouza/almoxarifado-api/pkg/logger"
)

// chave em system_config com o instante do último download completo.
const lastSyncKey = "last_sync_at"

// Manager coordena a sincronização bidirecional com o backend remoto: o
// download completo (remoto vence) e a visão de status da fila local.
type Manager struct {
	txRunner inventory.TxRunner
	store    *cache.Store
	queue    *Queue
	backend  Backend
	sysCfg   repository.ConfigRepository
	cfg      config.RemoteConfig
	log      *logger.Logger
}

// NewManager constrói o coordenador.
func NewManager(
	txRunner inventory.TxRunner,
	store *cache.Store,
	queue *Queue,
	backend Backend,
	sysCfg repository.ConfigRepository,
	cfg config.RemoteConfig,
	log *logger.Logger,
) *Manager {
	return &Manager{txRunner: txRunner, store: store, queue: queue, backend: backend, sysCfg: sysCfg, cfg: cfg, log: log}
}

// Status visão instantânea da sincronização.
type Status struct {
	RemoteConfigured bool   `json:"remoteConfigured"`
	Online           bool   `json:"online"`
	PendingOps       int64  `json:"pendingOps"`
	Draining         bool   `json:"draining"`
	LastSyncAt       string `json:"lastSyncAt,omitempty"` // RFC 3339; vazio se nunca sincronizou
}

// Status devolve o estado atual da sincronização.
func (m *Manager) Status(ctx context.Context) (*Status, error) {
	pending, err := m.queue.Count(ctx)
	if err != nil {
		return nil, err
	}
	lastSync, err := m.sysCfg.Get(ctx, lastSyncKey)
	if err != nil {
		return nil, err
	}
	return &Status{
		RemoteConfigured: m.cfg.Configured(),
		Online:           m.queue.Online(),
		PendingOps:       pending,
		Draining:         m.queue.Draining(),
		LastSyncAt:       lastSync,
	}, nil
}

// SyncFromCloud substitui o estado local pelo remoto, nas duas representações,
// numa única transação.
//
// Pré-condição dura: a fila local precisa estar VAZIA — mudanças locais ainda
// não replicadas seriam sobrescritas pelo download. Com pendências, dispara o
// drain e devolve ErrPendingLocalChanges; o caller tenta de novo depois.
func (m *Manager) SyncFromCloud(ctx context.Context) error {
	if m.backend == nil || !m.cfg.Configured() {
		return domain.ErrRemoteNotConfigured
	}

	pending, err := m.queue.Count(ctx)
	if err != nil {
		return err
	}
	if pending > 0 {
		m.queue.Kick()
		return domain.ErrPendingLocalChanges
	}

	payload, err := m.backend.ReadFullDB(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRemoteUnavailable, err)
	}

	err = m.txRunner.Run(ctx, func(r inventory.Repos) error {
		for _, clear := range []func(context.Context) error{
			r.Records.Clear, r.Items.Clear, r.Balances.Clear,
			r.Batches.Clear, r.Catalog.Clear,
		} {
			if err := clear(ctx); err != nil {
				return err
			}
		}
		if err := r.Catalog.BulkUpsert(ctx, payload.Catalog); err != nil {
			return err
		}
		if err := r.Batches.BulkUpsert(ctx, payload.Batches); err != nil {
			return err
		}
		if err := r.Balances.BulkUpsert(ctx, payload.Balances); err != nil {
			return err
		}
		if err := r.Items.BulkUpsert(ctx, payload.Items); err != nil {
			return err
		}
		if err := r.Records.BulkUpsert(ctx, payload.Records); err != nil {
			return err
		}
		return r.Log.Append(ctx, "info", "sync_from_cloud",
			fmt.Sprintf("items=%d records=%d", len(payload.Items), len(payload.Records)))
	})

	// Sucesso ou falha, os espelhos são suspeitos após tocar todas as tabelas.
	m.store.InvalidateAll()
	if err != nil {
		m.log.Error().Err(err).Msg("sync remoto falhou; espelhos invalidados")
		return err
	}

	if err := m.sysCfg.Set(ctx, lastSyncKey, time.Now().Format(time.RFC3339)); err != nil {
		m.log.Warn().Err(err).Msg("falha ao registrar instante do sync")
	}
	m.log.Info().
		Int("items", len(payload.Items)).
		Int("records", len(payload.Records)).
		Msg("estado local substituído pelo remoto")
	return nil
}
