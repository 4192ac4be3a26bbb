// Package cache implementa a camada de cache híbrida: um espelho opcional em
// memória por tabela persistente. Leituras quentes são servidas da memória;
// mutações são aplicadas otimisticamente no espelho ANTES da escrita durável e
// revertidas se ela falhar. Consumidores recebem cópias, nunca o espelho vivo.
package cache

import (
	"context"
	"sync"
	"time"
)

// BulkThreshold: uma mutação em massa acima deste tamanho não faz merge
// otimista; invalida o espelho (reconstruir o merge custa mais que recarregar).
const BulkThreshold = 1000

// DefaultWindow é a janela de coalescência das notificações (um frame de UI).
const DefaultWindow = 16 * time.Millisecond

// Loader carrega a tabela inteira do armazenamento durável.
type Loader[T any] func(ctx context.Context) ([]T, error)

// Table é o espelho em memória de uma tabela persistente.
// A tabela é a única dona do espelho: todo acesso externo devolve cópias.
type Table[T any] struct {
	mu       sync.RWMutex
	warm     bool
	rows     map[string]T
	key      func(T) string
	load     Loader[T]
	notifier *Notifier
}

// NewTable cria o espelho (frio) de uma tabela. key extrai a chave primária;
// load recarrega a tabela inteira do armazenamento durável.
func NewTable[T any](key func(T) string, load Loader[T], notifier *Notifier) *Table[T] {
	if notifier == nil {
		notifier = NewNotifier(DefaultWindow)
	}
	return &Table[T]{key: key, load: load, notifier: notifier}
}

// Subscribe registra um assinante de mudanças (avisos debounced).
func (t *Table[T]) Subscribe(fn func()) func() {
	return t.notifier.Subscribe(fn)
}

// Notifier expõe o notificador (para Flush em testes/shutdown).
func (t *Table[T]) Notifier() *Notifier {
	return t.notifier
}

// warmUp carrega a tabela na memória se o espelho estiver frio.
// Chamar com t.mu já em escrita.
func (t *Table[T]) warmUp(ctx context.Context) error {
	if t.warm {
		return nil
	}
	all, err := t.load(ctx)
	if err != nil {
		return err
	}
	t.rows = make(map[string]T, len(all))
	for _, row := range all {
		t.rows[t.key(row)] = row
	}
	t.warm = true
	return nil
}

// All devolve todas as linhas. Na primeira chamada aquece o espelho; depois é
// só memória até invalidar. A fatia devolvida é uma cópia instantânea.
func (t *Table[T]) All(ctx context.Context) ([]T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.warmUp(ctx); err != nil {
		return nil, err
	}
	out := make([]T, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, row)
	}
	return out, nil
}

// Get devolve uma linha pela chave (aquecendo o espelho se preciso).
func (t *Table[T]) Get(ctx context.Context, key string) (T, bool, error) {
	var zero T
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.warmUp(ctx); err != nil {
		return zero, false, err
	}
	row, ok := t.rows[key]
	return row, ok, nil
}

// Count devolve o número de linhas no espelho (aquecendo se preciso).
func (t *Table[T]) Count(ctx context.Context) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.warmUp(ctx); err != nil {
		return 0, err
	}
	return len(t.rows), nil
}

// Invalidate descarta o espelho: a próxima leitura recarrega do durável.
// Usado após operações cujo efeito é difícil de computar incrementalmente
// (pós-importação, pós-correção de auditoria, pós-sync remoto).
func (t *Table[T]) Invalidate() {
	t.mu.Lock()
	t.warm = false
	t.rows = nil
	t.mu.Unlock()
	t.notifier.Notify()
}

// Stage aplica uma mutação otimista ao espelho (se quente) e notifica os
// assinantes imediatamente. Devolve a função de rollback que restaura o estado
// anterior e notifica de novo — a ser chamada se a escrita durável falhar.
func (t *Table[T]) Stage(row T) func() {
	k := t.key(row)
	t.mu.Lock()
	if !t.warm {
		t.mu.Unlock()
		return func() {}
	}
	prev, existed := t.rows[k]
	t.rows[k] = row
	t.mu.Unlock()
	t.notifier.Notify()

	return func() {
		t.mu.Lock()
		if t.warm {
			if existed {
				t.rows[k] = prev
			} else {
				delete(t.rows, k)
			}
		}
		t.mu.Unlock()
		t.notifier.Notify()
	}
}

// StageDelete aplica uma remoção otimista, com rollback análogo ao de Stage.
func (t *Table[T]) StageDelete(key string) func() {
	t.mu.Lock()
	if !t.warm {
		t.mu.Unlock()
		return func() {}
	}
	prev, existed := t.rows[key]
	delete(t.rows, key)
	t.mu.Unlock()
	t.notifier.Notify()

	return func() {
		t.mu.Lock()
		if t.warm && existed {
			t.rows[key] = prev
		}
		t.mu.Unlock()
		t.notifier.Notify()
	}
}

// Put aplica a mutação otimista, executa a escrita durável e reverte o
// espelho se ela falhar. O erro durável propaga ao caller após o rollback.
func (t *Table[T]) Put(ctx context.Context, row T, durable func(ctx context.Context) error) error {
	rollback := t.Stage(row)
	if err := durable(ctx); err != nil {
		rollback()
		return err
	}
	return nil
}

// Delete aplica a remoção otimista com a mesma semântica de Put.
func (t *Table[T]) Delete(ctx context.Context, key string, durable func(ctx context.Context) error) error {
	rollback := t.StageDelete(key)
	if err := durable(ctx); err != nil {
		rollback()
		return err
	}
	return nil
}

// BulkPut aplica várias linhas. Acima de BulkThreshold não há merge otimista:
// executa o durável e invalida o espelho.
func (t *Table[T]) BulkPut(ctx context.Context, rows []T, durable func(ctx context.Context) error) error {
	if len(rows) > BulkThreshold {
		if err := durable(ctx); err != nil {
			// O espelho não foi tocado, mas o estado durável é suspeito.
			t.Invalidate()
			return err
		}
		t.Invalidate()
		return nil
	}

	rollbacks := make([]func(), 0, len(rows))
	for _, row := range rows {
		rollbacks = append(rollbacks, t.Stage(row))
	}
	if err := durable(ctx); err != nil {
		for i := len(rollbacks) - 1; i >= 0; i-- {
			rollbacks[i]()
		}
		return err
	}
	return nil
}

// Warm indica se o espelho está quente (exposto para métricas e testes).
func (t *Table[T]) Warm() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.warm
}
