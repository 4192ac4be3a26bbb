package cache

import (
	"sync"
	"time"
)

// Notifier coalesce notificações de mudança: rajadas de escrita dentro da
// janela produzem UM aviso aos assinantes, não N. Agendador coalescente, não
// um timer por chamada: o último Notify de uma rajada vence.
type Notifier struct {
	mu      sync.Mutex
	window  time.Duration
	timer   *time.Timer
	subs    map[int]func()
	nextID  int
	pending bool
}

// NewNotifier cria o notificador com a janela de coalescência dada.
func NewNotifier(window time.Duration) *Notifier {
	return &Notifier{window: window, subs: make(map[int]func())}
}

// Subscribe registra um assinante e devolve a função de cancelamento.
func (n *Notifier) Subscribe(fn func()) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.nextID
	n.nextID++
	n.subs[id] = fn
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs, id)
	}
}

// Notify agenda um aviso. Chamadas dentro da mesma janela são coalescidas.
func (n *Notifier) Notify() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.pending {
		return
	}
	n.pending = true
	n.timer = time.AfterFunc(n.window, n.flush)
}

func (n *Notifier) flush() {
	n.mu.Lock()
	if !n.pending {
		// timer e Flush podem correr; só um entrega o aviso.
		n.mu.Unlock()
		return
	}
	n.pending = false
	fns := make([]func(), 0, len(n.subs))
	for _, fn := range n.subs {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	// Fora do lock: um assinante pode escrever na tabela e renotificar.
	for _, fn := range fns {
		fn()
	}
}

// Flush dispara imediatamente qualquer aviso pendente (útil em testes e no shutdown).
func (n *Notifier) Flush() {
	n.mu.Lock()
	if !n.pending {
		n.mu.Unlock()
		return
	}
	if n.timer != nil {
		n.timer.Stop()
	}
	n.mu.Unlock()
	n.flush()
}
