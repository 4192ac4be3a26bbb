package cache_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/ojsouza/almoxarifado-api/internal/infrastructure/cache"
)

func TestNotifier_CoalesceRajada(t *testing.T) {
	n := cache.NewNotifier(20 * time.Millisecond)
	var calls atomic.Int64
	n.Subscribe(func() { calls.Add(1) })

	// Rajada dentro da janela: um único aviso.
	for i := 0; i < 50; i++ {
		n.Notify()
	}
	n.Flush()
	assert.Equal(t, int64(1), calls.Load(), "avisos dentro da janela devem coalescer em um")
}

func TestNotifier_AvisosSeparadosNoTempo(t *testing.T) {
	n := cache.NewNotifier(time.Millisecond)
	var calls atomic.Int64
	n.Subscribe(func() { calls.Add(1) })

	n.Notify()
	n.Flush()
	n.Notify()
	n.Flush()
	assert.Equal(t, int64(2), calls.Load(), "rajadas distintas produzem avisos distintos")
}

func TestNotifier_Unsubscribe(t *testing.T) {
	n := cache.NewNotifier(time.Millisecond)
	var calls atomic.Int64
	unsubscribe := n.Subscribe(func() { calls.Add(1) })
	unsubscribe()

	n.Notify()
	n.Flush()
	assert.Zero(t, calls.Load(), "assinante cancelado não recebe avisos")
}

func TestNotifier_FlushSemPendenciaEhNoOp(t *testing.T) {
	n := cache.NewNotifier(time.Millisecond)
	var calls atomic.Int64
	n.Subscribe(func() { calls.Add(1) })

	n.Flush()
	assert.Zero(t, calls.Load())
}

func TestNotifier_VariosAssinantes(t *testing.T) {
	n := cache.NewNotifier(time.Millisecond)
	var a, b atomic.Int64
	n.Subscribe(func() { a.Add(1) })
	n.Subscribe(func() { b.Add(1) })

	n.Notify()
	n.Flush()
	assert.Equal(t, int64(1), a.Load())
	assert.Equal(t, int64(1), b.Load())
}
