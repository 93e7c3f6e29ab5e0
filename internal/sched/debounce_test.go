package sched

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Тесты дебаунсера.
//
// Покрытие:
//  - всплеск Schedule коалесцируется в одно выполнение (последняя задача);
//  - Flush выполняет хвост немедленно;
//  - Stop отменяет хвост и блокирует новые постановки;
//  - нулевая задержка — синхронный вызов.

func TestSchedule_CoalescesBurst(t *testing.T) {
	t.Parallel()

	d := New(30 * time.Millisecond)
	defer d.Stop()

	var calls atomic.Int32
	var last atomic.Int32

	// Всплеск из пяти постановок: выполниться должна только последняя.
	for i := 1; i <= 5; i++ {
		i := i
		d.Schedule(func() {
			calls.Add(1)
			last.Store(int32(i))
		})
	}

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	require.Equal(t, int32(5), last.Load())

	// Хвостов не осталось.
	time.Sleep(60 * time.Millisecond)
	require.Equal(t, int32(1), calls.Load())
}

func TestFlush_RunsPendingImmediately(t *testing.T) {
	t.Parallel()

	d := New(time.Hour)
	defer d.Stop()

	var calls atomic.Int32
	d.Schedule(func() { calls.Add(1) })

	d.Flush()
	require.Equal(t, int32(1), calls.Load())

	// Повторный Flush без хвоста — no-op.
	d.Flush()
	require.Equal(t, int32(1), calls.Load())
}

func TestStop_CancelsPending(t *testing.T) {
	t.Parallel()

	d := New(20 * time.Millisecond)

	var calls atomic.Int32
	d.Schedule(func() { calls.Add(1) })
	d.Stop()

	time.Sleep(50 * time.Millisecond)
	require.Equal(t, int32(0), calls.Load())

	// После Stop постановки игнорируются.
	d.Schedule(func() { calls.Add(1) })
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, int32(0), calls.Load())
}

func TestZeroDelay_RunsSynchronously(t *testing.T) {
	t.Parallel()

	d := New(0)

	var calls atomic.Int32
	d.Schedule(func() { calls.Add(1) })
	require.Equal(t, int32(1), calls.Load())
}
