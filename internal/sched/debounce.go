// sched — отменяемая отложенная задача для коалесцирования всплесков
// ввода (debounce). Вместо ручной возни с таймер-хендлами: Schedule
// всегда снимает предыдущий таймер перед постановкой нового, так что
// гонки «двух пересчётов» не бывает и побеждает последний ввод.
package sched

import (
	"sync"
	"time"
)

// Debouncer — одна отложенная задача с семантикой последней записи.
// Нулевая задержка означает синхронное выполнение.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	pending func()
	stopped bool
}

// New создаёт дебаунсер с задержкой delay.
func New(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Schedule ставит fn на выполнение через delay, отменяя ранее
// запланированную задачу. При delay == 0 fn выполняется сразу.
func (d *Debouncer) Schedule(fn func()) {
	if d.delay <= 0 {
		fn()
		return
	}

	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}

	if d.timer != nil {
		d.timer.Stop()
	}

	d.pending = fn
	d.timer = time.AfterFunc(d.delay, d.fire)
	d.mu.Unlock()
}

// fire выполняет отложенную задачу по срабатыванию таймера.
func (d *Debouncer) fire() {
	d.mu.Lock()
	fn := d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Flush немедленно выполняет отложенную задачу, если она есть.
// Нужен читателям состояния: выдача не должна ждать хвост дебаунса.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	fn := d.pending
	d.pending = nil
	d.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Stop отменяет отложенную задачу и запрещает новые постановки.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = nil
	d.stopped = true
	d.mu.Unlock()
}
