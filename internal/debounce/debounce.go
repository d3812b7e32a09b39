// Package debounce откладывает и прореживает частые вызовы (поиск по мере набора текста).
package debounce

import (
	"sync"
	"time"
)

// DefaultSearchDelay: задержка поиска магазинов после последнего ввода.
const DefaultSearchDelay = 300 * time.Millisecond

// Debouncer выполняет функцию только после паузы длиной delay с момента последнего Call.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending func()
	seq     uint64
}

// New создаёт Debouncer; delay<=0 заменяется на DefaultSearchDelay.
func New(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultSearchDelay
	}
	return &Debouncer{delay: delay}
}

// Call отменяет ранее запланированный вызов и планирует fn заново.
func (d *Debouncer) Call(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.pending = fn
	d.timer = time.AfterFunc(d.delay, func() {
		d.fire(seq)
	})
}

func (d *Debouncer) fire(seq uint64) {
	d.mu.Lock()
	// Таймер мог сработать одновременно с новым Call: выполняем только актуальный вызов.
	if seq != d.seq || d.pending == nil {
		d.mu.Unlock()
		return
	}
	fn := d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()

	fn()
}

// Flush немедленно выполняет отложенный вызов, если он есть.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	fn := d.takeLocked()
	d.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Stop отменяет отложенный вызов без выполнения.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.takeLocked()
	d.mu.Unlock()
}

// Pending сообщает, есть ли запланированный вызов.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

func (d *Debouncer) takeLocked() func() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
	fn := d.pending
	d.pending = nil
	return fn
}

// Throttler пропускает первый вызов и отбрасывает последующие в пределах окна.
type Throttler struct {
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	last time.Time
	ran  bool
}

// NewThrottler создаёт Throttler с окном window.
func NewThrottler(window time.Duration) *Throttler {
	return &Throttler{window: window, now: time.Now}
}

// Do выполняет fn, если окно с прошлого выполнения истекло. Возвращает true, если fn был вызван.
func (t *Throttler) Do(fn func()) bool {
	t.mu.Lock()
	now := t.now()
	if t.ran && now.Sub(t.last) < t.window {
		t.mu.Unlock()
		return false
	}
	t.ran = true
	t.last = now
	t.mu.Unlock()

	fn()
	return true
}
