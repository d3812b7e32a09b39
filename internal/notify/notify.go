// Package notify реализует короткие пользовательские уведомления с автоскрытием.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/unieats/internal/domain"
	"github.com/vladislavdragonenkov/unieats/internal/metrics"
)

// DefaultTTL: через сколько уведомление скрывается само.
const DefaultTTL = 5 * time.Second

// Level: тип уведомления.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
)

// Message: одно показанное уведомление.
type Message struct {
	ID        string
	Level     Level
	Text      string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Center хранит активные уведомления и раздаёт их подписчикам.
type Center struct {
	ttl     time.Duration
	logger  *log.Entry
	metrics *metrics.ClientMetrics
	now     func() time.Time

	mu          sync.Mutex
	active      []Message
	timers      map[string]*time.Timer
	subscribers []func(Message)
	closed      bool
}

// Option настраивает Center.
type Option func(*Center)

// WithTTL задаёт время жизни уведомления.
func WithTTL(ttl time.Duration) Option {
	return func(c *Center) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithMetrics подключает метрики.
func WithMetrics(m *metrics.ClientMetrics) Option {
	return func(c *Center) { c.metrics = m }
}

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) Option {
	return func(c *Center) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCenter создаёт центр уведомлений.
func NewCenter(logger *log.Entry, opts ...Option) *Center {
	if logger == nil {
		logger = log.WithField("component", "notify")
	}
	c := &Center{
		ttl:    DefaultTTL,
		logger: logger,
		now:    time.Now,
		timers: make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Center) Success(text string) { c.Show(LevelSuccess, text) }
func (c *Center) Error(text string)   { c.Show(LevelError, text) }
func (c *Center) Warning(text string) { c.Show(LevelWarning, text) }
func (c *Center) Info(text string)    { c.Show(LevelInfo, text) }

// Subscribe регистрирует получателя всех новых уведомлений.
func (c *Center) Subscribe(fn func(Message)) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	c.subscribers = append(c.subscribers, fn)
	c.mu.Unlock()
}

// Show публикует уведомление и планирует его скрытие.
func (c *Center) Show(level Level, text string) Message {
	created := c.now()
	msg := Message{
		ID:        uuid.NewString(),
		Level:     level,
		Text:      text,
		CreatedAt: created,
		ExpiresAt: created.Add(c.ttl),
	}

	c.mu.Lock()
	subscribers := append([]func(Message){}, c.subscribers...)
	if !c.closed {
		c.active = append(c.active, msg)
		id := msg.ID
		c.timers[id] = time.AfterFunc(c.ttl, func() { c.Dismiss(id) })
	}
	c.mu.Unlock()

	entry := c.logger.WithFields(log.Fields{"level": string(level), "notification_id": msg.ID})
	switch level {
	case LevelError:
		entry.Error(text)
	case LevelWarning:
		entry.Warn(text)
	default:
		entry.Info(text)
	}
	c.metrics.RecordNotification(string(level))

	for _, fn := range subscribers {
		fn(msg)
	}
	return msg
}

// Active возвращает ещё не скрытые уведомления в порядке появления.
func (c *Center) Active() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	out := make([]Message, 0, len(c.active))
	for _, m := range c.active {
		if now.Before(m.ExpiresAt) {
			out = append(out, m)
		}
	}
	return out
}

// Dismiss скрывает уведомление (кнопка закрытия). Неизвестный id игнорируется.
func (c *Center) Dismiss(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t, ok := c.timers[id]; ok {
		t.Stop()
		delete(c.timers, id)
	}
	for i, m := range c.active {
		if m.ID == id {
			c.active = append(c.active[:i], c.active[i+1:]...)
			return
		}
	}
}

// Close останавливает таймеры автоскрытия.
func (c *Center) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, t := range c.timers {
		t.Stop()
		delete(c.timers, id)
	}
	c.active = nil
	c.closed = true
}

var _ domain.Notifier = (*Center)(nil)
