// Package notify is the in-process notification center. Stores report
// mutation outcomes, the reconciliation channel reports connectivity
// and applied events; the UI layer subscribes for transient toasts.
package notify

import (
	"sync"
	"time"

	"github.com/umerali06/fixora-pro-sync/internal/domain"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is one transient user-visible notice.
type Notification struct {
	Level      Level
	EntityType domain.EntityType
	Action     string
	Message    string
	At         time.Time
}

const defaultBuffer = 128

// Center fans notifications out to subscribers and keeps a bounded
// recent-history ring. Publishing never blocks: a full ring drops its
// oldest entry, a slow subscriber loses the notice.
type Center struct {
	mu     sync.Mutex
	recent []Notification
	max    int
	subs   map[chan Notification]struct{}
}

func NewCenter() *Center {
	return &Center{
		max:  defaultBuffer,
		subs: make(map[chan Notification]struct{}),
	}
}

func (c *Center) Publish(n Notification) {
	if n.At.IsZero() {
		n.At = time.Now()
	}
	c.mu.Lock()
	c.recent = append(c.recent, n)
	if len(c.recent) > c.max {
		c.recent = c.recent[len(c.recent)-c.max:]
	}
	for ch := range c.subs {
		select {
		case ch <- n:
		default:
		}
	}
	c.mu.Unlock()
}

// Subscribe returns a buffered channel receiving future notifications.
func (c *Center) Subscribe() chan Notification {
	ch := make(chan Notification, 32)
	c.mu.Lock()
	c.subs[ch] = struct{}{}
	c.mu.Unlock()
	return ch
}

func (c *Center) Unsubscribe(ch chan Notification) {
	c.mu.Lock()
	if _, ok := c.subs[ch]; ok {
		delete(c.subs, ch)
		close(ch)
	}
	c.mu.Unlock()
}

// Recent returns up to n of the latest notifications, newest last.
func (c *Center) Recent(n int) []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n <= 0 || n > len(c.recent) {
		n = len(c.recent)
	}
	out := make([]Notification, n)
	copy(out, c.recent[len(c.recent)-n:])
	return out
}
