package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/nikolayk812/checkoutpay/internal/port"
)

// memoryLedger keeps event IDs for ttl in a single process. Expired entries
// are swept on Remember, at most once per ttl. A non-positive ttl keeps
// entries forever.
type memoryLedger struct {
	mu        sync.RWMutex
	seen      map[string]time.Time
	ttl       time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func NewMemory(ttl time.Duration) port.EventLedger {
	return newMemory(ttl, time.Now)
}

func newMemory(ttl time.Duration, now func() time.Time) *memoryLedger {
	return &memoryLedger{
		seen:      make(map[string]time.Time),
		ttl:       ttl,
		lastSweep: now(),
		now:       now,
	}
}

func (l *memoryLedger) Seen(_ context.Context, eventID string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	rememberedAt, ok := l.seen[eventID]
	if !ok {
		return false, nil
	}
	return !l.expired(rememberedAt, l.now()), nil
}

func (l *memoryLedger) Remember(_ context.Context, eventID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.seen[eventID] = now

	if l.ttl > 0 && now.Sub(l.lastSweep) >= l.ttl {
		for id, rememberedAt := range l.seen {
			if l.expired(rememberedAt, now) {
				delete(l.seen, id)
			}
		}
		l.lastSweep = now
	}

	return nil
}

func (l *memoryLedger) expired(rememberedAt, now time.Time) bool {
	return l.ttl > 0 && now.Sub(rememberedAt) >= l.ttl
}
