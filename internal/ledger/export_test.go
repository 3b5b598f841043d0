package ledger

import (
	"time"

	"github.com/nikolayk812/checkoutpay/internal/port"
)

func NewMemoryWithClock(ttl time.Duration, now func() time.Time) port.EventLedger {
	return newMemory(ttl, now)
}

func MemorySize(l port.EventLedger) int {
	m := l.(*memoryLedger)
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.seen)
}
