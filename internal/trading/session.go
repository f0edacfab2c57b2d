package trading

import (
	"sync"
	"time"

	"ashare-trader/internal/market"
)

// SessionLock tracks symbols bought during the current trading day.
// A-share settlement is T+1: shares acquired today cannot be sold
// before the next trading day, whatever the classifier says.
type SessionLock struct {
	mu       sync.Mutex
	day      string
	acquired map[string]struct{}
	now      func() time.Time
}

// NewSessionLock creates an empty lock using the wall clock.
func NewSessionLock() *SessionLock {
	return NewSessionLockAt(time.Now)
}

// NewSessionLockAt creates a lock with an injected clock.
func NewSessionLockAt(now func() time.Time) *SessionLock {
	return &SessionLock{
		acquired: make(map[string]struct{}),
		now:      now,
	}
}

// MarkBought records a buy for the current trading day.
func (l *SessionLock) MarkBought(symbol string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.roll()
	l.acquired[symbol] = struct{}{}
}

// Locked reports whether symbol was bought this trading day and is
// therefore unsellable until tomorrow.
func (l *SessionLock) Locked(symbol string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.roll()
	_, ok := l.acquired[symbol]
	return ok
}

// Sellable reports whether a holding acquired at heldSince may be sold
// now. The in-memory set covers buys made by this process; the
// held-since date covers buys made before a restart, which the set
// cannot see.
func (l *SessionLock) Sellable(symbol string, heldSince time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.roll()
	if _, ok := l.acquired[symbol]; ok {
		return false
	}
	return heldSince.In(market.ShanghaiTZ()).Format("2006-01-02") != l.day
}

// roll clears the set when the Shanghai trading date has advanced.
// Caller holds the mutex.
func (l *SessionLock) roll() {
	today := l.now().In(market.ShanghaiTZ()).Format("2006-01-02")
	if l.day != today {
		l.day = today
		l.acquired = make(map[string]struct{})
	}
}
