package usecase

import "sync"

// Compounder tracks balance deltas and reports how much of a realized profit
// should be treated as reinvested. The reinvest amount is policy guidance for
// sizing, not a transfer; no money moves.
type Compounder struct {
	mu sync.Mutex

	enabled         bool
	reinvestPercent float64
	refreshOnLoss   bool

	initialBalance   float64
	lastKnownBalance float64
	seen             bool
}

// NewCompounder builds a tracker. refreshOnLoss controls whether a
// non-positive delta still refreshes the last known balance; the live driver
// enables it, the sizing path historically did not, and the two behaviors are
// kept independently configurable.
func NewCompounder(enabled bool, reinvestPercent float64, refreshOnLoss bool) *Compounder {
	return &Compounder{
		enabled:         enabled,
		reinvestPercent: reinvestPercent,
		refreshOnLoss:   refreshOnLoss,
	}
}

// Observe records a balance observation. It returns the reinvest amount for a
// positive profit delta, and 0 otherwise. The first observation initializes
// both the initial and last-known balance.
func (c *Compounder) Observe(balance float64) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.seen {
		c.initialBalance = balance
		c.lastKnownBalance = balance
		c.seen = true
		return 0
	}

	profit := balance - c.lastKnownBalance
	if profit > 0 {
		c.lastKnownBalance = balance
		if !c.enabled {
			return 0
		}
		return profit * c.reinvestPercent
	}

	if c.refreshOnLoss {
		c.lastKnownBalance = balance
	}
	return 0
}

// InitialBalance returns the first observed balance, 0 before any observation.
func (c *Compounder) InitialBalance() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initialBalance
}

// LastKnownBalance returns the most recently tracked balance.
func (c *Compounder) LastKnownBalance() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastKnownBalance
}
