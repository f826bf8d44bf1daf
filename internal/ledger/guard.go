package ledger

import (
	"context"
	"sync"
)

// Guard serializes mutating ledger operations. The reference environment
// applies transactions strictly one at a time against shared state; every
// write path acquires the guard around its database transaction so two
// concurrent purchases can never both observe the last unit of stock, and
// two withdrawals can never both read the same balance.
type Guard struct {
	mu sync.Mutex
}

func NewGuard() *Guard {
	return &Guard{}
}

// Serialize runs fn while holding the write lock. The context is checked
// before fn runs so callers abandoning a request do not still mutate state.
func (g *Guard) Serialize(ctx context.Context, fn func() error) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn()
}
