package repositories

import (
	"context"
	"sync"
)

// UnitOfWork defines the interface for atomic operations
type UnitOfWork interface {
	// Do executes the given function within a transaction scope
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	// WithLock marks reads made with the returned context as SELECT ... FOR UPDATE
	WithLock(ctx context.Context) context.Context
}

type commitHooksKey struct{}

type commitHooks struct {
	mu  sync.Mutex
	fns []func(ctx context.Context)
}

// WithCommitHooks prepares ctx to collect AfterCommit callbacks for one transaction.
// The returned func runs them in registration order and must only be called once the
// transaction has committed. When ctx already collects hooks the outer transaction owns
// them and the returned func does nothing.
func WithCommitHooks(ctx context.Context) (context.Context, func(ctx context.Context)) {
	if _, ok := ctx.Value(commitHooksKey{}).(*commitHooks); ok {
		return ctx, func(context.Context) {}
	}
	hooks := &commitHooks{}
	return context.WithValue(ctx, commitHooksKey{}, hooks), func(runCtx context.Context) {
		hooks.mu.Lock()
		fns := hooks.fns
		hooks.fns = nil
		hooks.mu.Unlock()
		for _, fn := range fns {
			fn(runCtx)
		}
	}
}

// AfterCommit defers fn until the transaction carried by ctx commits. Callbacks of a
// rolled back transaction never run. Outside a transaction fn runs immediately.
func AfterCommit(ctx context.Context, fn func(ctx context.Context)) {
	hooks, ok := ctx.Value(commitHooksKey{}).(*commitHooks)
	if !ok {
		fn(ctx)
		return
	}
	hooks.mu.Lock()
	hooks.fns = append(hooks.fns, fn)
	hooks.mu.Unlock()
}
