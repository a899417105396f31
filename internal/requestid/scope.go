package requestid

import (
	"context"
	"fmt"
	"sync"
)

// ScopeError reports a scope-discipline violation, such as exiting a scope
// twice. It signals a programmer error and is not recoverable within the
// offending request.
type ScopeError struct {
	Op string
}

func (e *ScopeError) Error() string {
	return fmt.Sprintf("requestid: %s on closed scope", e.Op)
}

type scopeCtxKey struct{}

// Scope is one open request-scoped storage cell. It is owned by the caller of
// Enter, which must close it with Exit exactly once when the request's work is
// done. Values are seeded at Enter and read-only afterwards, so concurrent
// reads from goroutines spawned by the handler are safe.
type Scope struct {
	mu     sync.RWMutex
	values map[string]any
	parent *Scope
	closed bool
}

// Enter opens a new scope seeded with initial and returns a context carrying
// it. Scopes nest as a stack: keys in an inner scope shadow the outer one's,
// and the outer scope becomes visible again once the inner one is exited.
func Enter(ctx context.Context, initial map[string]any) (context.Context, *Scope) {
	values := make(map[string]any, len(initial))
	for k, v := range initial {
		values[k] = v
	}
	s := &Scope{values: values}
	if parent, ok := ctx.Value(scopeCtxKey{}).(*Scope); ok {
		s.parent = parent
	}
	return context.WithValue(ctx, scopeCtxKey{}, s), s
}

// Exit closes the scope and releases its storage. Any context still
// referencing the scope afterwards reports absent on lookup. Exiting twice
// returns a *ScopeError.
func (s *Scope) Exit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return &ScopeError{Op: "exit"}
	}
	s.closed = true
	s.values = nil
	return nil
}

func (s *Scope) lookup(key string) (any, bool) {
	s.mu.RLock()
	closed := s.closed
	v, ok := s.values[key]
	s.mu.RUnlock()

	if !closed && ok {
		return v, true
	}
	if s.parent != nil {
		return s.parent.lookup(key)
	}
	return nil, false
}

// Value looks up key in the innermost open scope carried by ctx, falling back
// through enclosing scopes. Outside any scope, or after teardown, it reports
// absent rather than failing; callers must treat absence as a normal case.
func Value(ctx context.Context, key string) (any, bool) {
	s, ok := ctx.Value(scopeCtxKey{}).(*Scope)
	if !ok {
		return nil, false
	}
	return s.lookup(key)
}
