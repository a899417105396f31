// Package requestid implements per-request correlation identifiers and the
// request-scoped storage they live in. The identifier is resolved from the
// inbound request (or generated) once, then made available to everything that
// runs on behalf of that request: by ambient lookup through the context, and
// on the request's own headers for code that inspects the request directly.
package requestid

import (
	"context"

	"github.com/google/uuid"
)

const (
	// Header is the canonical header carrying the identifier, inbound and
	// outbound.
	Header = "X-Request-Id"

	// Key is the scope key under which the identifier is stored.
	Key = "request_id"
)

// Generate returns a new random identifier in canonical UUID text form.
// The result is treated as an opaque token everywhere downstream.
func Generate() string {
	return uuid.New().String()
}

// FromContext returns the current request identifier, or "" when no scope is
// open. Absence is a normal condition (startup code, tests, detached
// goroutines), never an error.
func FromContext(ctx context.Context) string {
	v, ok := Value(ctx, Key)
	if !ok {
		return ""
	}
	id, _ := v.(string)
	return id
}

// Run executes fn inside a fresh identifier scope. An empty id means a
// generated one. The scope is torn down on every exit path, panics included,
// and fn's error is returned unchanged.
func Run(ctx context.Context, id string, fn func(context.Context) error) error {
	if id == "" {
		id = Generate()
	}
	ctx, scope := Enter(ctx, map[string]any{Key: id})
	defer func() { _ = scope.Exit() }()
	return fn(ctx)
}

// Wrap decorates fn so that every invocation runs inside its own identifier
// scope, with the identifier drawn from gen. A nil gen means a generated
// identifier per invocation. Intended for background work that has no inbound
// request to resolve from.
func Wrap(gen func() string, fn func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		var id string
		if gen != nil {
			id = gen()
		}
		return Run(ctx, id, fn)
	}
}
