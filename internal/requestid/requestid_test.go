package requestid_test

import (
	"context"
	"errors"
	"testing"

	"github.com/edgehook/event-gateway/internal/requestid"
)

func TestGenerate_NonEmptyAndDistinct(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := requestid.Generate()
		if id == "" {
			t.Fatal("generated identifier is empty")
		}
		if seen[id] {
			t.Fatalf("duplicate generated identifier %q", id)
		}
		seen[id] = true
	}
}

func TestRun_SuppliedIdentifier(t *testing.T) {
	var observed string
	err := requestid.Run(context.Background(), "job-42", func(ctx context.Context) error {
		observed = requestid.FromContext(ctx)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if observed != "job-42" {
		t.Errorf("expected job-42, got %q", observed)
	}
}

func TestRun_GeneratesWhenEmpty(t *testing.T) {
	var observed string
	err := requestid.Run(context.Background(), "", func(ctx context.Context) error {
		observed = requestid.FromContext(ctx)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if observed == "" {
		t.Error("expected a generated identifier, got empty")
	}
}

func TestRun_ScopeTornDownAfterReturn(t *testing.T) {
	var leaked context.Context
	_ = requestid.Run(context.Background(), "r-1", func(ctx context.Context) error {
		leaked = ctx
		return nil
	})
	if _, ok := requestid.Value(leaked, requestid.Key); ok {
		t.Error("scope still readable after Run returned")
	}
}

func TestRun_ErrorPropagatesUnchanged(t *testing.T) {
	sentinel := errors.New("handler failed")
	err := requestid.Run(context.Background(), "r-1", func(context.Context) error {
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Errorf("expected sentinel error back, got %v", err)
	}
}

func TestRun_ScopeTornDownOnPanic(t *testing.T) {
	var leaked context.Context

	func() {
		defer func() {
			if recover() == nil {
				t.Error("expected panic to propagate")
			}
		}()
		_ = requestid.Run(context.Background(), "r-1", func(ctx context.Context) error {
			leaked = ctx
			panic("boom")
		})
	}()

	if _, ok := requestid.Value(leaked, requestid.Key); ok {
		t.Error("scope still readable after panic unwound")
	}
}

func TestWrap_GeneratorSuppliesIdentifier(t *testing.T) {
	var observed string
	job := requestid.Wrap(func() string { return "job-42" }, func(ctx context.Context) error {
		observed = requestid.FromContext(ctx)
		return nil
	})

	if err := job(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if observed != "job-42" {
		t.Errorf("expected job-42, got %q", observed)
	}
}

func TestWrap_NilGeneratorGeneratesPerInvocation(t *testing.T) {
	var first, second string
	job := requestid.Wrap(nil, func(ctx context.Context) error {
		if first == "" {
			first = requestid.FromContext(ctx)
		} else {
			second = requestid.FromContext(ctx)
		}
		return nil
	})

	_ = job(context.Background())
	_ = job(context.Background())

	if first == "" || second == "" {
		t.Fatal("expected generated identifiers on both invocations")
	}
	if first == second {
		t.Errorf("expected distinct identifiers per invocation, both %q", first)
	}
}
