package strategy

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func nonEmpty(s string) bool { return s != "" }

func TestChainStopsAtFirstAccepted(t *testing.T) {
	t.Parallel()

	var calls []string
	record := func(name, out string, err error) Step[string, string] {
		return Step[string, string]{Name: name, Run: func(ctx context.Context, in string) (string, error) {
			calls = append(calls, name)
			return out, err
		}}
	}

	chain := New(nonEmpty, nil,
		record("broken", "", errors.New("boom")),
		record("empty", "", nil),
		record("winner", "result", nil),
		record("never", "other", nil),
	)

	out, name, ok := chain.Run(context.Background(), "in")
	if !ok || out != "result" || name != "winner" {
		t.Fatalf("unexpected result: %q %q %v", out, name, ok)
	}
	if !reflect.DeepEqual(calls, []string{"broken", "empty", "winner"}) {
		t.Fatalf("unexpected call order: %v", calls)
	}
}

func TestChainExhausted(t *testing.T) {
	t.Parallel()

	chain := New[string, string](nonEmpty, nil)
	chain.Register(Step[string, string]{Name: "a", Run: func(ctx context.Context, in string) (string, error) {
		return "", nil
	}})

	if _, _, ok := chain.Run(context.Background(), "in"); ok {
		t.Fatal("expected exhausted chain")
	}
	if !reflect.DeepEqual(chain.Names(), []string{"a"}) {
		t.Fatalf("unexpected names: %v", chain.Names())
	}
}

func TestChainHonoursCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	chain := New(nil, nil, Step[int, int]{Name: "a", Run: func(ctx context.Context, in int) (int, error) {
		called = true
		return in, nil
	}})

	if _, _, ok := chain.Run(ctx, 1); ok || called {
		t.Fatal("cancelled chain must not run steps")
	}
}
