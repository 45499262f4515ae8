package browser

import (
	"context"
	"reflect"
	"testing"

	"NewsScanner/internal/config"
)

func TestReleaseWithoutStartIsNoop(t *testing.T) {
	t.Parallel()

	s := NewSession(config.Default().Browser, nil)
	if s.running() {
		t.Fatal("session must start lazily")
	}
	if err := s.Release(); err != nil {
		t.Fatalf("Release error: %v", err)
	}
	if err := s.Release(); err != nil {
		t.Fatalf("second Release error: %v", err)
	}
}

func TestOpenHonoursCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewSession(config.Default().Browser, nil)
	if _, err := s.Open(ctx, "https://example.com"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if s.running() {
		t.Fatal("cancelled open must not start the browser")
	}
}

func TestToStrings(t *testing.T) {
	t.Parallel()

	got := toStrings([]interface{}{"https://a.example", 3, "", "https://b.example"})
	if !reflect.DeepEqual(got, []string{"https://a.example", "https://b.example"}) {
		t.Fatalf("unexpected links: %v", got)
	}
	if toStrings("nope") != nil {
		t.Fatal("non-slice input must yield nil")
	}
}
