package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"
)

type recordingSender struct {
	name string
	err  error

	mu     sync.Mutex
	titles []string
}

func (s *recordingSender) Name() string { return s.name }

func (s *recordingSender) Send(_ context.Context, title, _ string) error {
	s.mu.Lock()
	s.titles = append(s.titles, title)
	s.mu.Unlock()
	return s.err
}

func (s *recordingSender) sent() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.titles)
}

func TestNotifierFiltersEvents(t *testing.T) {
	sender := &recordingSender{name: "rec"}
	n := NewNotifier([]Sender{sender}, []string{EventRefreshFailed}, 0, slog.New(slog.DiscardHandler))

	if err := n.Notify(context.Background(), EventMockFallback, "t", "m"); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if sender.sent() != 0 {
		t.Error("filtered event was delivered")
	}

	if err := n.Notify(context.Background(), EventRefreshFailed, "t", "m"); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if sender.sent() != 1 {
		t.Error("allowed event was not delivered")
	}
}

func TestNotifierEmptyFilterAllowsAll(t *testing.T) {
	sender := &recordingSender{name: "rec"}
	n := NewNotifier([]Sender{sender}, nil, 0, slog.New(slog.DiscardHandler))

	if err := n.Notify(context.Background(), "anything", "t", "m"); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if sender.sent() != 1 {
		t.Error("event not delivered with an empty filter")
	}
}

func TestNotifierCooldownSuppressesRepeats(t *testing.T) {
	sender := &recordingSender{name: "rec"}
	n := NewNotifier([]Sender{sender}, nil, time.Hour, slog.New(slog.DiscardHandler))

	for i := 0; i < 5; i++ {
		if err := n.Notify(context.Background(), EventRefreshFailed, "t", "m"); err != nil {
			t.Fatalf("notify: %v", err)
		}
	}
	if got := sender.sent(); got != 1 {
		t.Errorf("delivered %d times within cooldown, want 1", got)
	}

	// A different event has its own cooldown slot.
	if err := n.Notify(context.Background(), EventMockFallback, "t", "m"); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if got := sender.sent(); got != 2 {
		t.Errorf("delivered %d times, want 2 (per-event cooldown)", got)
	}
}

func TestNotifierCollectsSenderErrors(t *testing.T) {
	bad := &recordingSender{name: "bad", err: errors.New("down")}
	good := &recordingSender{name: "good"}
	n := NewNotifier([]Sender{bad, good}, nil, 0, slog.New(slog.DiscardHandler))

	err := n.Notify(context.Background(), EventRefreshFailed, "t", "m")
	if err == nil {
		t.Fatal("sender failure not surfaced")
	}
	if good.sent() != 1 {
		t.Error("one failing sender blocked delivery to the rest")
	}
}
