package timer

import (
	"testing"

	"github.com/hammamikhairi/ottoweb/internal/domain"
	"github.com/hammamikhairi/ottoweb/internal/logger"
)

func newTestRegistry() *Registry {
	return NewRegistry(logger.New(logger.LevelOff, nil))
}

func TestRegistryCreateIsIdempotent(t *testing.T) {
	r := newTestRegistry()

	if !r.Create(2, "Simmer for 5 minutes", 300) {
		t.Fatal("expected first create to succeed")
	}
	if r.Create(2, "Simmer for 5 minutes", 120) {
		t.Fatal("expected second create for same step to be a no-op")
	}

	active := r.ListActive()
	if len(active) != 1 {
		t.Fatalf("expected exactly 1 active timer, got %d", len(active))
	}
	if active[0].Remaining != 300 {
		t.Fatalf("expected original duration to be kept, got %d", active[0].Remaining)
	}
}

func TestRegistryCreateIgnoresNonPositive(t *testing.T) {
	r := newTestRegistry()
	if r.Create(0, "nothing", 0) {
		t.Fatal("expected zero duration to be rejected")
	}
	if r.Len() != 0 {
		t.Fatalf("expected no timers, got %d", r.Len())
	}
}

func TestRegistryTickExpires(t *testing.T) {
	r := newTestRegistry()
	r.Create(0, "short", 2)
	r.Create(1, "long", 5)

	if exp := r.Tick(); len(exp) != 0 {
		t.Fatalf("expected nothing to expire on first tick, got %d", len(exp))
	}

	exp := r.Tick()
	if len(exp) != 1 {
		t.Fatalf("expected 1 expiry, got %d", len(exp))
	}
	if exp[0].Label != "short" || exp[0].State != domain.TimerExpired || exp[0].Remaining != 0 {
		t.Fatalf("unexpected expired timer: %+v", exp[0])
	}

	active := r.ListActive()
	if len(active) != 1 || active[0].StepIndex != 1 || active[0].Remaining != 3 {
		t.Fatalf("unexpected active timers after expiry: %+v", active)
	}
}

func TestRegistryRecreateAfterExpiry(t *testing.T) {
	r := newTestRegistry()
	r.Create(0, "once", 1)
	r.Tick()

	if !r.Create(0, "once", 1) {
		t.Fatal("expected a new timer once the previous one expired")
	}
}

func TestRegistryCancelLabel(t *testing.T) {
	r := newTestRegistry()
	r.Create(1, "Sauté onion until soft", 300)
	r.Create(3, "Simmer for 10 minutes", 600)

	got, ok := r.CancelLabel("ONION")
	if !ok {
		t.Fatal("expected onion timer to be cancelled")
	}
	if got.StepIndex != 1 || got.State != domain.TimerCancelled {
		t.Fatalf("unexpected cancelled timer: %+v", got)
	}

	if _, ok := r.CancelLabel("onion"); ok {
		t.Fatal("expected no-op when no label matches")
	}
	if r.Len() != 1 {
		t.Fatalf("expected 1 timer left, got %d", r.Len())
	}
}

func TestRegistryCancelPicksFirstInStepOrder(t *testing.T) {
	r := newTestRegistry()
	r.Create(4, "Simmer sauce 10 minutes", 600)
	r.Create(2, "Simmer stock 20 minutes", 1200)

	got, ok := r.CancelLabel("simmer")
	if !ok {
		t.Fatal("expected a match")
	}
	if got.StepIndex != 2 {
		t.Fatalf("expected lowest step index to be cancelled first, got %d", got.StepIndex)
	}
}

func TestRegistryCancelAll(t *testing.T) {
	r := newTestRegistry()
	r.Create(0, "a", 10)
	r.Create(1, "b", 10)

	if n := r.CancelAll(); n != 2 {
		t.Fatalf("expected 2 cancelled, got %d", n)
	}
	if r.Len() != 0 {
		t.Fatal("expected empty registry")
	}
	if exp := r.Tick(); len(exp) != 0 {
		t.Fatal("cancelled timers must not expire")
	}
}

func TestRegistryListActiveOrder(t *testing.T) {
	r := newTestRegistry()
	for _, idx := range []int{5, 1, 3} {
		r.Create(idx, "t", 10)
	}
	active := r.ListActive()
	for i, want := range []int{1, 3, 5} {
		if active[i].StepIndex != want {
			t.Fatalf("position %d: got step %d, want %d", i, active[i].StepIndex, want)
		}
	}
}
