package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hammamikhairi/ottoweb/internal/conversation"
	"github.com/hammamikhairi/ottoweb/internal/domain"
	"github.com/hammamikhairi/ottoweb/internal/logger"
)

type driverHarness struct {
	driver *Driver
	voice  *fakeVoice
	ticks  chan time.Time
	snaps  chan Snapshot
	done   chan error
	cancel context.CancelFunc
}

func startDriver(t *testing.T) *driverHarness {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	h := &driverHarness{
		voice: &fakeVoice{},
		ticks: make(chan time.Time),
		snaps: make(chan Snapshot, 512),
		done:  make(chan error, 1),
	}
	h.driver = NewDriver(h.voice, conversation.NewVoiceParser(log), h.ticks, log,
		WithOnChange(func(s Snapshot) { h.snaps <- s }))

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() { h.done <- h.driver.Run(ctx) }()
	t.Cleanup(cancel)
	return h
}

func (h *driverHarness) next(t *testing.T) Snapshot {
	t.Helper()
	select {
	case s := <-h.snaps:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return Snapshot{}
	}
}

func TestDriverFlow(t *testing.T) {
	h := startDriver(t)

	if err := h.driver.Load(context.Background(), testRecipe(t)); err != nil {
		t.Fatalf("load: %v", err)
	}
	if snap := h.next(t); snap.State != domain.SessionStaging || snap.Title != "Tomato Soup" {
		t.Fatalf("unexpected snapshot after load: %+v", snap)
	}

	h.driver.Submit(domain.Intent{Type: domain.IntentStart})
	if snap := h.next(t); snap.State != domain.SessionCooking {
		t.Fatalf("expected cooking, got %s", snap.State)
	}

	h.voice.say("okay next")
	if snap := h.next(t); snap.StepIndex != 1 {
		t.Fatalf("expected step 1 after voice next, got %d", snap.StepIndex)
	}

	h.driver.Submit(domain.Intent{Type: domain.IntentAdvance})
	snap := h.next(t)
	if snap.StepIndex != 2 || len(snap.Timers) != 1 {
		t.Fatalf("expected step 2 with one timer, got step %d timers %v", snap.StepIndex, snap.Timers)
	}

	for i := 0; i < 300; i++ {
		h.ticks <- time.Now()
		snap = h.next(t)
	}
	if len(snap.Timers) != 0 {
		t.Fatalf("timer should have expired, got %v", snap.Timers)
	}
	spoken := h.voice.getSpoken()
	if last := spoken[len(spoken)-1]; last != "Timer for Simmer for 5 minutes is done." {
		t.Fatalf("unexpected last narration %q", last)
	}

	h.driver.Submit(domain.Intent{Type: domain.IntentQuit})
	select {
	case err := <-h.done:
		if err != nil {
			t.Fatalf("run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("driver did not stop on quit")
	}
	if _, stops := h.voice.counts(); stops != 1 {
		t.Fatalf("expected voice stopped on exit, got %d", stops)
	}
}

func TestDriverIgnoresEventsWithoutSession(t *testing.T) {
	h := startDriver(t)

	h.driver.Submit(domain.Intent{Type: domain.IntentAdvance})
	h.ticks <- time.Now()
	h.voice.say("next")

	select {
	case s := <-h.snaps:
		t.Fatalf("unexpected snapshot without a session: %+v", s)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDriverLoadReplacesSession(t *testing.T) {
	h := startDriver(t)
	ctx := context.Background()

	if err := h.driver.Load(ctx, testRecipe(t)); err != nil {
		t.Fatalf("load: %v", err)
	}
	first := h.next(t)

	h.driver.Submit(domain.Intent{Type: domain.IntentStart})
	h.next(t)
	h.driver.Submit(domain.Intent{Type: domain.IntentAdvance})
	h.next(t)
	h.driver.Submit(domain.Intent{Type: domain.IntentAdvance})
	if snap := h.next(t); len(snap.Timers) != 1 {
		t.Fatalf("expected a running timer, got %v", snap.Timers)
	}

	if err := h.driver.Load(ctx, testRecipe(t)); err != nil {
		t.Fatalf("reload: %v", err)
	}
	second := h.next(t)
	if second.SessionID == first.SessionID {
		t.Fatal("reload should create a new session")
	}
	if second.State != domain.SessionStaging || len(second.Timers) != 0 {
		t.Fatalf("new session should start clean: %+v", second)
	}
	waitFor(t, "old session voice stop", func() bool {
		_, stops := h.voice.counts()
		return stops == 1
	})
}

func TestDriverSlowVoiceStopDoesNotStallTimers(t *testing.T) {
	h := startDriver(t)
	h.voice.mu.Lock()
	h.voice.stopDelay = 1500 * time.Millisecond
	h.voice.mu.Unlock()

	if err := h.driver.Load(context.Background(), testRecipe(t)); err != nil {
		t.Fatalf("load: %v", err)
	}
	h.next(t)
	for _, it := range []domain.IntentType{domain.IntentStart, domain.IntentAdvance, domain.IntentAdvance, domain.IntentAdvance} {
		h.driver.Submit(domain.Intent{Type: it})
		h.next(t)
	}

	// The last advance completed the session and stopped voice input.
	start := time.Now()
	var snap Snapshot
	for i := 0; i < 10; i++ {
		select {
		case h.ticks <- time.Now():
		case <-time.After(500 * time.Millisecond):
			t.Fatalf("tick %d not accepted while voice was stopping", i)
		}
		snap = h.next(t)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("ticks took %s, driver waited on voice stop", elapsed)
	}
	if snap.State != domain.SessionComplete {
		t.Fatalf("expected complete, got %s", snap.State)
	}
	if len(snap.Timers) != 1 || snap.Timers[0].Remaining != 290 {
		t.Fatalf("expected the simmer timer at 290s, got %v", snap.Timers)
	}

	waitFor(t, "voice stop", func() bool {
		_, stops := h.voice.counts()
		return stops == 1
	})
}

func TestDriverStopsOnCancel(t *testing.T) {
	h := startDriver(t)
	h.cancel()

	select {
	case err := <-h.done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("driver did not stop on cancel")
	}
}

func TestDriverSubmitDropsWhenFull(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	d := NewDriver(&fakeVoice{}, conversation.NewVoiceParser(log), nil, log, WithQueueSize(1))

	if !d.Submit(domain.Intent{Type: domain.IntentAdvance}) {
		t.Fatal("first submit should be queued")
	}
	if d.Submit(domain.Intent{Type: domain.IntentAdvance}) {
		t.Fatal("second submit should be dropped")
	}
}
