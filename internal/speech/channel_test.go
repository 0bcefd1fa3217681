package speech

import (
	"context"
	"sync"
	"testing"
	"time"
)

// recordingNotifier captures printed narration.
type recordingNotifier struct {
	mu     sync.Mutex
	normal []string
	urgent []string
}

func (n *recordingNotifier) Notify(ctx context.Context, msg string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.normal = append(n.normal, msg)
	return nil
}

func (n *recordingNotifier) NotifyUrgent(ctx context.Context, msg string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.urgent = append(n.urgent, msg)
	return nil
}

// scriptedEar returns an Ear whose clips yield the given transcripts, then
// silence.
func scriptedEar(lines ...string) *Ear {
	e := NewEar("whisper-cli-test-missing", "model.bin", quietLog())
	var mu sync.Mutex
	e.record = func(ctx context.Context, d time.Duration) string {
		mu.Lock()
		defer mu.Unlock()
		if len(lines) == 0 {
			sleepCtx(ctx, 5*time.Millisecond)
			return ""
		}
		next := lines[0]
		lines = lines[1:]
		return next
	}
	return e
}

func TestChannelSpeakEchoesText(t *testing.T) {
	text := &recordingNotifier{}
	c := NewChannel(text, quietLog())

	c.Speak("Chop the onion")
	c.Speak("Timer for Simmer is done.")

	if len(text.normal) != 1 || text.normal[0] != "Chop the onion" {
		t.Fatalf("unexpected normal lines %q", text.normal)
	}
	if len(text.urgent) != 1 || text.urgent[0] != "Timer for Simmer is done." {
		t.Fatalf("unexpected urgent lines %q", text.urgent)
	}
}

func TestChannelSpeakQueuesOnMouth(t *testing.T) {
	player := &fakePlayer{}
	mouth := NewMouth(&fakeSynth{}, player, quietLog())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go mouth.Run(ctx)

	c := NewChannel(&recordingNotifier{}, quietLog(), WithMouth(mouth))
	c.Speak("\x1b[1mServe\x1b[0m")

	waitFor(t, "playback", func() bool { return len(player.getPlayed()) == 1 })
	if got := player.getPlayed()[0]; got != "Serve" {
		t.Fatalf("formatting should be stripped before speech, got %q", got)
	}
}

func TestChannelDeliversTranscripts(t *testing.T) {
	c := NewChannel(&recordingNotifier{}, quietLog(),
		WithEar(scriptedEar("[BLANK_AUDIO]", "next step", "(keyboard clicking) go back")))

	var mu sync.Mutex
	var heard []string
	c.OnTranscript(func(s string) {
		mu.Lock()
		defer mu.Unlock()
		heard = append(heard, s)
	})

	c.Start()
	if !c.Listening() {
		t.Fatal("channel should be listening after Start")
	}
	waitFor(t, "transcripts", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(heard) == 2
	})
	c.Stop()
	c.Wait()

	if c.Listening() {
		t.Fatal("channel should not listen after Stop")
	}
	mu.Lock()
	defer mu.Unlock()
	if heard[0] != "next step" || heard[1] != "go back" {
		t.Fatalf("unexpected transcripts %q", heard)
	}
}

func TestChannelStopIsFinalUntilStart(t *testing.T) {
	c := NewChannel(&recordingNotifier{}, quietLog(), WithEar(scriptedEar()))

	c.Stop() // not started
	c.Start()
	c.Start() // already listening
	c.Stop()
	c.Stop()
	if c.Listening() {
		t.Fatal("stopped channel resumed listening")
	}

	c.Start()
	if !c.Listening() {
		t.Fatal("explicit Start should listen again")
	}
	c.Stop()
	c.Wait()
}

func TestChannelStopDoesNotWaitForEar(t *testing.T) {
	release := make(chan struct{})
	e := NewEar("whisper-cli-test-missing", "model.bin", quietLog())
	e.record = func(ctx context.Context, d time.Duration) string {
		// Transcription of the current clip finishes regardless of ctx.
		<-release
		return "next"
	}

	var mu sync.Mutex
	var heard []string
	c := NewChannel(&recordingNotifier{}, quietLog(), WithEar(e))
	c.OnTranscript(func(s string) {
		mu.Lock()
		defer mu.Unlock()
		heard = append(heard, s)
	})

	c.Start()
	begin := time.Now()
	c.Stop()
	if elapsed := time.Since(begin); elapsed > 100*time.Millisecond {
		t.Fatalf("Stop blocked for %s", elapsed)
	}

	close(release)
	c.Wait()
	mu.Lock()
	defer mu.Unlock()
	if len(heard) != 0 {
		t.Fatalf("clip finished after Stop was delivered: %q", heard)
	}
}

func TestChannelWithoutEar(t *testing.T) {
	c := NewChannel(&recordingNotifier{}, quietLog())
	c.Start()
	if c.Listening() {
		t.Fatal("channel without an ear cannot listen")
	}
	c.Stop()
}

func TestEarSkipsWhileBusy(t *testing.T) {
	e := scriptedEar("next")
	busy := true
	var mu sync.Mutex
	e.busy = func() bool {
		mu.Lock()
		defer mu.Unlock()
		return busy
	}

	ctx, cancel := context.WithCancel(context.Background())
	heard := make(chan string, 1)
	go e.Run(ctx, func(s string) { heard <- s })

	select {
	case s := <-heard:
		t.Fatalf("heard %q while busy", s)
	case <-time.After(50 * time.Millisecond):
	}

	mu.Lock()
	busy = false
	mu.Unlock()

	select {
	case s := <-heard:
		if s != "next" {
			t.Fatalf("unexpected transcript %q", s)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("ear did not resume")
	}
	cancel()
}

func TestCleanTranscription(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  next  ", "next"},
		{"[BLANK_AUDIO]", ""},
		{"(keyboard clicking) finish pasta", "finish pasta"},
		{"[00:00:00.000 --> 00:00:03.000]   repeat", "repeat"},
		{"Thank you.", ""},
		{"you", ""},
		{"next\nstep", "next step"},
	}
	for _, tt := range tests {
		if got := cleanTranscription(tt.in); got != tt.want {
			t.Errorf("cleanTranscription(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNoOp(t *testing.T) {
	n := NewNoOp(quietLog())
	n.OnTranscript(func(string) { t.Fatal("no-op never hears") })
	n.Start()
	n.Speak("hello")
	n.Stop()
}
