package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/hammamikhairi/ottoweb/internal/domain"
	"github.com/hammamikhairi/ottoweb/internal/logger"
)

// fakeVoice records every call made through the voice channel.
type fakeVoice struct {
	mu      sync.Mutex
	spoken  []string
	starts  int
	stops   int
	handler func(string)

	stopDelay time.Duration // Stop sleeps this long, like an ear finishing a clip
}

var _ domain.VoiceChannel = (*fakeVoice)(nil)

func (f *fakeVoice) Speak(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.spoken = append(f.spoken, text)
}

func (f *fakeVoice) OnTranscript(handler func(string)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = handler
}

func (f *fakeVoice) Start() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
}

func (f *fakeVoice) Stop() {
	f.mu.Lock()
	delay := f.stopDelay
	f.mu.Unlock()
	time.Sleep(delay)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
}

func (f *fakeVoice) say(transcript string) {
	f.mu.Lock()
	h := f.handler
	f.mu.Unlock()
	h(transcript)
}

func (f *fakeVoice) getSpoken() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]string, len(f.spoken))
	copy(cp, f.spoken)
	return cp
}

func (f *fakeVoice) counts() (starts, stops int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.starts, f.stops
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func testRecipe(t *testing.T) *domain.Recipe {
	t.Helper()
	r, err := domain.NewRecipe(
		"Tomato Soup",
		[]string{"2 tomatoes", "1 onion", "500ml stock"},
		[]string{"Chop the onion", "Simmer for 5 minutes", "Serve"},
		"https://example.com/soup",
	)
	if err != nil {
		t.Fatalf("building recipe: %v", err)
	}
	return r
}

func newTestSession(t *testing.T) (*Session, *fakeVoice) {
	t.Helper()
	voice := &fakeVoice{}
	s := NewSession(testRecipe(t), voice, logger.New(logger.LevelOff, nil), WithSessionID("test"))
	return s, voice
}
