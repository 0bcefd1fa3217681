package engine

import (
	"sync"

	"github.com/hammamikhairi/ottoweb/internal/domain"
)

// voiceLifecycle hands Start and Stop calls to a worker goroutine so the
// driver loop never waits on audio teardown. Calls run in the order they
// were made. Speak and OnTranscript pass straight through.
type voiceLifecycle struct {
	domain.VoiceChannel

	mu      sync.Mutex
	pending []func()
	closed  bool
	wake    chan struct{}
}

var _ domain.VoiceChannel = (*voiceLifecycle)(nil)

func newVoiceLifecycle(voice domain.VoiceChannel) *voiceLifecycle {
	return &voiceLifecycle{VoiceChannel: voice, wake: make(chan struct{}, 1)}
}

func (l *voiceLifecycle) Start() { l.enqueue(l.VoiceChannel.Start) }

func (l *voiceLifecycle) Stop() { l.enqueue(l.VoiceChannel.Stop) }

func (l *voiceLifecycle) enqueue(fn func()) {
	l.mu.Lock()
	l.pending = append(l.pending, fn)
	l.mu.Unlock()
	l.signal()
}

func (l *voiceLifecycle) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// run executes queued calls until close has been called and the queue is
// empty.
func (l *voiceLifecycle) run() {
	for {
		l.mu.Lock()
		if len(l.pending) == 0 {
			closed := l.closed
			l.mu.Unlock()
			if closed {
				return
			}
			<-l.wake
			continue
		}
		fn := l.pending[0]
		l.pending = l.pending[1:]
		l.mu.Unlock()
		fn()
	}
}

// close lets run return once the calls queued so far have executed.
func (l *voiceLifecycle) close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	l.signal()
}
