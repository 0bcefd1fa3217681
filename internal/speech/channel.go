package speech

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"github.com/hammamikhairi/ottoweb/internal/domain"
	"github.com/hammamikhairi/ottoweb/internal/logger"
)

// Compile-time interface check.
var _ domain.VoiceChannel = (*Channel)(nil)

// ChannelOption configures a Channel.
type ChannelOption func(*Channel)

// WithMouth speaks narration aloud in addition to printing it.
func WithMouth(m *Mouth) ChannelOption {
	return func(c *Channel) { c.mouth = m }
}

// WithEar enables voice input.
func WithEar(e *Ear) ChannelOption {
	return func(c *Channel) { c.ear = e }
}

// Channel is the voice boundary of a cook session. Narration is echoed to
// a text notifier and, with a Mouth, spoken. With an Ear, Start listens
// until Stop; a stopped channel stays quiet until Start is called again.
// Neither Start nor Stop blocks.
type Channel struct {
	text  domain.Notifier
	mouth *Mouth
	ear   *Ear
	log   *logger.Logger

	mu       sync.Mutex
	handlers []func(string)
	cancel   context.CancelFunc
	done     chan struct{} // closed when the latest ear goroutine returns
}

// NewChannel creates a voice channel that prints narration to text.
func NewChannel(text domain.Notifier, log *logger.Logger, opts ...ChannelOption) *Channel {
	c := &Channel{text: text, log: log}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Speak prints text and queues it for speech.
func (c *Channel) Speak(text string) {
	ctx := context.Background()
	urgent := strings.HasPrefix(text, "Timer for ")
	var err error
	if urgent {
		err = c.text.NotifyUrgent(ctx, text)
	} else {
		err = c.text.Notify(ctx, text)
	}
	if err != nil {
		c.log.Warn("notify: %v", err)
	}

	if c.mouth == nil {
		return
	}
	priority := PriorityNormal
	if urgent {
		priority = PriorityHigh
	}
	c.mouth.Say(cleanForSpeech(text), priority)
}

// OnTranscript registers a handler for recognized utterances.
func (c *Channel) OnTranscript(handler func(string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, handler)
}

// Start begins listening. It is a no-op without an Ear or when already
// listening. If a previous ear is still finishing its last clip, the new
// one starts once it has returned.
func (c *Channel) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ear == nil || c.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	prev, done := c.done, make(chan struct{})
	c.cancel, c.done = cancel, done
	go func() {
		defer close(done)
		if prev != nil {
			<-prev
		}
		c.ear.Run(ctx, func(text string) {
			if ctx.Err() == nil {
				c.deliver(text)
			}
		})
	}()
	c.log.Debug("voice input started")
}

// Stop ends listening. It returns immediately; the ear finishes its
// current clip in the background and nothing it hears is delivered.
func (c *Channel) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel == nil {
		return
	}
	c.cancel()
	c.cancel = nil
	c.log.Debug("voice input stopped")
}

// Wait blocks until the ear goroutine, if any, has returned.
func (c *Channel) Wait() {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Listening reports whether voice input is active.
func (c *Channel) Listening() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancel != nil
}

func (c *Channel) deliver(transcript string) {
	c.mu.Lock()
	handlers := append([]func(string){}, c.handlers...)
	c.mu.Unlock()
	for _, h := range handlers {
		h(transcript)
	}
}

var ansiCodes = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// cleanForSpeech strips terminal formatting that should not be read out.
func cleanForSpeech(msg string) string {
	return strings.TrimSpace(ansiCodes.ReplaceAllString(msg, ""))
}
