package speech

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/hammamikhairi/ottoweb/internal/logger"
)

// MouthOption configures the Mouth.
type MouthOption func(*Mouth)

// WithChunkSize sets the approximate max characters per synthesis request.
// Longer text is split at sentence boundaries and synthesized in parallel.
func WithChunkSize(n int) MouthOption {
	return func(m *Mouth) { m.chunkSize = n }
}

// WithCache sets the audio cache. Without one, a memory-only cache is used.
func WithCache(c *AudioCache) MouthOption {
	return func(m *Mouth) { m.cache = c }
}

// Mouth serializes speech output: queue, chunk, synthesize in parallel,
// play in order. One utterance plays at a time, highest priority first.
type Mouth struct {
	tts    Synthesizer
	player AudioPlayer
	cache  *AudioCache
	log    *logger.Logger

	mu          sync.Mutex
	queue       []request
	notify      chan struct{}
	speaking    bool
	interrupted bool
	chunkSize   int
}

// NewMouth creates a speech dispatcher.
func NewMouth(tts Synthesizer, player AudioPlayer, log *logger.Logger, opts ...MouthOption) *Mouth {
	m := &Mouth{
		tts:       tts,
		player:    player,
		log:       log,
		notify:    make(chan struct{}, 1),
		chunkSize: 200,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.cache == nil {
		m.cache = NewAudioCache(tts.Voice(), "", log)
	}
	return m
}

// Say queues text. It never blocks.
func (m *Mouth) Say(text string, priority Priority) {
	if strings.TrimSpace(text) == "" {
		return
	}
	m.mu.Lock()
	m.queue = append(m.queue, request{text: text, priority: priority, queuedAt: time.Now()})
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}
}

// Busy reports whether the mouth is speaking or has queued speech.
func (m *Mouth) Busy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.speaking || len(m.queue) > 0
}

// Interrupt drops queued speech and cuts off current playback.
func (m *Mouth) Interrupt() {
	m.mu.Lock()
	m.queue = m.queue[:0]
	m.interrupted = true
	m.mu.Unlock()
	m.player.Stop()
	m.log.Debug("mouth: interrupted")
}

// Cache returns the audio cache.
func (m *Mouth) Cache() *AudioCache { return m.cache }

// Run processes queued speech until ctx is cancelled.
func (m *Mouth) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.notify:
			m.drain(ctx)
		}
	}
}

func (m *Mouth) drain(ctx context.Context) {
	for ctx.Err() == nil {
		m.mu.Lock()
		m.interrupted = false
		m.mu.Unlock()

		req, ok := m.dequeue()
		if !ok {
			return
		}
		m.speak(ctx, req)

		m.mu.Lock()
		m.speaking = false
		m.mu.Unlock()
	}
}

// dequeue pops the oldest request of the highest priority and marks the
// mouth as speaking.
func (m *Mouth) dequeue() (request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.queue) == 0 {
		return request{}, false
	}
	best := 0
	for i, r := range m.queue {
		if r.priority > m.queue[best].priority {
			best = i
		}
	}
	req := m.queue[best]
	m.queue = append(m.queue[:best], m.queue[best+1:]...)
	m.speaking = true
	return req, true
}

func (m *Mouth) speak(ctx context.Context, req request) {
	m.log.Debug("mouth: speaking (waited %s): %s",
		time.Since(req.queuedAt).Round(time.Millisecond), truncate(req.text, 60))

	chunks := splitChunks(req.text, m.chunkSize)
	audio := make([][]byte, len(chunks))

	var wg sync.WaitGroup
	for i, chunk := range chunks {
		wg.Add(1)
		go func(i int, text string) {
			defer wg.Done()
			data, err := m.synthesize(ctx, text)
			if err != nil {
				m.log.Error("mouth: synthesis failed: %v", err)
				return
			}
			audio[i] = data
		}(i, chunk)
	}
	wg.Wait()

	for _, data := range audio {
		if data == nil || ctx.Err() != nil || m.wasInterrupted() {
			continue
		}
		if err := m.player.Play(data); err != nil {
			m.log.Error("mouth: playback failed: %v", err)
		}
	}
}

func (m *Mouth) wasInterrupted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.interrupted
}

func (m *Mouth) synthesize(ctx context.Context, text string) ([]byte, error) {
	if data, ok := m.cache.Get(text); ok {
		return data, nil
	}
	data, err := m.tts.Synthesize(ctx, text)
	if err != nil {
		return nil, err
	}
	m.cache.Put(text, data)
	return data, nil
}

// splitChunks groups sentences into chunks of about size characters.
// size <= 0 disables chunking.
func splitChunks(text string, size int) []string {
	if size <= 0 || len(text) <= size {
		return []string{text}
	}

	var chunks []string
	var cur strings.Builder
	flush := func() {
		if c := strings.TrimSpace(cur.String()); c != "" {
			chunks = append(chunks, c)
		}
		cur.Reset()
	}
	for _, s := range splitSentences(text) {
		if cur.Len() > 0 && cur.Len()+len(s) > size {
			flush()
		}
		cur.WriteString(s)
	}
	flush()
	return chunks
}

// splitSentences splits after . ! ? keeping the punctuation and any
// trailing whitespace with the sentence.
func splitSentences(text string) []string {
	var out []string
	var cur strings.Builder
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		cur.WriteRune(runes[i])
		if runes[i] != '.' && runes[i] != '!' && runes[i] != '?' {
			continue
		}
		for i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			i++
			cur.WriteRune(runes[i])
		}
		out = append(out, cur.String())
		cur.Reset()
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
