package speech

import (
	"context"
	"os/exec"
	"regexp"
	"strings"
	"time"

	audiotranscriber "github.com/sklyt/whisper/pkg"

	"github.com/hammamikhairi/ottoweb/internal/logger"
)

// recordFunc records for d and returns the raw transcription.
type recordFunc func(ctx context.Context, d time.Duration) string

// EarOption configures the Ear.
type EarOption func(*Ear)

// WithRecordDuration sets the length of each recorded clip.
func WithRecordDuration(d time.Duration) EarOption {
	return func(e *Ear) {
		if d > 0 {
			e.clip = d
		}
	}
}

// WithTempDir sets the directory for temporary WAV files.
func WithTempDir(dir string) EarOption {
	return func(e *Ear) {
		if dir != "" {
			e.tempDir = dir
		}
	}
}

// WithEchoGuard makes the ear skip recording while busy reports true,
// so narration is not transcribed as a command.
func WithEchoGuard(busy func() bool) EarOption {
	return func(e *Ear) { e.busy = busy }
}

// Ear listens continuously through a local whisper.cpp model and delivers
// each non-empty utterance.
type Ear struct {
	whisperBin string
	modelPath  string
	tempDir    string
	clip       time.Duration
	busy       func() bool
	record     recordFunc
	log        *logger.Logger
}

// NewEar creates a listener. The whisper binary is looked up on PATH but
// a missing binary is only logged; recording then fails per clip.
func NewEar(whisperBin, modelPath string, log *logger.Logger, opts ...EarOption) *Ear {
	e := &Ear{
		whisperBin: whisperBin,
		modelPath:  modelPath,
		tempDir:    ".ottoweb-stt",
		clip:       3 * time.Second,
		busy:       func() bool { return false },
		log:        log,
	}
	e.record = e.recordClip
	for _, opt := range opts {
		opt(e)
	}
	if _, err := exec.LookPath(e.whisperBin); err != nil {
		log.Warn("ear: whisper binary %q not found: %v", e.whisperBin, err)
	}
	return e
}

// Run records clips until ctx is cancelled, calling deliver with every
// cleaned, non-empty transcription.
func (e *Ear) Run(ctx context.Context, deliver func(string)) {
	e.log.Info("ear: listening (clip=%s)", e.clip)
	defer e.log.Info("ear: stopped")

	for ctx.Err() == nil {
		if e.busy() {
			sleepCtx(ctx, 200*time.Millisecond)
			continue
		}

		text := e.record(ctx, e.clip)
		if ctx.Err() != nil {
			return
		}
		// Narration started mid-clip; the audio is contaminated.
		if e.busy() {
			continue
		}
		text = cleanTranscription(text)
		if text == "" {
			continue
		}
		e.log.Debug("ear: heard %q", text)
		deliver(text)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}

// transcribeGrace bounds how long a stopped clip may take to transcribe.
const transcribeGrace = 10 * time.Second

// recordClip runs one whisper recording cycle.
func (e *Ear) recordClip(ctx context.Context, d time.Duration) string {
	result := make(chan string, 1)
	callback := func(text string) {
		select {
		case result <- text:
		default:
		}
	}

	verbose := e.log.GetLevel() >= logger.LevelVerbose
	t, err := audiotranscriber.NewTranscriber(e.whisperBin, e.modelPath, e.tempDir, "wav", callback, verbose)
	if err != nil {
		e.log.Error("ear: transcriber init failed: %v", err)
		sleepCtx(ctx, 2*time.Second)
		return ""
	}
	if err := t.Start(); err != nil {
		e.log.Error("ear: recording start failed: %v", err)
		sleepCtx(ctx, 2*time.Second)
		return ""
	}

	sleepCtx(ctx, d)
	t.Stop()
	select {
	case text := <-result:
		return text
	case <-time.After(transcribeGrace):
		e.log.Warn("ear: no transcription after %s, dropping clip", transcribeGrace)
		return ""
	}
}

var (
	// whisper annotations such as "(keyboard clicking)" or "[BLANK_AUDIO]".
	annotation = regexp.MustCompile(`[\(\[][A-Za-z_][A-Za-z_\s]*[\)\]]`)
	// "[00:00:00.000 --> 00:00:03.000]"
	timestamp = regexp.MustCompile(`\[\d{2}:\d{2}:\d{2}\.\d{3} --> \d{2}:\d{2}:\d{2}\.\d{3}\]`)
)

// hallucinations are phrases whisper emits on silence.
var hallucinations = map[string]bool{
	"...":                     true,
	"you":                     true,
	"thank you.":              true,
	"thanks for watching!":    true,
	"thank you for watching.": true,
	"bye.":                    true,
	"the end.":                true,
}

// cleanTranscription strips whisper artefacts and returns "" when nothing
// meaningful is left.
func cleanTranscription(s string) string {
	s = timestamp.ReplaceAllString(s, " ")
	s = annotation.ReplaceAllString(s, " ")
	s = strings.Join(strings.Fields(s), " ")
	if hallucinations[strings.ToLower(s)] {
		return ""
	}
	return s
}
