package engine

import (
	"context"
	"time"

	"github.com/hammamikhairi/ottoweb/internal/domain"
	"github.com/hammamikhairi/ottoweb/internal/logger"
	"github.com/hammamikhairi/ottoweb/internal/timer"
)

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithOnChange sets the callback invoked with a fresh snapshot after every
// event that reached a session.
func WithOnChange(fn func(Snapshot)) DriverOption {
	return func(d *Driver) {
		d.onChange = fn
	}
}

// WithQueueSize sets the capacity of the command and transcript queues.
func WithQueueSize(n int) DriverOption {
	return func(d *Driver) {
		if n > 0 {
			d.queueSize = n
		}
	}
}

// Driver owns the current Session and is the only goroutine that touches
// it. Ticks, voice transcripts and commands are funneled through channels
// into Run.
type Driver struct {
	voice     *voiceLifecycle
	parser    domain.IntentParser
	ticks     <-chan time.Time
	log       *logger.Logger
	onChange  func(Snapshot)
	queueSize int

	session     *Session
	commands    chan domain.Intent
	loads       chan *domain.Recipe
	transcripts chan string
}

// NewDriver wires a driver to a voice channel and a tick source. The
// parser turns voice transcripts into intents.
func NewDriver(voice domain.VoiceChannel, parser domain.IntentParser, ticks <-chan time.Time, log *logger.Logger, opts ...DriverOption) *Driver {
	d := &Driver{
		voice:     newVoiceLifecycle(voice),
		parser:    parser,
		ticks:     ticks,
		log:       log,
		queueSize: 16,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.commands = make(chan domain.Intent, d.queueSize)
	d.loads = make(chan *domain.Recipe, 1)
	d.transcripts = make(chan string, d.queueSize)
	voice.OnTranscript(d.hear)
	return d
}

// Load replaces the current session with a fresh one for recipe. It blocks
// until the loop accepts the recipe or ctx is done.
func (d *Driver) Load(ctx context.Context, recipe *domain.Recipe) error {
	select {
	case d.loads <- recipe:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Submit queues a typed command. It never blocks; it reports false when
// the queue is full and the command was dropped.
func (d *Driver) Submit(intent domain.Intent) bool {
	select {
	case d.commands <- intent:
		return true
	default:
		d.log.Warn("command queue full, dropping %s", intent.Type)
		return false
	}
}

// hear is registered with the voice channel and may run on any goroutine.
func (d *Driver) hear(transcript string) {
	select {
	case d.transcripts <- transcript:
	default:
		d.log.Warn("transcript queue full, dropping %q", transcript)
	}
}

// Run processes events until ctx is cancelled or a quit command arrives.
// The current session is closed on the way out. Voice Start and Stop run
// on a separate goroutine so a slow teardown never holds up ticks.
func (d *Driver) Run(ctx context.Context) error {
	lifecycleDone := make(chan struct{})
	go func() {
		defer close(lifecycleDone)
		d.voice.run()
	}()
	defer func() {
		d.closeSession()
		d.voice.close()
		<-lifecycleDone
	}()

	for {
		// A pending load wins over commands queued behind it.
		select {
		case recipe := <-d.loads:
			d.replace(recipe)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			return ctx.Err()

		case recipe := <-d.loads:
			d.replace(recipe)

		case <-d.ticks:
			if d.session == nil {
				continue
			}
			if d.session.timers.Len() == 0 {
				continue
			}
			d.session.Tick()
			d.publish()

		case transcript := <-d.transcripts:
			intent := d.parser.Parse(transcript)
			d.log.Debug("heard %q -> %s", transcript, intent.Type)
			d.apply(intent)

		case intent := <-d.commands:
			if intent.Type == domain.IntentQuit {
				d.log.Debug("quit requested")
				return nil
			}
			d.apply(intent)
		}
	}
}

func (d *Driver) replace(recipe *domain.Recipe) {
	d.closeSession()
	d.session = NewSession(recipe, d.voice, d.log, WithRegistry(timer.NewRegistry(d.log)))
	d.log.Info("loaded %q as session %s", recipe.Title, d.session.ID)
	d.publish()
}

func (d *Driver) apply(intent domain.Intent) {
	if d.session == nil {
		d.log.Debug("no session loaded, ignoring %s", intent.Type)
		return
	}
	if d.session.Dispatch(intent) {
		d.publish()
	}
}

func (d *Driver) publish() {
	if d.onChange == nil || d.session == nil {
		return
	}
	d.onChange(d.session.Snapshot())
}

func (d *Driver) closeSession() {
	if d.session == nil {
		return
	}
	d.session.Close()
	d.session = nil
}
