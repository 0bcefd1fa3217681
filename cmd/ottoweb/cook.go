package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/ottoweb/internal/config"
	"github.com/hammamikhairi/ottoweb/internal/conversation"
	"github.com/hammamikhairi/ottoweb/internal/display"
	"github.com/hammamikhairi/ottoweb/internal/domain"
	"github.com/hammamikhairi/ottoweb/internal/engine"
	"github.com/hammamikhairi/ottoweb/internal/logger"
	"github.com/hammamikhairi/ottoweb/internal/speech"
	"github.com/hammamikhairi/ottoweb/internal/timer"
)

const defaultCookLog = ".ottoweb-logs/ottoweb.log"

var helpLines = []string{
	"start             begin cooking once the ingredients are ready",
	"next / back       move between steps",
	"repeat            hear the current step again",
	"check <n>         tick ingredient n (or just type the number)",
	"all               tick or clear every ingredient",
	"timers            list running timers",
	"finish <label>    stop the timer whose label contains <label>",
	"quit              leave",
}

type cookOptions struct {
	plain       bool
	noNarration bool
	noSpeech    bool
	noVoice     bool
}

func newCookCommand(ctx *commandContext) *cobra.Command {
	var opts cookOptions

	cmd := &cobra.Command{
		Use:   "cook <url|file>",
		Short: "Cook a recipe step by step",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			log, err := ctx.newLogger(defaultCookLog)
			if err != nil {
				return err
			}
			defer ctx.close()

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			src, _ := newSource(cfg, log)
			r, err := loadTarget(runCtx, src, args[0])
			if err != nil {
				return err
			}
			log.Info("cooking %q (%d ingredients, %d steps)", r.Title, len(r.Ingredients), len(r.Steps))

			if opts.plain {
				return cookPlain(runCtx, cfg, log, r, opts, cmd.InOrStdin(), cmd.OutOrStdout())
			}
			return cookTUI(runCtx, cfg, log, r, opts)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.plain, "plain", false, "line-based output instead of the full-screen UI")
	f.BoolVar(&opts.noNarration, "no-narration", false, "do not print or speak narration")
	f.BoolVar(&opts.noSpeech, "no-speech", false, "disable text-to-speech even if configured")
	f.BoolVar(&opts.noVoice, "no-voice", false, "disable voice input even if configured")
	return cmd
}

// cookRuntime is everything a cook session needs besides its front end.
type cookRuntime struct {
	driver *engine.Driver
	ticker *timer.Ticker
	voice  domain.VoiceChannel
	mouth  *speech.Mouth
	parser *conversation.KeywordParser
	log    *logger.Logger
}

func newCookRuntime(ctx context.Context, cfg *config.Config, log *logger.Logger, text domain.Notifier, opts cookOptions, onChange func(engine.Snapshot)) *cookRuntime {
	rt := &cookRuntime{
		parser: conversation.NewKeywordParser(log.With("input")),
		log:    log,
	}

	if opts.noNarration {
		rt.voice = speech.NewNoOp(log.With("voice"))
	} else {
		var chOpts []speech.ChannelOption
		if !opts.noSpeech {
			rt.mouth = newMouth(ctx, cfg, log)
			if rt.mouth != nil {
				chOpts = append(chOpts, speech.WithMouth(rt.mouth))
			}
		}
		if !opts.noVoice {
			if ear := newEar(cfg, log, rt.mouth); ear != nil {
				chOpts = append(chOpts, speech.WithEar(ear))
			}
		}
		rt.voice = speech.NewChannel(text, log.With("voice"), chOpts...)
	}

	rt.ticker = timer.NewTicker(log.With("ticker"), timer.WithTickInterval(cfg.TickInterval()))
	rt.driver = engine.NewDriver(rt.voice, conversation.NewVoiceParser(log.With("voice-parser")),
		rt.ticker.C(), log.With("engine"), engine.WithOnChange(onChange))
	return rt
}

// newMouth builds Azure narration. It returns nil when speech is disabled,
// unconfigured, or no audio device is available.
func newMouth(ctx context.Context, cfg *config.Config, log *logger.Logger) *speech.Mouth {
	sc := cfg.Speech
	if !sc.Enabled {
		return nil
	}
	if sc.AzureKey == "" || sc.AzureRegion == "" {
		log.Info("TTS disabled: set %s and %s to enable", config.EnvAzureSpeechKey, config.EnvAzureSpeechRegion)
		return nil
	}
	player, err := speech.NewPlayer(log.With("audio"))
	if err != nil {
		log.Error("audio player init failed, speech disabled: %v", err)
		return nil
	}
	tts := speech.NewAzureClient(sc.AzureKey, sc.AzureRegion, log.With("tts"),
		speech.WithVoice(sc.Voice),
		speech.WithHTTPTimeout(cfg.SpeechTimeout()),
	)
	mouth := speech.NewMouth(tts, player, log.With("mouth"),
		speech.WithChunkSize(sc.ChunkSize),
		speech.WithCache(speech.NewAudioCache(tts.Voice(), sc.CacheDir, log.With("tts-cache"))),
	)
	go mouth.Run(ctx)
	log.Info("TTS enabled (voice=%s, region=%s)", tts.Voice(), sc.AzureRegion)
	return mouth
}

// newEar builds whisper voice input, or returns nil when it is disabled or
// the model is missing.
func newEar(cfg *config.Config, log *logger.Logger, mouth *speech.Mouth) *speech.Ear {
	vc := cfg.Voice
	if !vc.Enabled {
		return nil
	}
	if _, err := os.Stat(vc.ModelPath); err != nil {
		log.Error("voice input disabled: whisper model: %v", err)
		return nil
	}
	if err := os.MkdirAll(vc.TempDir, 0o755); err != nil {
		log.Error("voice input disabled: %v", err)
		return nil
	}
	earOpts := []speech.EarOption{
		speech.WithRecordDuration(cfg.ClipDuration()),
		speech.WithTempDir(vc.TempDir),
	}
	if mouth != nil {
		earOpts = append(earOpts, speech.WithEchoGuard(mouth.Busy))
	}
	log.Info("voice input enabled (bin=%s, model=%s, clip=%s)", vc.WhisperBin, vc.ModelPath, cfg.ClipDuration())
	return speech.NewEar(vc.WhisperBin, vc.ModelPath, log.With("ear"), earOpts...)
}

// start runs the ticker and driver and loads r. done receives the driver's
// result.
func (rt *cookRuntime) start(ctx context.Context, r *domain.Recipe) (<-chan error, error) {
	rt.ticker.Start(ctx)
	done := make(chan error, 1)
	go func() {
		done <- rt.driver.Run(ctx)
		rt.ticker.Stop()
	}()
	if err := rt.driver.Load(ctx, r); err != nil {
		return nil, err
	}
	return done, nil
}

// handle routes one typed line. Help and unrecognised input are answered
// locally; everything else goes to the driver.
func (rt *cookRuntime) handle(line string, hint func(string)) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	intent := rt.parser.Parse(line)
	rt.log.Debug("typed %q -> %s", line, intent.Type)

	switch intent.Type {
	case domain.IntentHelp:
		for _, l := range helpLines {
			hint(l)
		}
		return
	case domain.IntentUnknown:
		hint(fmt.Sprintf("Didn't catch %q. Type \"help\" for commands.", intent.Payload))
		return
	case domain.IntentStart, domain.IntentAdvance, domain.IntentRetreat, domain.IntentRepeat:
		if rt.mouth != nil {
			rt.mouth.Interrupt()
		}
	}

	rt.driver.Submit(intent)
}

func cookTUI(ctx context.Context, cfg *config.Config, log *logger.Logger, r *domain.Recipe, opts cookOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ui := display.NewUI()
	rt := newCookRuntime(ctx, cfg, log, ui, opts, ui.Show)
	rt.voice.OnTranscript(ui.PrintVoice)

	done, err := rt.start(ctx, r)
	if err != nil {
		return err
	}

	go func() {
		ui.WaitReady()
		ui.PrintHint(`Type "help" for commands, "quit" to exit.`)
		for {
			select {
			case <-ctx.Done():
				ui.Quit()
				return
			case err := <-done:
				if err != nil && !errors.Is(err, context.Canceled) {
					log.Error("engine: %v", err)
				}
				ui.Quit()
				return
			case line := <-ui.InputChan():
				rt.handle(line, ui.PrintHint)
			}
		}
	}()

	if err := ui.Run(); err != nil {
		log.Error("display: %v", err)
		return err
	}
	return nil
}

func cookPlain(ctx context.Context, cfg *config.Config, log *logger.Logger, r *domain.Recipe, opts cookOptions, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	printLine := func(format string, a ...any) { fmt.Fprintf(out, format+"\n", a...) }
	text := conversation.NewCLINotifier(log.With("notify"), printLine)
	view := &plainView{out: out}
	rt := newCookRuntime(ctx, cfg, log, text, opts, view.show)

	done, err := rt.start(ctx, r)
	if err != nil {
		return err
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	hint := func(s string) { printLine("  %s", s) }
	for {
		select {
		case err := <-done:
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		case line, ok := <-lines:
			if !ok {
				rt.driver.Submit(domain.Intent{Type: domain.IntentQuit})
				lines = nil
				continue
			}
			rt.handle(line, hint)
		}
	}
}

// plainView prints the checklist and step headers when they change. Timer
// countdowns are left to the "timers" command.
type plainView struct {
	out  io.Writer
	last string
}

func (v *plainView) show(s engine.Snapshot) {
	var b strings.Builder
	switch s.State {
	case domain.SessionStaging:
		fmt.Fprintf(&b, "%s\n", s.Title)
		for i, ing := range s.Ingredients {
			mark := " "
			if ing.Checked {
				mark = "x"
			}
			fmt.Fprintf(&b, "  [%s] %d. %s\n", mark, i+1, ing.Text)
		}
		b.WriteString(`Type "start" when everything is ready.`)
	case domain.SessionCooking:
		fmt.Fprintf(&b, "Step %d of %d", s.StepIndex+1, s.StepCount)
	case domain.SessionComplete:
		b.WriteString("Recipe complete.")
	}
	if b.Len() == 0 || b.String() == v.last {
		return
	}
	v.last = b.String()
	fmt.Fprintln(v.out, v.last)
}
