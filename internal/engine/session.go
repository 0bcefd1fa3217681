// Package engine implements the cook session state machine and the driver
// loop that feeds it ticks, voice transcripts and typed commands.
package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hammamikhairi/ottoweb/internal/domain"
	"github.com/hammamikhairi/ottoweb/internal/logger"
	"github.com/hammamikhairi/ottoweb/internal/timer"
)

// Narration spoken outside of step text.
const (
	completeLine   = "Recipe complete. Enjoy your meal."
	timerDoneLine  = "Timer for %s is done."
	noTimersLine   = "No timers running."
	timerCancelled = "Cancelled timer for %s."
)

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSessionID overrides the generated session ID.
func WithSessionID(id string) SessionOption {
	return func(s *Session) {
		s.ID = id
	}
}

// WithRegistry supplies the timer registry the session owns.
func WithRegistry(r *timer.Registry) SessionOption {
	return func(s *Session) {
		s.timers = r
	}
}

// Session is one guided cooking run over a recipe. It is not safe for
// concurrent use; Driver serializes every call.
type Session struct {
	ID string

	recipe  *domain.Recipe
	voice   domain.VoiceChannel
	timers  *timer.Registry
	log     *logger.Logger
	state   domain.SessionState
	step    int
	checked map[int]bool
}

// NewSession creates a session in the staging state.
func NewSession(recipe *domain.Recipe, voice domain.VoiceChannel, log *logger.Logger, opts ...SessionOption) *Session {
	s := &Session{
		ID:      generateID(),
		recipe:  recipe,
		voice:   voice,
		log:     log,
		state:   domain.SessionStaging,
		checked: make(map[int]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.timers == nil {
		s.timers = timer.NewRegistry(log)
	}
	return s
}

// State returns the lifecycle state.
func (s *Session) State() domain.SessionState { return s.state }

// StepIndex returns the current step index.
func (s *Session) StepIndex() int { return s.step }

// Start leaves staging, narrates the first step and begins listening.
func (s *Session) Start() {
	if s.state != domain.SessionStaging {
		return
	}
	s.state = domain.SessionCooking
	s.step = 0
	s.log.Info("session %s: cooking %q (%d steps)", s.ID, s.recipe.Title, s.recipe.StepCount())
	s.voice.Speak(s.recipe.Step(0))
	s.voice.Start()
}

// Advance marks the current step done. A timer is started for it when its
// text names a duration. The last step completes the session.
func (s *Session) Advance() {
	if s.state != domain.SessionCooking {
		return
	}
	text := s.recipe.Step(s.step)
	if secs, ok := timer.ParseDuration(text); ok {
		s.timers.Create(s.step, timer.Label(text), secs)
	}

	if s.step < s.recipe.StepCount()-1 {
		s.step++
		s.voice.Speak(s.recipe.Step(s.step))
		return
	}

	s.state = domain.SessionComplete
	s.log.Info("session %s: complete", s.ID)
	s.voice.Speak(completeLine)
	s.voice.Stop()
}

// Retreat moves back one step. It does nothing on the first step.
func (s *Session) Retreat() {
	if s.state != domain.SessionCooking || s.step == 0 {
		return
	}
	s.step--
	s.voice.Speak(s.recipe.Step(s.step))
}

// Repeat narrates the current step again.
func (s *Session) Repeat() {
	if s.state != domain.SessionCooking {
		return
	}
	s.voice.Speak(s.recipe.Step(s.step))
}

// FinishNamedTimer cancels the first running timer whose label contains
// label, ignoring case. An empty label matches the first timer.
func (s *Session) FinishNamedTimer(label string) (domain.Timer, bool) {
	t, ok := s.timers.CancelLabel(label)
	if ok {
		s.log.Debug("session %s: finished timer %q", s.ID, t.Label)
	}
	return t, ok
}

// ToggleIngredient flips the checked mark of ingredient i (0-based).
func (s *Session) ToggleIngredient(i int) {
	if i < 0 || i >= len(s.recipe.Ingredients) {
		return
	}
	if s.checked[i] {
		delete(s.checked, i)
		return
	}
	s.checked[i] = true
}

// ToggleAllIngredients clears every mark when all are checked, otherwise
// checks them all.
func (s *Session) ToggleAllIngredients() {
	n := len(s.recipe.Ingredients)
	if len(s.checked) == n {
		clear(s.checked)
		return
	}
	for i := 0; i < n; i++ {
		s.checked[i] = true
	}
}

// IsChecked reports whether ingredient i is checked.
func (s *Session) IsChecked(i int) bool { return s.checked[i] }

// Tick advances every timer by one second and announces the ones that
// expired.
func (s *Session) Tick() []domain.Timer {
	expired := s.timers.Tick()
	for _, t := range expired {
		s.voice.Speak(fmt.Sprintf(timerDoneLine, t.Label))
	}
	return expired
}

// Timers returns the running timers in step order.
func (s *Session) Timers() []domain.Timer { return s.timers.ListActive() }

// Dispatch applies an intent. It reports false for intents the session
// does not handle (quit, help, unknown).
func (s *Session) Dispatch(intent domain.Intent) bool {
	switch intent.Type {
	case domain.IntentStart:
		s.Start()
	case domain.IntentAdvance:
		s.Advance()
	case domain.IntentRetreat:
		s.Retreat()
	case domain.IntentRepeat:
		s.Repeat()
	case domain.IntentFinishTimer:
		if t, ok := s.FinishNamedTimer(intent.Payload); ok {
			s.voice.Speak(fmt.Sprintf(timerCancelled, t.Label))
		}
	case domain.IntentToggleIngredient:
		n, err := strconv.Atoi(strings.TrimSpace(intent.Payload))
		if err != nil {
			s.log.Debug("bad ingredient number %q", intent.Payload)
			return true
		}
		s.ToggleIngredient(n - 1)
	case domain.IntentToggleAll:
		s.ToggleAllIngredients()
	case domain.IntentTimers:
		s.voice.Speak(s.timerSummary())
	default:
		return false
	}
	return true
}

func (s *Session) timerSummary() string {
	active := s.timers.ListActive()
	if len(active) == 0 {
		return noTimersLine
	}
	parts := make([]string, len(active))
	for i, t := range active {
		parts[i] = fmt.Sprintf("%s %s", t.Label, timer.Format(t.Remaining))
	}
	return strings.Join(parts, ", ")
}

// Close tears the session down: every timer is cancelled and voice input
// stops.
func (s *Session) Close() {
	n := s.timers.CancelAll()
	s.voice.Stop()
	s.log.Debug("session %s: closed, %d timers cancelled", s.ID, n)
}
