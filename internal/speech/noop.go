package speech

import (
	"github.com/hammamikhairi/ottoweb/internal/domain"
	"github.com/hammamikhairi/ottoweb/internal/logger"
)

// Compile-time interface check.
var _ domain.VoiceChannel = (*NoOp)(nil)

// NoOp is a voice channel that only logs. Used when audio is disabled and
// nothing should be printed.
type NoOp struct {
	log *logger.Logger
}

// NewNoOp creates a silent voice channel.
func NewNoOp(log *logger.Logger) *NoOp {
	return &NoOp{log: log}
}

// Speak logs the text.
func (n *NoOp) Speak(text string) {
	n.log.Debug("voice no-op: would say %q", text)
}

// OnTranscript ignores the handler; NoOp never hears anything.
func (n *NoOp) OnTranscript(func(string)) {}

// Start does nothing.
func (n *NoOp) Start() {}

// Stop does nothing.
func (n *NoOp) Stop() {}
