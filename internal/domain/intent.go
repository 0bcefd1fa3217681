package domain

// IntentType classifies what the user wants to do.
type IntentType int

const (
	IntentUnknown IntentType = iota
	IntentStart
	IntentAdvance
	IntentRetreat
	IntentRepeat
	IntentFinishTimer      // payload: label fragment
	IntentToggleIngredient // payload: 1-based ingredient number
	IntentToggleAll
	IntentTimers
	IntentHelp
	IntentQuit
)

// String returns a human-readable intent type.
func (i IntentType) String() string {
	switch i {
	case IntentStart:
		return "start"
	case IntentAdvance:
		return "advance"
	case IntentRetreat:
		return "retreat"
	case IntentRepeat:
		return "repeat"
	case IntentFinishTimer:
		return "finish_timer"
	case IntentToggleIngredient:
		return "toggle_ingredient"
	case IntentToggleAll:
		return "toggle_all"
	case IntentTimers:
		return "timers"
	case IntentHelp:
		return "help"
	case IntentQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Intent represents a parsed user action.
type Intent struct {
	Type    IntentType
	Payload string
}
