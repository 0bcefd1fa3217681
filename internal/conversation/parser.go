// Package conversation turns user input (typed commands and voice
// transcripts) into intents, and provides text notifiers.
package conversation

import (
	"regexp"
	"strings"

	"github.com/hammamikhairi/ottoweb/internal/domain"
	"github.com/hammamikhairi/ottoweb/internal/logger"
)

// Compile-time interface checks.
var (
	_ domain.IntentParser = (*KeywordParser)(nil)
	_ domain.IntentParser = (*VoiceParser)(nil)
)

// VoiceParser maps recognized speech to intents. Transcripts are noisy and
// rarely exact, so it matches keywords anywhere in the utterance, checked
// in a fixed order: next, back, repeat, finish.
type VoiceParser struct {
	log *logger.Logger
}

// NewVoiceParser creates a voice transcript parser.
func NewVoiceParser(log *logger.Logger) *VoiceParser {
	return &VoiceParser{log: log}
}

// Parse converts a transcript into an intent. For "finish" the payload is
// the transcript with the first "finish" removed.
func (p *VoiceParser) Parse(transcript string) domain.Intent {
	lower := strings.ToLower(transcript)
	var intent domain.Intent
	switch {
	case strings.Contains(lower, "next"):
		intent.Type = domain.IntentAdvance
	case strings.Contains(lower, "back"):
		intent.Type = domain.IntentRetreat
	case strings.Contains(lower, "repeat"):
		intent.Type = domain.IntentRepeat
	case strings.Contains(lower, "finish"):
		intent.Type = domain.IntentFinishTimer
		intent.Payload = strings.TrimSpace(strings.Replace(lower, "finish", "", 1))
	default:
		intent.Payload = strings.TrimSpace(transcript)
	}
	p.log.Debug("voice %q -> %s", transcript, intent.Type)
	return intent
}

// KeywordParser matches typed commands to intents using anchored patterns.
type KeywordParser struct {
	log      *logger.Logger
	patterns []patternRule
}

type patternRule struct {
	regex  *regexp.Regexp
	intent domain.IntentType
}

// NewKeywordParser creates a keyword-based parser for typed commands.
func NewKeywordParser(log *logger.Logger) *KeywordParser {
	p := &KeywordParser{log: log}
	p.patterns = []patternRule{
		{regexp.MustCompile(`(?i)^(start|go|begin|cook)$`), domain.IntentStart},
		{regexp.MustCompile(`(?i)^(next|n|done|finish step)$`), domain.IntentAdvance},
		{regexp.MustCompile(`(?i)^(back|b|prev|previous)$`), domain.IntentRetreat},
		{regexp.MustCompile(`(?i)^(repeat|r|again)$`), domain.IntentRepeat},
		{regexp.MustCompile(`(?i)^(check all|uncheck all|all)$`), domain.IntentToggleAll},
		{regexp.MustCompile(`(?i)^(timers|t)$`), domain.IntentTimers},
		{regexp.MustCompile(`(?i)^(help|h|\?)$`), domain.IntentHelp},
		{regexp.MustCompile(`(?i)^(quit|exit|q)$`), domain.IntentQuit},
	}
	return p
}

var (
	finishPattern = regexp.MustCompile(`(?i)^(finish|stop|dismiss)\s+(.+)$`)
	checkPattern  = regexp.MustCompile(`(?i)^(check|toggle|c)\s+(\d+)$`)
)

// Parse converts typed input into an intent.
func (p *KeywordParser) Parse(input string) domain.Intent {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return domain.Intent{Type: domain.IntentUnknown}
	}

	for _, rule := range p.patterns {
		if rule.regex.MatchString(trimmed) {
			p.log.Debug("matched intent: %s", rule.intent)
			return domain.Intent{Type: rule.intent}
		}
	}

	if m := checkPattern.FindStringSubmatch(trimmed); m != nil {
		return domain.Intent{Type: domain.IntentToggleIngredient, Payload: m[2]}
	}
	if isDigits(trimmed) {
		return domain.Intent{Type: domain.IntentToggleIngredient, Payload: trimmed}
	}
	if m := finishPattern.FindStringSubmatch(trimmed); m != nil {
		return domain.Intent{Type: domain.IntentFinishTimer, Payload: strings.TrimSpace(m[2])}
	}

	p.log.Debug("no match for %q", trimmed)
	return domain.Intent{Type: domain.IntentUnknown, Payload: trimmed}
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}
