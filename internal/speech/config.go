// Package speech carries narration out to the cook and voice commands back
// in. Channel is the session-facing voice boundary; Mouth (Azure TTS plus
// local playback) and Ear (whisper.cpp transcription) are its optional
// halves.
package speech

import "time"

// DefaultVoice is the Azure neural voice used for narration.
const DefaultVoice = "en-US-AvaNeural"

// DefaultAudioFormat is requested from Azure and understood by Player.
const DefaultAudioFormat = "riff-24khz-16bit-mono-pcm"

// Audio parameters matching DefaultAudioFormat.
const (
	SampleRate   = 24000
	ChannelCount = 1
	BitDepth     = 16
)

// Priority orders queued speech. Higher speaks first.
type Priority int

const (
	PriorityNormal Priority = iota // step narration
	PriorityHigh                   // timer expiry
)

// request is a queued utterance.
type request struct {
	text     string
	priority Priority
	queuedAt time.Time
}
