package domain

import "context"

// RecipeStore caches extracted recipes keyed by source URL.
type RecipeStore interface {
	Save(ctx context.Context, recipe *Recipe) error
	Load(ctx context.Context, url string) (*Recipe, error)
	Delete(ctx context.Context, url string) error
	List(ctx context.Context) ([]*Recipe, error)
}

// RecipeLoader turns a URL into a Recipe, fetching and extracting as needed.
type RecipeLoader interface {
	Load(ctx context.Context, url string) (*Recipe, error)
}

// IntentParser converts raw user input into a structured intent.
type IntentParser interface {
	Parse(input string) Intent
}

// Notifier delivers messages to the user. Implementations can write to
// stdout, a terminal UI, or anything else that shows text.
type Notifier interface {
	Notify(ctx context.Context, message string) error
	NotifyUrgent(ctx context.Context, message string) error
}

// VoiceChannel is the audio boundary of a cook session. Speak is
// fire-and-forget. Handlers registered with OnTranscript receive one
// recognized utterance per call. Start begins listening; Stop ends it and
// the channel must not resume on its own afterwards.
type VoiceChannel interface {
	Speak(text string)
	OnTranscript(handler func(transcript string))
	Start()
	Stop()
}
