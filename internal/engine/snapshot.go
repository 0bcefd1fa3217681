package engine

import "github.com/hammamikhairi/ottoweb/internal/domain"

// Ingredient is one checklist row.
type Ingredient struct {
	Text    string
	Checked bool
}

// Snapshot is an immutable copy of session state for rendering.
type Snapshot struct {
	SessionID   string
	Title       string
	URL         string
	State       domain.SessionState
	StepIndex   int
	StepCount   int
	StepText    string
	Ingredients []Ingredient
	Timers      []domain.Timer
}

// Loaded reports whether the snapshot carries a session.
func (s Snapshot) Loaded() bool { return s.SessionID != "" }

// AllChecked reports whether every ingredient is checked.
func (s Snapshot) AllChecked() bool {
	for _, ing := range s.Ingredients {
		if !ing.Checked {
			return false
		}
	}
	return len(s.Ingredients) > 0
}

// Snapshot copies the current session state.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		SessionID:   s.ID,
		Title:       s.recipe.Title,
		URL:         s.recipe.SourceURL,
		State:       s.state,
		StepIndex:   s.step,
		StepCount:   s.recipe.StepCount(),
		StepText:    s.recipe.Step(s.step),
		Ingredients: make([]Ingredient, len(s.recipe.Ingredients)),
		Timers:      s.timers.ListActive(),
	}
	for i, text := range s.recipe.Ingredients {
		snap.Ingredients[i] = Ingredient{Text: text, Checked: s.checked[i]}
	}
	return snap
}
