// Package domain defines the core types and interfaces for ottoweb.
// All other packages depend on domain; domain depends on nothing.
package domain

// Recipe is the normalized document produced by extraction. It is never
// mutated after construction and may be shared between sessions.
type Recipe struct {
	Title       string   `json:"title"`
	Ingredients []string `json:"ingredients"`
	Steps       []string `json:"steps"`
	SourceURL   string   `json:"url"`
}

// NewRecipe builds a Recipe, refusing documents without ingredients or
// steps. The slices are copied.
func NewRecipe(title string, ingredients, steps []string, sourceURL string) (*Recipe, error) {
	if len(ingredients) == 0 || len(steps) == 0 {
		return nil, ErrExtraction
	}
	return &Recipe{
		Title:       title,
		Ingredients: append([]string(nil), ingredients...),
		Steps:       append([]string(nil), steps...),
		SourceURL:   sourceURL,
	}, nil
}

// StepCount returns the number of steps.
func (r *Recipe) StepCount() int { return len(r.Steps) }

// Step returns the step text at index i, or "" when out of range.
func (r *Recipe) Step(i int) string {
	if i < 0 || i >= len(r.Steps) {
		return ""
	}
	return r.Steps[i]
}
