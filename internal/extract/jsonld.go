package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// MalformedBlockError reports a structured-data block that is not valid
// JSON. It never leaves the package: the block is skipped.
type MalformedBlockError struct {
	Index int
	Err   error
}

func (e *MalformedBlockError) Error() string {
	return fmt.Sprintf("structured data block %d: %v", e.Index, e.Err)
}

func (e *MalformedBlockError) Unwrap() error { return e.Err }

// structuredData scans every ld+json block and returns the fields of the
// first object typed as a recipe.
func (p *Pipeline) structuredData(doc *goquery.Document) (fields, bool) {
	var (
		found fields
		ok    bool
	)
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(i int, s *goquery.Selection) bool {
		objects, err := decodeBlock(i, s.Text())
		if err != nil {
			p.log.Debug("skipping block: %v", err)
			return true
		}
		for _, obj := range objects {
			if !isRecipe(obj) {
				continue
			}
			found, ok = recipeFields(obj), true
			return false
		}
		return true
	})
	return found, ok
}

// decodeBlock parses a block into its candidate objects. Arrays and
// @graph containers are flattened.
func decodeBlock(index int, raw string) ([]map[string]any, error) {
	var v any
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &v); err != nil {
		return nil, &MalformedBlockError{Index: index, Err: err}
	}
	return flatten(v), nil
}

func flatten(v any) []map[string]any {
	switch x := v.(type) {
	case map[string]any:
		out := []map[string]any{x}
		if graph, ok := x["@graph"]; ok {
			out = append(out, flatten(graph)...)
		}
		return out
	case []any:
		var out []map[string]any
		for _, item := range x {
			out = append(out, flatten(item)...)
		}
		return out
	default:
		return nil
	}
}

// isRecipe reports whether the object's declared type mentions "recipe".
func isRecipe(obj map[string]any) bool {
	t, ok := obj["@type"]
	if !ok || t == nil {
		return false
	}
	return strings.Contains(strings.ToLower(typeString(t)), "recipe")
}

func typeString(t any) string {
	if list, ok := t.([]any); ok {
		parts := make([]string, 0, len(list))
		for _, item := range list {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, ",")
	}
	return fmt.Sprint(t)
}

func recipeFields(obj map[string]any) fields {
	var f fields
	if name, ok := obj["name"].(string); ok {
		f.title = cleanText(name)
	}
	if ing, ok := obj["recipeIngredient"]; ok && ing != nil {
		f.ingredients = scalarList(ing)
	}
	if instr, ok := obj["recipeInstructions"]; ok && instr != nil {
		f.steps = instructionSteps(instr)
	}
	return f
}

// scalarList coerces a value to a list of strings, wrapping scalars.
func scalarList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		items = []any{v}
	}
	var out []string
	for _, item := range items {
		if item == nil {
			continue
		}
		var s string
		switch x := item.(type) {
		case string:
			s = x
		case map[string]any, []any:
			continue
		default:
			s = fmt.Sprint(x)
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// instructionSteps handles the shapes recipeInstructions takes in the wild:
// a single string, a list of strings, HowToStep objects, and HowToSection
// objects nesting further steps.
func instructionSteps(v any) []string {
	switch x := v.(type) {
	case string:
		return splitSentences(x)
	case []any:
		var out []string
		for _, entry := range x {
			out = append(out, instructionEntry(entry)...)
		}
		return out
	case map[string]any:
		return instructionEntry(x)
	default:
		return nil
	}
}

func instructionEntry(entry any) []string {
	switch e := entry.(type) {
	case string:
		if s := strings.TrimSpace(e); s != "" {
			return []string{s}
		}
	case map[string]any:
		if text, ok := e["text"].(string); ok && strings.TrimSpace(text) != "" {
			return []string{strings.TrimSpace(text)}
		}
		if nested, ok := e["itemListElement"]; ok && nested != nil {
			return instructionSteps(nested)
		}
		if name, ok := e["name"].(string); ok && strings.TrimSpace(name) != "" {
			return []string{strings.TrimSpace(name)}
		}
	}
	return nil
}

var sentenceBreak = regexp.MustCompile(`[.!?\n]+`)

// splitSentences splits a single instruction string into steps.
func splitSentences(s string) []string {
	var out []string
	for _, part := range sentenceBreak.Split(s, -1) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
