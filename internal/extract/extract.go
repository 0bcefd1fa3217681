// Package extract turns raw recipe page markup into a domain.Recipe.
//
// Each field is resolved through ordered tiers, and the first tier that
// yields a non-empty result wins for that field:
//
//  1. structured data (application/ld+json blocks typed as a Recipe)
//  2. semantic attributes (itemprop="recipeIngredient" / "recipeInstructions")
//  3. heuristics on conventional class names
//
// Extraction is a pure transform over the given markup; it performs no I/O.
package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/hammamikhairi/ottoweb/internal/domain"
	"github.com/hammamikhairi/ottoweb/internal/logger"
)

// Pipeline runs the extraction tiers.
type Pipeline struct {
	log *logger.Logger
}

// New creates an extraction pipeline.
func New(log *logger.Logger) *Pipeline {
	return &Pipeline{log: log}
}

// fields accumulates tier results.
type fields struct {
	title       string
	ingredients []string
	steps       []string
}

// Extract parses markup fetched from sourceURL. It returns
// domain.ErrExtraction when ingredients or steps are still empty after
// every tier.
func (p *Pipeline) Extract(markup, sourceURL string) (*domain.Recipe, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parsing markup: %w", err)
	}

	var f fields
	if block, ok := p.structuredData(doc); ok {
		f = block
		p.log.Debug("structured data: %d ingredients, %d steps", len(f.ingredients), len(f.steps))
	}

	if len(f.ingredients) == 0 {
		f.ingredients = semanticIngredients(doc)
	}
	if len(f.steps) == 0 {
		f.steps = semanticSteps(doc)
	}

	if len(f.ingredients) == 0 {
		f.ingredients = heuristicIngredients(doc)
	}
	if len(f.steps) == 0 {
		f.steps = heuristicSteps(doc)
	}

	if f.title == "" {
		f.title = cleanText(doc.Find("title").First().Text())
	}
	if f.title == "" {
		f.title = sourceURL
	}

	if len(f.ingredients) == 0 || len(f.steps) == 0 {
		p.log.Debug("extraction failed for %s (ingredients=%d, steps=%d)", sourceURL, len(f.ingredients), len(f.steps))
		return nil, domain.ErrExtraction
	}
	return domain.NewRecipe(f.title, f.ingredients, f.steps, sourceURL)
}

// collect returns the cleaned, non-empty text of every selected element in
// document order.
func collect(sel *goquery.Selection) []string {
	var out []string
	sel.Each(func(_ int, s *goquery.Selection) {
		if t := cleanText(s.Text()); t != "" {
			out = append(out, t)
		}
	})
	return out
}

// cleanText trims surrounding whitespace. Line breaks inside the text are
// kept as the page wrote them.
func cleanText(s string) string {
	return strings.TrimSpace(s)
}
