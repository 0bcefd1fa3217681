package extract

import "github.com/PuerkitoBio/goquery"

// semanticIngredients reads microdata ingredient annotations.
func semanticIngredients(doc *goquery.Document) []string {
	return collect(doc.Find(`[itemprop="recipeIngredient"]`))
}

// semanticSteps reads list items under instruction annotations, or the
// annotated elements themselves when they hold no list.
func semanticSteps(doc *goquery.Document) []string {
	if steps := collect(doc.Find(`[itemprop="recipeInstructions"] li`)); len(steps) > 0 {
		return steps
	}
	return collect(doc.Find(`[itemprop="recipeInstructions"]`))
}

func heuristicIngredients(doc *goquery.Document) []string {
	return collect(doc.Find(".ingredient, .ingredients li"))
}

func heuristicSteps(doc *goquery.Document) []string {
	return collect(doc.Find(".instruction, .instructions li"))
}
