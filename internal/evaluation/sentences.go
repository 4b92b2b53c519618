package evaluation

import (
	"regexp"
	"strings"
)

var (
	markdownLinkRe = regexp.MustCompile(`\[.*?\]\(.*?\)`)
	urlRe          = regexp.MustCompile(`http[s]?://\S+`)
	sentenceEndRe  = regexp.MustCompile(`[.!?]+`)
)

// minSentenceLength filters out fragments left over from splitting.
const minSentenceLength = 10

// splitSentences breaks response text into candidate sentences for
// entailment and factuality analysis. Markdown links and bare URLs are
// stripped first; the remainder splits on sentence terminators and
// fragments of minSentenceLength characters or fewer are dropped.
func splitSentences(text string) []string {
	text = markdownLinkRe.ReplaceAllString(text, "")
	text = urlRe.ReplaceAllString(text, "")

	var sentences []string
	for _, part := range sentenceEndRe.Split(text, -1) {
		if s := strings.TrimSpace(part); len(s) > minSentenceLength {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// opinionMarkers flag sentences that express stance rather than fact.
// A sentence containing any marker is excluded from the falsifiable set.
var opinionMarkers = []string{
	"think", "believe", "feel", "seems", "opinion",
	"probably", "perhaps", "maybe",
}

// factualSentences returns the subset of response sentences that make
// falsifiable claims, i.e. those without opinion markers.
func factualSentences(response string) []string {
	var factual []string
	for _, s := range splitSentences(response) {
		folded := foldCaser.String(s)
		opinion := false
		for _, marker := range opinionMarkers {
			if strings.Contains(folded, marker) {
				opinion = true
				break
			}
		}
		if !opinion {
			factual = append(factual, s)
		}
	}
	return factual
}
