package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitSentences(t *testing.T) {
	got := splitSentences("The pool opens at eight. Towels are at the front desk! Enjoy your stay?")
	assert.Equal(t, []string{
		"The pool opens at eight",
		"Towels are at the front desk",
		"Enjoy your stay",
	}, got)
}

func TestSplitSentencesDropsShortFragments(t *testing.T) {
	got := splitSentences("Yes. No. The restaurant serves dinner until ten.")
	assert.Equal(t, []string{"The restaurant serves dinner until ten"}, got)
}

func TestSplitSentencesStripsLinksAndURLs(t *testing.T) {
	got := splitSentences("See [our site](https://example.com) for details about parking availability. Also https://example.com/faq has more information about amenities.")
	assert.Len(t, got, 2)
	for _, s := range got {
		assert.NotContains(t, s, "http")
		assert.NotContains(t, s, "](")
	}
}

func TestSplitSentencesEmpty(t *testing.T) {
	assert.Empty(t, splitSentences(""))
	assert.Empty(t, splitSentences("short. ok."))
}

func TestFactualSentencesFiltersOpinions(t *testing.T) {
	got := factualSentences("I think the view is wonderful from here. The gym is on the second floor. It seems quiet at night. Maybe you would enjoy the terrace too.")
	assert.Equal(t, []string{"The gym is on the second floor"}, got)
}

func TestFactualSentencesCaseInsensitiveMarkers(t *testing.T) {
	got := factualSentences("PROBABLY the best hotel in town overall. The lobby has free coffee all day.")
	assert.Equal(t, []string{"The lobby has free coffee all day"}, got)
}
