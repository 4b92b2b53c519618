package evaluation

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/ahrav/go-verdict/internal/ports"
)

var _ ports.SeverityClassifier = (*KeywordSeverityClassifier)(nil)

// foldCaser is a package-level Unicode case folder for performance.
// This avoids creating a new caser for each classification.
var foldCaser = cases.Fold()

// DefaultSeverity is the risk weight for claims matching no tier.
const DefaultSeverity = 0.5

// SeverityTier pairs a risk weight with the keywords that select it.
type SeverityTier struct {
	// Name identifies the tier for diagnostics.
	Name string

	// Weight is the risk multiplier applied to matching claims.
	Weight float64

	// Keywords are matched as case-insensitive substrings of the claim.
	Keywords []string
}

// KeywordSeverityClassifier assigns domain-risk weights to hallucinated
// claims by keyword matching. Tiers are checked in priority order and the
// first match wins. Substring matching is a deliberate, known-imprecise
// heuristic ("risk" inside an unrelated word matches); it sits behind
// ports.SeverityClassifier so a stronger classifier can replace it.
type KeywordSeverityClassifier struct {
	tiers []SeverityTier
}

// NewKeywordSeverityClassifier returns a classifier with the default
// tiers: medical/safety 1.0, financial/legal 0.7, logistics/scheduling
// 0.3, everything else DefaultSeverity.
func NewKeywordSeverityClassifier() *KeywordSeverityClassifier {
	return &KeywordSeverityClassifier{
		tiers: []SeverityTier{
			{
				Name:   "medical",
				Weight: 1.0,
				Keywords: []string{
					"medical", "medication", "medicine", "dosage", "dose",
					"doctor", "allergy", "allergic", "symptom", "diagnosis",
					"treatment", "emergency", "injury", "safety", "hazard",
					"poison",
				},
			},
			{
				Name:   "financial",
				Weight: 0.7,
				Keywords: []string{
					"price", "cost", "payment", "fee", "refund", "deposit",
					"invoice", "billing", "contract", "legal", "liability",
					"insurance", "tax", "penalty",
				},
			},
			{
				Name:   "logistics",
				Weight: 0.3,
				Keywords: []string{
					"schedule", "scheduling", "check-in", "check-out",
					"checkin", "checkout", "booking", "reservation",
					"shuttle", "parking", "luggage", "itinerary",
					"arrival", "departure",
				},
			},
		},
	}
}

// NewSeverityClassifierWithTiers returns a classifier using the given
// tiers in the given priority order.
func NewSeverityClassifierWithTiers(tiers []SeverityTier) *KeywordSeverityClassifier {
	return &KeywordSeverityClassifier{tiers: tiers}
}

// Severity returns the risk weight for the claim. The claim is case-folded
// once and each tier's keywords are tested as substrings; the first tier
// with any match wins.
func (c *KeywordSeverityClassifier) Severity(claim string) float64 {
	folded := foldCaser.String(claim)
	for _, tier := range c.tiers {
		for _, kw := range tier.Keywords {
			if strings.Contains(folded, foldCaser.String(kw)) {
				return tier.Weight
			}
		}
	}
	return DefaultSeverity
}
