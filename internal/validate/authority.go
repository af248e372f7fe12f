package validate

import (
	"strings"

	"github.com/ppiankov/fnd/internal/model"
)

// SourceClassifier classifies article sources against the reputable and
// suspicious domain lists
type SourceClassifier struct {
	reputable  []string
	suspicious []string
}

// NewSourceClassifier creates a classifier over the lexicon's domain lists
func NewSourceClassifier(lexicon *model.Lexicon) *SourceClassifier {
	if lexicon == nil {
		l := model.DefaultLexicon()
		lexicon = &l
	}

	return &SourceClassifier{
		reputable:  normalizeDomains(lexicon.ReputableDomains),
		suspicious: normalizeDomains(lexicon.SuspiciousDomains),
	}
}

// Classify returns the tier for a source.
// Matching is substring containment, so "www.bbc.com" and "news.bbc.com.evil.io"
// both count as bbc.com. Reputable wins when a source matches both lists.
func (c *SourceClassifier) Classify(source string) model.SourceTier {
	if source == model.PastedTextSource {
		return model.SourcePastedText
	}

	if containsAny(source, c.reputable) {
		return model.SourceReputable
	}

	if containsAny(source, c.suspicious) {
		return model.SourceSuspicious
	}

	return model.SourceUnlisted
}

// containsAny reports whether s contains any non-empty needle
func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// normalizeDomains drops blank entries so an empty string never matches everything
func normalizeDomains(domains []string) []string {
	out := make([]string, 0, len(domains))
	for _, d := range domains {
		d = strings.TrimSpace(d)
		if d != "" {
			out = append(out, d)
		}
	}
	return out
}
