package score

import (
	"fmt"
	"regexp"

	"github.com/ppiankov/fnd/internal/model"
	"github.com/ppiankov/fnd/internal/validate"
)

// BaseConfidence is the starting value every rule delta is added to
const BaseConfidence = 50

// Scorer runs the heuristic rule pipeline over an article.
// A Scorer holds no mutable state after construction and is safe for
// concurrent use.
type Scorer struct {
	lexicon model.Lexicon
	sources *validate.SourceClassifier
	vague   *regexp.Regexp
	typos   *regexp.Regexp
	rules   []Rule
}

// NewScorer creates a scorer using the built-in lexicon
func NewScorer() *Scorer {
	return NewScorerWithLexicon(model.DefaultLexicon())
}

// NewScorerWithLexicon creates a scorer using custom word and domain lists
func NewScorerWithLexicon(lexicon model.Lexicon) *Scorer {
	s := &Scorer{
		lexicon: lexicon,
		sources: validate.NewSourceClassifier(&lexicon),
		vague:   alternation(lexicon.VaguePhrases, false),
		typos:   alternation(lexicon.Typos, true),
	}

	s.rules = []Rule{
		{Name: model.RuleSourceCredibility, Check: s.sourceCredibility},
		{Name: model.RuleHeadlineStyle, Check: s.headlineStyle},
		{Name: model.RuleCitationQuality, Check: s.citationQuality},
		{Name: model.RuleWritingStyle, Check: s.writingStyle},
		{Name: model.RuleDateContext, Check: s.dateContext},
		{Name: model.RuleEmotionalLanguage, Check: s.emotionalLanguage},
	}

	return s
}

// Lexicon returns the lists this scorer matches against
func (s *Scorer) Lexicon() model.Lexicon {
	return s.lexicon
}

// Analyze scores an article.
// source is a hostname or model.PastedTextSource; text is the article body.
func (s *Scorer) Analyze(source, text string) model.AnalysisResult {
	article := NewArticle(source, text)

	confidence := BaseConfidence
	items := make([]model.AnalysisItem, 0, len(s.rules))

	for _, rule := range s.rules {
		eval := rule.Check(article)
		confidence += eval.Delta

		display := eval.Display
		if display == "" {
			display = FormatDelta(eval.Delta)
		}

		items = append(items, model.AnalysisItem{
			Rule:      rule.Name,
			Passed:    eval.Outcome,
			Score:     display,
			Reasoning: eval.Reasoning,
		})
	}

	final := Clamp(confidence, 0, 100)

	return model.AnalysisResult{
		Source:          source,
		Headline:        article.Headline,
		Analysis:        items,
		FinalConfidence: final,
		Judgment:        model.JudgmentFor(final),
		Level:           model.LevelFor(final),
	}
}

// FormatDelta renders a delta the way reports display it
func FormatDelta(delta int) string {
	switch {
	case delta > 0:
		return fmt.Sprintf("+%d", delta)
	case delta < 0:
		return fmt.Sprintf("%d", delta)
	default:
		return "±0"
	}
}

// Clamp limits v to [lo, hi]
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
