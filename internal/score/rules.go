package score

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/fnd/internal/model"
)

// Article is the scorer input with derived views computed once
type Article struct {
	Source        string
	Text          string
	Headline      string
	lowerText     string
	lowerHeadline string
}

// NewArticle prepares an article for rule evaluation.
// The headline is the first line of the text, trimmed.
func NewArticle(source, text string) Article {
	headline := text
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		headline = text[:idx]
	}
	headline = strings.TrimSpace(headline)

	return Article{
		Source:        source,
		Text:          text,
		Headline:      headline,
		lowerText:     strings.ToLower(text),
		lowerHeadline: strings.ToLower(headline),
	}
}

// Evaluation is what a single rule contributes
type Evaluation struct {
	Outcome   model.Outcome
	Delta     int
	Display   string // Overrides the formatted delta when set (e.g. "N/A")
	Reasoning string
}

// Rule is one named heuristic check
type Rule struct {
	Name  string
	Check func(a Article) Evaluation
}

var (
	linkPattern  = regexp.MustCompile(`https?://[^\s]+`)
	capsPattern  = regexp.MustCompile(`\b[A-Z]{4,}\b`)
	bangsPattern = regexp.MustCompile(`!{2,}`)
	datePattern  = regexp.MustCompile(`(?i)\b(January|February|March|April|May|June|July|August|September|October|November|December)\s\d{1,2},?\s\d{4}\b`)
)

// Thresholds for the writing style rule
const (
	maxCapsTokens     = 3
	maxExclamationRun = 1
	allCapsMinLength  = 20
)

// sourceCredibility checks the source against the domain lists
func (s *Scorer) sourceCredibility(a Article) Evaluation {
	switch s.sources.Classify(a.Source) {
	case model.SourcePastedText:
		return Evaluation{
			Outcome:   model.OutcomeUnknown,
			Display:   "N/A",
			Reasoning: "Cannot assess source credibility for pasted text.",
		}
	case model.SourceReputable:
		return Evaluation{
			Outcome:   model.OutcomePassed,
			Delta:     10,
			Reasoning: "Source domain '" + a.Source + "' is on the list of reputable news outlets.",
		}
	case model.SourceSuspicious:
		return Evaluation{
			Outcome:   model.OutcomeFailed,
			Delta:     -20,
			Reasoning: "Source domain '" + a.Source + "' is on a list of outlets known for potential bias or misinformation.",
		}
	default:
		return Evaluation{
			Outcome:   model.OutcomeUnknown,
			Reasoning: "Source domain '" + a.Source + "' is not on our predefined lists. Its credibility is unverified but not penalized.",
		}
	}
}

// headlineStyle flags clickbait headlines
func (s *Scorer) headlineStyle(a Article) Evaluation {
	sensational := containsAny(a.lowerHeadline, s.lexicon.SensationalWords) ||
		(strings.ToUpper(a.Headline) == a.Headline && utf8.RuneCountInString(a.Headline) > allCapsMinLength) ||
		strings.Contains(a.Headline, "!")

	if sensational {
		return Evaluation{
			Outcome:   model.OutcomeFailed,
			Delta:     -15,
			Reasoning: "Headline uses sensational language, excessive capitalization, or exclamation points, which are common clickbait tactics.",
		}
	}
	return Evaluation{
		Outcome:   model.OutcomePassed,
		Delta:     10,
		Reasoning: "Headline appears to be neutral and informative.",
	}
}

// citationQuality prefers links and penalizes vague attribution.
// Vague attribution wins over links.
func (s *Scorer) citationQuality(a Article) Evaluation {
	if s.vague != nil && s.vague.MatchString(a.Text) {
		return Evaluation{
			Outcome:   model.OutcomeFailed,
			Delta:     -15,
			Reasoning: `The article relies on vague or anonymous sources (e.g., "sources say"), which weakens its credibility.`,
		}
	}
	if linkPattern.MatchString(a.Text) {
		return Evaluation{
			Outcome:   model.OutcomePassed,
			Delta:     10,
			Reasoning: "The article contains links, suggesting verifiable sources may be cited.",
		}
	}
	return Evaluation{
		Outcome:   model.OutcomeUnknown,
		Reasoning: "No clear citations (links or vague phrases) were detected.",
	}
}

// writingStyle looks for signs of missing editorial review
func (s *Scorer) writingStyle(a Article) Evaluation {
	typos := 0
	if s.typos != nil {
		typos = len(s.typos.FindAllStringIndex(a.Text, -1))
	}
	excessiveCaps := len(capsPattern.FindAllStringIndex(a.Text, -1)) > maxCapsTokens
	excessivePunctuation := len(bangsPattern.FindAllStringIndex(a.Text, -1)) > maxExclamationRun

	if typos > 0 || excessiveCaps || excessivePunctuation {
		return Evaluation{
			Outcome:   model.OutcomeFailed,
			Delta:     -10,
			Reasoning: "The text contains common typos, excessive capitalization, or punctuation, suggesting a lack of professional editing.",
		}
	}
	return Evaluation{
		Outcome:   model.OutcomePassed,
		Delta:     5,
		Reasoning: "The writing style appears professional and adheres to standard grammatical conventions.",
	}
}

// dateContext checks for a "Month D, YYYY" date
func (s *Scorer) dateContext(a Article) Evaluation {
	if datePattern.MatchString(a.Text) {
		return Evaluation{
			Outcome:   model.OutcomePassed,
			Delta:     5,
			Reasoning: "A specific publication date was found, providing temporal context.",
		}
	}
	return Evaluation{
		Outcome:   model.OutcomeFailed,
		Delta:     -5,
		Reasoning: "The article lacks a clear publication date, which can be a tactic to make old news seem current.",
	}
}

// emotionalLanguage flags inflammatory vocabulary anywhere in the text
func (s *Scorer) emotionalLanguage(a Article) Evaluation {
	if containsAny(a.lowerText, s.lexicon.EmotionalWords) {
		return Evaluation{
			Outcome:   model.OutcomeFailed,
			Delta:     -10,
			Reasoning: "The article uses emotionally charged or inflammatory language, common in propaganda, not objective reporting.",
		}
	}
	return Evaluation{
		Outcome:   model.OutcomePassed,
		Delta:     5,
		Reasoning: "The article maintains a generally neutral tone.",
	}
}

// containsAny reports whether lower contains any of the words, compared lowercase
func containsAny(lower string, words []string) bool {
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" && strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// alternation compiles a case-insensitive pattern matching any literal phrase.
// Returns nil when there is nothing to match.
func alternation(phrases []string, wholeWord bool) *regexp.Regexp {
	quoted := make([]string, 0, len(phrases))
	for _, p := range phrases {
		p = strings.TrimSpace(p)
		if p != "" {
			quoted = append(quoted, regexp.QuoteMeta(p))
		}
	}
	if len(quoted) == 0 {
		return nil
	}

	expr := "(?i)(?:" + strings.Join(quoted, "|") + ")"
	if wholeWord {
		expr = `(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`
	}
	return regexp.MustCompile(expr)
}
