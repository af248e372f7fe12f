package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Default word and domain lists consulted by the heuristic rules
var (
	DefaultReputableDomains = []string{
		"nytimes.com", "bbc.com", "reuters.com", "apnews.com",
		"wsj.com", "theguardian.com", "npr.org", "indiatoday.in",
	}

	DefaultSuspiciousDomains = []string{
		"infowars.com", "breitbart.com", "dailycaller.com", "naturalnews.com",
		"worldnewsdailyreport.com", "thegatewaypundit.com",
	}

	DefaultSensationalWords = []string{
		"shocking", "bombshell", "unbelievable", "secret", "exposed",
		"miracle", "cover-up", "hoax", "scandal",
	}

	DefaultVaguePhrases = []string{
		"sources say", "experts believe", "it is reported",
	}

	DefaultTypos = []string{
		"teh", "wierd", "definately",
	}

	DefaultEmotionalWords = []string{
		"outrageous", "disgusting", "shameful", "corrupt", "liar", "idiot", "hates",
	}
)

// Lexicon groups the lists the heuristic rules match against
type Lexicon struct {
	ReputableDomains  []string `yaml:"reputable_domains" mapstructure:"reputable_domains"`
	SuspiciousDomains []string `yaml:"suspicious_domains" mapstructure:"suspicious_domains"`
	SensationalWords  []string `yaml:"sensational_words" mapstructure:"sensational_words"`
	VaguePhrases      []string `yaml:"vague_phrases" mapstructure:"vague_phrases"`
	Typos             []string `yaml:"typos" mapstructure:"typos"`
	EmotionalWords    []string `yaml:"emotional_words" mapstructure:"emotional_words"`
}

// DefaultLexicon returns a copy of the built-in lists
func DefaultLexicon() Lexicon {
	return Lexicon{
		ReputableDomains:  clone(DefaultReputableDomains),
		SuspiciousDomains: clone(DefaultSuspiciousDomains),
		SensationalWords:  clone(DefaultSensationalWords),
		VaguePhrases:      clone(DefaultVaguePhrases),
		Typos:             clone(DefaultTypos),
		EmotionalWords:    clone(DefaultEmotionalWords),
	}
}

// Fingerprint identifies the lexicon contents; results computed with
// different lexicons must not share cache entries
func (l Lexicon) Fingerprint() string {
	h := sha256.New()
	for _, list := range [][]string{
		l.ReputableDomains, l.SuspiciousDomains, l.SensationalWords,
		l.VaguePhrases, l.Typos, l.EmotionalWords,
	} {
		h.Write([]byte(strings.Join(list, "\x1f")))
		h.Write([]byte{0x1e})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

func clone(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
