// Package matching maps free-text player targets onto structured entity
// ids. The matching is inherently approximate, so the strategy is an
// explicit ordered rule list rather than heuristics inlined at call sites:
// exact id, exact name, substring in either direction, keyword table, and
// finally Jaro-Winkler similarity for near-miss spellings.
package matching

import (
	"strings"

	"github.com/antzucaro/matchr"
)

const defaultSimilarityThreshold = 0.85

// Candidate is one matchable entity.
type Candidate struct {
	ID       string
	Name     string
	Keywords []string
}

// Matcher resolves free-text targets against candidate lists. It is
// read-only after construction and safe for concurrent use.
type Matcher struct {
	similarityThreshold float64
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithSimilarityThreshold sets the minimum Jaro-Winkler score for the fuzzy
// fallback rule. Default: 0.85.
func WithSimilarityThreshold(threshold float64) Option {
	return func(m *Matcher) {
		m.similarityThreshold = threshold
	}
}

// New returns a Matcher with the supplied options applied.
func New(opts ...Option) *Matcher {
	m := &Matcher{similarityThreshold: defaultSimilarityThreshold}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Match resolves target against the candidates, applying each rule in order
// and returning the first hit. The boolean reports whether anything matched.
func (m *Matcher) Match(target string, candidates []Candidate) (string, bool) {
	needle := normalize(target)
	if needle == "" {
		return "", false
	}

	// Rule 1: exact id.
	for _, c := range candidates {
		if normalize(c.ID) == needle {
			return c.ID, true
		}
	}

	// Rule 2: exact name.
	for _, c := range candidates {
		if normalize(c.Name) == needle {
			return c.ID, true
		}
	}

	// Rule 3: substring in either direction, against id and name. Handles
	// the "cofre" vs "cofre_mimico" family of mismatches.
	for _, c := range candidates {
		for _, hay := range []string{normalize(c.ID), normalize(c.Name)} {
			if hay == "" {
				continue
			}
			if strings.Contains(hay, needle) || strings.Contains(needle, hay) {
				return c.ID, true
			}
		}
	}

	// Rule 4: keyword table.
	for _, c := range candidates {
		for _, kw := range c.Keywords {
			if normalize(kw) == needle {
				return c.ID, true
			}
		}
	}

	// Rule 5: Jaro-Winkler similarity for near-miss spellings.
	bestID := ""
	bestScore := 0.0
	for _, c := range candidates {
		for _, hay := range []string{normalize(c.ID), normalize(c.Name)} {
			if hay == "" {
				continue
			}
			if score := matchr.JaroWinkler(needle, hay, false); score > bestScore {
				bestScore = score
				bestID = c.ID
			}
		}
	}
	if bestScore >= m.similarityThreshold {
		return bestID, true
	}

	return "", false
}

func normalize(s string) string {
	lowered := strings.ToLower(strings.TrimSpace(s))
	lowered = strings.ReplaceAll(lowered, "_", " ")
	lowered = strings.ReplaceAll(lowered, "-", " ")
	return strings.Join(strings.Fields(lowered), " ")
}
