// Package router selects skill entries for a free-text task description.
// Matching is keyword overlap between the query and each entry's name,
// declared keywords, and description; ties are broken by the entry's
// declared priority. A query that matches nothing returns an empty result,
// never an error.
package router

import (
	"sort"
	"strings"
	"unicode"

	"github.com/skillworks/skillctl/pkg/skill"
)

// Token weights by where the match lands.
const (
	nameWeight        = 3
	keywordWeight     = 2
	descriptionWeight = 1
)

// stopwords are query tokens too common to carry signal
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "be": true,
	"for": true, "how": true, "i": true, "in": true, "is": true,
	"it": true, "my": true, "of": true, "on": true, "or": true,
	"the": true, "this": true, "to": true, "too": true, "use": true,
	"when": true, "with": true,
}

// Result is a matched skill with its relevance score
type Result struct {
	Skill *skill.Skill
	Score int
}

// Match returns the skills whose descriptions best match the query, ordered
// by score, then declared priority, then name for a stable order.
func Match(skills map[string]*skill.Skill, query string) []Result {
	queryTokens := Tokenize(query)
	if len(queryTokens) == 0 {
		return nil
	}

	var results []Result
	for _, s := range skills {
		if score := scoreSkill(s, queryTokens); score > 0 {
			results = append(results, Result{Skill: s, Score: score})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		pi, pj := results[i].Skill.Priority(), results[j].Skill.Priority()
		if pi != pj {
			return pi < pj
		}
		return results[i].Skill.Name < results[j].Skill.Name
	})

	return results
}

// scoreSkill sums the weights of every query token found in the skill's
// name, keywords, or description
func scoreSkill(s *skill.Skill, queryTokens []string) int {
	nameTokens := tokenSet(Tokenize(strings.ReplaceAll(s.Name, "-", " ")))
	descTokens := tokenSet(Tokenize(s.Description))

	keywordTokens := make(map[string]bool)
	for _, kw := range s.Keywords() {
		for _, tok := range Tokenize(kw) {
			keywordTokens[tok] = true
		}
	}

	score := 0
	for _, tok := range queryTokens {
		switch {
		case nameTokens[tok]:
			score += nameWeight
		case keywordTokens[tok]:
			score += keywordWeight
		case descTokens[tok]:
			score += descriptionWeight
		}
	}
	return score
}

// Tokenize lowercases text, splits it on non-alphanumeric runes, drops
// stopwords, and singularizes plural forms so that "reruns" matches
// "rerun".
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var tokens []string
	for _, f := range fields {
		// Stopwords are checked before plural folding so that "this" is
		// dropped rather than surviving as "thi".
		if stopwords[f] {
			continue
		}
		f = normalize(f)
		if f == "" || stopwords[f] {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// normalize strips a trailing plural "s" from longer tokens. Crude, but
// enough for keyword overlap; no full stemmer is warranted here.
func normalize(token string) string {
	if len(token) > 3 && strings.HasSuffix(token, "s") && !strings.HasSuffix(token, "ss") {
		return token[:len(token)-1]
	}
	return token
}

func tokenSet(tokens []string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		set[tok] = true
	}
	return set
}
