package search

import (
	"math"
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/pders01/wkpd/internal/article"
)

const (
	headingWeight = 3.0
	textWeight    = 1.0
	snippetLength = 160
)

// Engine scores sections term by term without building an index.
type Engine struct {
	mu       sync.RWMutex
	sections []article.Section
}

func NewEngine() *Engine {
	return &Engine{}
}

func (e *Engine) Index(d *article.Display) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if d == nil {
		e.sections = nil
		return nil
	}
	e.sections = append([]article.Section(nil), d.Sections...)
	return nil
}

// Search ranks sections by relevance, highest first.
func (e *Engine) Search(query string, limit int) ([]*Hit, error) {
	if utf8.RuneCountInString(strings.TrimSpace(query)) < 2 {
		return []*Hit{}, nil
	}

	terms := tokenize(query)
	if len(terms) == 0 {
		return []*Hit{}, nil
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	hits := make([]*Hit, 0)
	for _, s := range e.sections {
		score := scoreField(s.Heading, terms, headingWeight) + scoreField(s.Text, terms, textWeight)
		if score <= 0 {
			continue
		}
		hits = append(hits, &Hit{
			Section: s.Index,
			Heading: s.Heading,
			Snippet: findBestSnippet(s.Text, terms, snippetLength),
			Score:   score,
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (e *Engine) DocCount() (int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.sections), nil
}

// scoreField calculates relevance score for a field
func scoreField(text string, terms []string, weight float64) float64 {
	words := tokenize(text)
	if len(words) == 0 {
		return 0
	}

	lower := strings.ToLower(text)

	var score float64
	matchedTerms := 0

	for _, term := range terms {
		// Exact phrase match (highest score)
		if strings.Contains(lower, term) {
			score += 2.0
			matchedTerms++
		}

		for _, word := range words {
			switch {
			case word == term:
				score += 1.5
				matchedTerms++
			case strings.HasPrefix(word, term) || strings.HasSuffix(word, term):
				score += 1.0
				matchedTerms++
			case strings.Contains(word, term):
				score += 0.5
				matchedTerms++
			}
		}
	}

	if len(terms) > 1 && matchedTerms > 1 {
		score *= 1.0 + float64(matchedTerms)/float64(len(terms))
	}

	tf := float64(matchedTerms) / float64(len(words))
	score *= 1.0 + math.Log(1.0+tf)

	return score * weight
}

// findBestSnippet finds the window of text containing the most terms.
func findBestSnippet(text string, terms []string, maxLength int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	windowSize := maxLength / 8 // Approximate words in snippet
	if windowSize < 1 {
		windowSize = 1
	}
	if windowSize >= len(words) {
		return truncate(strings.Join(words, " "), maxLength)
	}

	bestScore := 0.0
	bestStart := 0
	for i := 0; i <= len(words)-windowSize; i++ {
		window := strings.ToLower(strings.Join(words[i:i+windowSize], " "))
		score := 0.0
		for _, term := range terms {
			if strings.Contains(window, term) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			bestStart = i
		}
	}

	return truncate(strings.Join(words[bestStart:bestStart+windowSize], " "), maxLength)
}

// tokenize breaks text into lower-case terms, skipping single characters.
func tokenize(text string) []string {
	var terms []string
	current := strings.Builder{}

	flush := func() {
		if utf8.RuneCountInString(current.String()) > 1 {
			terms = append(terms, current.String())
		}
		current.Reset()
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r) {
			current.WriteRune(unicode.ToLower(r))
		} else if current.Len() > 0 {
			flush()
		}
	}
	flush()

	return terms
}

// truncate limits text length with ellipsis
func truncate(text string, maxLen int) string {
	r := []rune(text)
	if len(r) <= maxLen {
		return text
	}
	if maxLen <= 1 {
		return "…"
	}
	return string(r[:maxLen-1]) + "…"
}
