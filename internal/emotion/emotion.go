// Package emotion assigns an emotion label and intensity to free text.
package emotion

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

const Neutral = "neutral"

type Analysis struct {
	Emotion   string  `json:"emotion"`
	Intensity float64 `json:"intensity"`
}

type Classifier interface {
	ClassifyEmotion(text string) Analysis
}

// Lexicon scores text by counting words associated with each emotion.
// The emotion with the most hits wins, ties going to the alphabetically first
// label. Text without any hit is neutral with zero intensity.
type Lexicon struct {
	words map[string]string
}

func NewLexicon(entries map[string][]string) *Lexicon {
	words := make(map[string]string)
	for label, list := range entries {
		for _, word := range list {
			words[cases.Fold().String(word)] = label
		}
	}
	return &Lexicon{words: words}
}

func DefaultLexicon() *Lexicon {
	return NewLexicon(map[string][]string{
		"calm":      {"calm", "peace", "peaceful", "relaxed", "centered", "meditation", "quiet", "serene", "breathe"},
		"happy":     {"happy", "grateful", "joy", "excited", "love", "wonderful", "celebrate", "fun", "beautiful"},
		"anxious":   {"anxious", "worried", "nervous", "overwhelmed", "deadline", "afraid", "uneasy"},
		"stressed":  {"stressed", "stress", "struggling", "pressure", "tired", "frustrated", "stuck", "block"},
		"motivated": {"motivated", "ready", "goal", "goals", "determined", "learn", "learning", "build"},
		"focused":   {"focused", "focus", "concentrate", "solved", "productive", "clarity", "deep"},
		"creative":  {"creative", "idea", "ideas", "design", "write", "draft", "imagine"},
		"energized": {"energized", "energy", "hiking", "adventure", "active", "workout"},
	})
}

func (l *Lexicon) ClassifyEmotion(text string) Analysis {
	hits := make(map[string]int)
	for _, token := range tokenize(text) {
		if label, ok := l.words[token]; ok {
			hits[label]++
		}
	}
	if len(hits) == 0 {
		return Analysis{Emotion: Neutral}
	}

	labels := make([]string, 0, len(hits))
	for label := range hits {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	best := labels[0]
	for _, label := range labels[1:] {
		if hits[label] > hits[best] {
			best = label
		}
	}

	return Analysis{Emotion: best, Intensity: intensity(hits[best])}
}

// intensity grows by 0.1 per matching word from a 0.3 floor, capped at 1.
func intensity(hits int) float64 {
	value := math.Min(1, 0.3+0.1*float64(hits))
	return math.Round(value*100) / 100
}

func tokenize(text string) []string {
	folded := cases.Fold().String(text)
	return strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
}

// CountWords counts whitespace-separated words.
func CountWords(text string) int {
	return len(strings.Fields(text))
}
