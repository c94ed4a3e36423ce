package facematch

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// RemoveDiacritics removes diacritical marks from a string (e.g., "Jiří" -> "Jiri").
func RemoveDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// NormalizeLabel lowercases a free-text label and strips diacritics and punctuation
// at the edges (e.g., " Óval. " -> "oval").
func NormalizeLabel(s string) string {
	s = RemoveDiacritics(s)
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.TrimFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

var shapeAliases = map[string]Shape{
	"oval":        ShapeOval,
	"round":       ShapeRound,
	"circle":      ShapeRound,
	"circular":    ShapeRound,
	"square":      ShapeSquare,
	"rectangle":   ShapeSquare,
	"rectangular": ShapeSquare,
	"oblong":      ShapeOblong,
	"long":        ShapeOblong,
	"heart":       ShapeHeart,
	"triangle":    ShapeHeart,
	"diamond":     ShapeDiamond,
}

// ParseShape maps a free-text label (as returned by a language model) to a Shape.
// Only the first word is considered, so "Heart-shaped face" parses as Heart.
func ParseShape(s string) (Shape, bool) {
	label := NormalizeLabel(s)
	if label == "" {
		return "", false
	}
	if shape, ok := shapeAliases[label]; ok {
		return shape, true
	}
	first := strings.FieldsFunc(label, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	if len(first) == 0 {
		return "", false
	}
	shape, ok := shapeAliases[first[0]]
	return shape, ok
}
