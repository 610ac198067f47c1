package utils

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// ConfidenceFloor is the lowest confidence assigned to an edit-distance
// match. Low-confidence mappings stay visible for review instead of being
// discarded.
const ConfidenceFloor = 0.5

// StringSimilarity returns the normalized Levenshtein similarity of two
// strings in [0, 1]: identical strings score 1, completely different
// strings of equal length score 0. Pure function, no normalization of case
// or whitespace is applied here.
func StringSimilarity(a, b string) float64 {
	if a == b {
		return 1.0
	}

	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 1.0
	}

	distance := levenshtein.ComputeDistance(a, b)
	similarity := float64(maxLen-distance) / float64(maxLen)
	if similarity < 0 {
		return 0
	}
	return similarity
}

// MappingConfidence scores how well an external concept name matches a local
// drug name: exact case-insensitive match scores 1.0, substring containment
// in either direction scores 0.9, anything else scores its edit-distance
// similarity floored at ConfidenceFloor.
func MappingConfidence(drugName, conceptName string) float64 {
	name1 := strings.ToLower(strings.TrimSpace(drugName))
	name2 := strings.ToLower(strings.TrimSpace(conceptName))

	if name1 == name2 {
		return 1.0
	}
	if strings.Contains(name1, name2) || strings.Contains(name2, name1) {
		return 0.9
	}

	similarity := StringSimilarity(name1, name2)
	if similarity < ConfidenceFloor {
		return ConfidenceFloor
	}
	if similarity > 1.0 {
		return 1.0
	}
	return similarity
}
