package service

import (
	"regexp"
	"strings"

	"github.com/unclebandit/aisdr-backend/internal/model"
)

var (
	rolePattern       = regexp.MustCompile(`\b(director|manager|executive|founder)s?\b`)
	departmentPattern = regexp.MustCompile(`\b(product|sales|marketing|engineering|hr)\b`)
	industryPattern   = regexp.MustCompile(`\b(tech\w*|fintech|healthtech|ai|e-?commerce)\b`)
	countryPattern    = regexp.MustCompile(`\b(us|usa|united states|india|uk|canada)\b`)
	additionalPattern = regexp.MustCompile(`\b(funding|recently raised|growth|expanding)\b`)
)

var terminationTokens = map[string]bool{
	"done":     true,
	"continue": true,
	"yes":      true,
}

// IsTerminationToken reports whether a user turn ends slot collection.
func IsTerminationToken(input string) bool {
	return terminationTokens[strings.ToLower(strings.TrimSpace(input))]
}

// ExtractSlots fills each empty slot with input when input matches that
// slot's pattern. Filled slots are never overwritten.
func ExtractSlots(slots model.Slots, input string) model.Slots {
	lower := strings.ToLower(input)

	fill := func(slot *string, pattern *regexp.Regexp) {
		if *slot == "" && pattern.MatchString(lower) {
			*slot = input
		}
	}

	fill(&slots.Role, rolePattern)
	fill(&slots.Department, departmentPattern)
	fill(&slots.Industry, industryPattern)
	fill(&slots.Country, countryPattern)
	fill(&slots.Additional, additionalPattern)
	return slots
}

var quotedPattern = regexp.MustCompile(`"([^"]+)"`)

// ExtractCanonicalPrompt returns the first double-quoted substring of a
// summary, or the whole summary when nothing is quoted.
func ExtractCanonicalPrompt(summary string) string {
	if m := quotedPattern.FindStringSubmatch(summary); m != nil {
		return m[1]
	}
	return strings.TrimSpace(summary)
}
