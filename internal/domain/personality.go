package domain

import (
	"fmt"
	"strings"
)

// PersonalityMode selects the tone of generated feedback. It never changes a score.
type PersonalityMode string

const (
	PersonalitySupportive PersonalityMode = "supportive"
	PersonalityDirect     PersonalityMode = "direct"
)

// personalityAliases maps every name the clients have used for the two tones.
var personalityAliases = map[string]PersonalityMode{
	"supportive":  PersonalitySupportive,
	"confidence":  PersonalitySupportive,
	"direct":      PersonalityDirect,
	"ruthless":    PersonalityDirect,
	"performance": PersonalityDirect,
}

// ParsePersonality resolves a client-supplied mode. An empty value defaults to supportive.
func ParsePersonality(s string) (PersonalityMode, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return PersonalitySupportive, nil
	}
	if mode, ok := personalityAliases[key]; ok {
		return mode, nil
	}
	return "", fmt.Errorf("unknown personality mode %q", s)
}

// IsValidPersonality reports whether s names a known mode or alias.
func IsValidPersonality(s string) bool {
	_, err := ParsePersonality(s)
	return err == nil
}
