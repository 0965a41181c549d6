package validation

import (
	"unicode"

	"github.com/go-playground/validator/v10"

	"interview-coach-backend/internal/domain"
)

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("personality", Personality)
	_ = v.RegisterValidation("no_emoji", NoEmoji)
	_ = v.RegisterValidation("not_blank", NotBlank)
}

// Personality accepts the canonical feedback modes and their aliases.
func Personality(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	return domain.IsValidPersonality(val)
}

// NoEmoji validates that a string does not contain emoji characters
func NoEmoji(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		if r > 0x1F000 {
			return false
		}
		if unicode.In(r, unicode.So, unicode.Sk) {
			return false
		}
	}
	return true
}

// NotBlank rejects strings made only of whitespace.
func NotBlank(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		if !unicode.IsSpace(r) {
			return true
		}
	}
	return false
}
