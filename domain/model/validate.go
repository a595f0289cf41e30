package model

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidSubmission is the only validation failure. Which field failed is never reported.
var ErrInvalidSubmission = errors.New("invalid submission")

// 空白は ASCII に限らず Unicode の空白 (NBSP, 全角スペース, BOM など) も含む
var emailPattern = regexp.MustCompile(`^[^\s\v\p{Z}\x{FEFF}@]+@[^\s\v\p{Z}\x{FEFF}@]+\.[^\s\v\p{Z}\x{FEFF}@]+$`)

var validate *validator.Validate

func init() {
	validate = validator.New()
	if err := validate.RegisterValidation("query_email", func(fl validator.FieldLevel) bool {
		return IsValidEmail(fl.Field().String())
	}); err != nil {
		panic(err)
	}
}

// Trim returns the submission with surrounding whitespace removed from every field.
func (s Submission) Trim() Submission {
	return Submission{
		Name:    strings.TrimSpace(s.Name),
		Email:   strings.TrimSpace(s.Email),
		Device:  strings.TrimSpace(s.Device),
		Message: strings.TrimSpace(s.Message),
	}
}

// Validate trims the submission and checks that every field is present and the
// email is well formed. The client and the API both call this before anything else.
func Validate(s Submission) (Submission, error) {
	trimmed := s.Trim()
	if err := validate.Struct(trimmed); err != nil {
		return Submission{}, ErrInvalidSubmission
	}
	return trimmed, nil
}

// IsValidEmail reports whether email matches the accepted pattern, without trimming.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}
