package config

import (
	"fmt"
	"regexp"
	"strings"
)

// Value patterns for the sampling flags. Values are checked as text and kept
// verbatim, so "0.50" stays "0.50" all the way into the request body.
var (
	temperaturePattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)
	topPPattern        = regexp.MustCompile(`^(0(\.[0-9]+)?|1(\.0)?)$`)
	topKPattern        = regexp.MustCompile(`^[0-9]+$`)
)

// ValidationError represents a settings validation error with user guidance
type ValidationError struct {
	Field       string   `json:"field"`
	Value       string   `json:"value,omitempty"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
}

func (e ValidationError) Error() string {
	var result string
	if e.Value != "" {
		result = fmt.Sprintf("invalid value '%s' for %s: %s", e.Value, e.Field, e.Message)
	} else {
		result = fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
	}
	if len(e.Suggestions) > 0 {
		result += "\n  Suggestions:"
		for _, suggestion := range e.Suggestions {
			result += fmt.Sprintf("\n  - %s", suggestion)
		}
	}
	return result
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "No validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	var messages []string
	for _, err := range e {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("Found %d settings errors:\n- %s", len(e), strings.Join(messages, "\n- "))
}

// ValidateTemperature accepts an integer or decimal such as 1, 0.7 or 1.25.
func ValidateTemperature(v string) error {
	if !temperaturePattern.MatchString(v) {
		return ValidationError{
			Field:       "--temperature",
			Value:       v,
			Message:     "must be a number like 0.7 or 1",
			Suggestions: []string{"gemsh --temperature 0.7 -- list open ports"},
		}
	}
	return nil
}

// ValidateTopP accepts 0, 0.<digits>, 1 or 1.0.
func ValidateTopP(v string) error {
	if !topPPattern.MatchString(v) {
		return ValidationError{
			Field:       "--top-p",
			Value:       v,
			Message:     "must be between 0 and 1, written as 0, 0.<digits>, 1 or 1.0",
			Suggestions: []string{"gemsh --top-p 0.95 -- find large files"},
		}
	}
	return nil
}

// ValidateTopK accepts non-negative integers.
func ValidateTopK(v string) error {
	if !topKPattern.MatchString(v) {
		return ValidationError{
			Field:       "--top-k",
			Value:       v,
			Message:     "must be a non-negative integer",
			Suggestions: []string{"gemsh --top-k 40 -- show disk usage"},
		}
	}
	return nil
}

// ValidateModel accepts only identifiers from the static model list.
func ValidateModel(v string) error {
	if !IsValidModel(v) {
		return ValidationError{
			Field:       "--model",
			Value:       v,
			Message:     "unsupported model",
			Suggestions: []string{"Run 'gemsh --list-models' to see supported models", "Use --select-model to pick one interactively"},
		}
	}
	return nil
}

// Validate checks every field of the settings and returns all failures at once.
func (s Settings) Validate() error {
	var errs ValidationErrors
	collect := func(err error) {
		if ve, ok := err.(ValidationError); ok {
			errs = append(errs, ve)
		}
	}
	collect(ValidateModel(s.Model))
	collect(ValidateTemperature(s.Temperature))
	collect(ValidateTopP(s.TopP))
	collect(ValidateTopK(s.TopK))
	if _, ok := ParseMode(string(s.Mode)); !ok {
		errs = append(errs, ValidationError{Field: "--mode", Value: string(s.Mode), Message: "must be shell or elasticsearch"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
