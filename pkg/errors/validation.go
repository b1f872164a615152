package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// nameRegex matches chart and counter names: they appear in URLs, file
// names and cache keys.
var nameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// ValidateName validates a chart or counter name.
//
// Validation rules:
//   - Name cannot be empty
//   - Maximum length of 64 characters
//   - Lowercase letters, digits, '-' and '_' only, starting with a letter or digit
func ValidateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "name cannot be empty")
	}
	if len(name) > 64 {
		return New(ErrCodeInvalidName, "name too long (max 64 characters)")
	}
	if !nameRegex.MatchString(name) {
		return New(ErrCodeInvalidName, "invalid name %q (use lowercase letters, digits, '-' and '_')", name)
	}
	return nil
}

// ValidateOutputPath validates a file path that output will be written to.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}
	return nil
}

// ValidateLabel validates display text taken from a dataset.
func ValidateLabel(label string) error {
	if strings.TrimSpace(label) == "" {
		return New(ErrCodeInvalidInput, "label cannot be blank")
	}
	for _, r := range label {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "label %q contains control characters", label)
		}
	}
	return nil
}
