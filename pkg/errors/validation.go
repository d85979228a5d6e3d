package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// MaxTaskIDLength bounds task identifiers accepted from clients.
const MaxTaskIDLength = 128

// ValidateTaskID validates a task identifier supplied by a client.
// It rejects identifiers that could be used for path or key injection:
//   - No empty IDs
//   - No control characters or whitespace
//   - No path separators
//   - Maximum length of 128 characters
func ValidateTaskID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidTask, "task id cannot be empty")
	}
	if len(id) > MaxTaskIDLength {
		return New(ErrCodeInvalidTask, "task id too long (max %d characters)", MaxTaskIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidTask, "task id contains invalid characters")
		}
	}
	if strings.ContainsAny(id, "/\\") {
		return New(ErrCodeInvalidTask, "task id cannot contain path separators")
	}
	return nil
}

// attributeNameRegex matches attribute names usable as JSON keys and column aliases.
var attributeNameRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// ValidateAttributeName validates a task attribute name used as a grouping key.
func ValidateAttributeName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidConfiguration, "attribute name cannot be empty")
	}
	if len(name) > 64 {
		return New(ErrCodeInvalidConfiguration, "attribute name too long (max 64 characters)")
	}
	if !attributeNameRegex.MatchString(name) {
		return New(ErrCodeInvalidConfiguration, "invalid attribute name: %q", name)
	}
	return nil
}

// ValidateYearRange validates a timeline window given as inclusive years.
func ValidateYearRange(startYear, endYear int) error {
	if startYear < 1 || endYear > 9999 {
		return New(ErrCodeInvalidConfiguration, "timeline years must be within 1..9999 (got %d..%d)", startYear, endYear)
	}
	if startYear > endYear {
		return New(ErrCodeInvalidConfiguration, "timeline start year %d is after end year %d", startYear, endYear)
	}
	return nil
}

// ValidatePath validates a report file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
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
