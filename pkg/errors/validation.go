package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateItemID validates a catalog item identifier for safety and
// correctness. Item IDs end up in record JSON, DOT node names, and SVG
// tooltips, so the rules are intentionally conservative:
//   - No empty IDs
//   - No control characters
//   - No path traversal sequences (.., //, etc.)
//   - No null bytes
//   - Maximum length of 256 characters
func ValidateItemID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidItem, "item id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidItem, "item id too long (max 256 characters)")
	}

	// Check for control characters and null bytes
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidItem, "item id contains invalid control characters")
		}
	}

	// Check for path traversal patterns
	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidItem, "item id contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// runIDRegex matches valid run identifiers: UUIDs plus plain
// alphanumeric names.
var runIDRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// ValidateRunID validates a stored run identifier.
// Run IDs become file names in the file store, so the same traversal
// rules apply plus a stricter character set.
func ValidateRunID(id string) error {
	if id == "" {
		return New(ErrCodeRunNotFound, "run id cannot be empty")
	}

	if len(id) > 128 {
		return New(ErrCodeRunNotFound, "run id too long (max 128 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeRunNotFound, "run id contains invalid control characters")
		}
	}

	if strings.ContainsAny(id, "/\\") {
		return New(ErrCodeRunNotFound, "run id cannot contain path separators")
	}

	if !runIDRegex.MatchString(id) {
		return New(ErrCodeRunNotFound, "invalid run id: %q", id)
	}

	return nil
}

// ValidateOutputPath validates a user-supplied output path.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeIOFailed, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeIOFailed, "path too long (max %d characters)", maxPathLength)
	}

	// Check for null bytes and control characters
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeIOFailed, "path contains invalid characters")
		}
	}

	return nil
}
