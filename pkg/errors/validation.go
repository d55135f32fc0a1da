package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// classPrefixRegex matches CSS class name prefixes that are safe to emit.
// A prefix must start with a letter and may contain letters, digits,
// hyphens, and underscores.
var classPrefixRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// ValidateClassPrefix validates a CSS class prefix used for icon rules.
// The generated stylesheet emits one ".<prefix>-<name>" rule per icon, so
// the prefix must be a valid CSS identifier fragment.
func ValidateClassPrefix(prefix string) error {
	if prefix == "" {
		return New(ErrCodeInvalidPrefix, "class prefix cannot be empty")
	}

	if len(prefix) > 64 {
		return New(ErrCodeInvalidPrefix, "class prefix too long (max 64 characters)")
	}

	if !classPrefixRegex.MatchString(prefix) {
		return New(ErrCodeInvalidPrefix, "invalid class prefix: %q", prefix)
	}

	return nil
}

// ValidateScale validates a resolution multiplier for sheet composition.
// A scale of 1 is the base sheet; 2 and 3 are the common retina factors.
func ValidateScale(scale int) error {
	if scale < 1 {
		return New(ErrCodeInvalidScale, "scale must be at least 1, got %d", scale)
	}
	if scale > 8 {
		return New(ErrCodeInvalidScale, "scale too large (max 8), got %d", scale)
	}
	return nil
}

// ValidatePath validates a file path for safety.
// It prevents path traversal and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	// Check for null bytes and control characters
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	// Check for path traversal
	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	return nil
}
