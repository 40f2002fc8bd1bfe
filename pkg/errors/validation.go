package errors

import (
	"math"
	"strings"
	"unicode"
)

// ValidateCanvasSize checks that a canvas has finite, strictly positive
// dimensions.
func ValidateCanvasSize(width, height float64) error {
	if !isFinite(width) || !isFinite(height) {
		return New(ErrCodeInvalidCanvasSize, "canvas size must be finite (got %vx%v)", width, height)
	}
	if width <= 0 || height <= 0 {
		return New(ErrCodeInvalidCanvasSize, "canvas width and height must be positive (got %vx%v)", width, height)
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// ValidateCredential validates an access credential before it is placed in
// an Authorization header.
//
// The validation rules are intentionally conservative:
//   - No empty credentials
//   - No whitespace or control characters (header injection)
//   - Maximum length of 2048 characters
func ValidateCredential(token string) error {
	if token == "" {
		return New(ErrCodeUnauthorized, "access credential cannot be empty")
	}
	if len(token) > 2048 {
		return New(ErrCodeUnauthorized, "access credential too long (max 2048 characters)")
	}
	for _, r := range token {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeUnauthorized, "access credential contains invalid characters")
		}
	}
	return nil
}

// ValidateLimit checks a result limit against the upstream page bound.
func ValidateLimit(limit, max int) error {
	if limit < 0 {
		return New(ErrCodeInvalidInput, "limit cannot be negative (got %d)", limit)
	}
	if limit > max {
		return New(ErrCodeInvalidInput, "limit %d exceeds maximum of %d", limit, max)
	}
	return nil
}

// ValidateOutputPath validates an output file path supplied on the command
// line or inside a request.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	for _, part := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
