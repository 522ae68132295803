package errors

import (
	"math"
	"path/filepath"
	"strings"
	"unicode"
)

// Year bounds accepted by the year-range gate.
const (
	MinYear = 1970
	MaxYear = 2023
)

// ValidateYear checks that year lies within [MinYear, MaxYear].
func ValidateYear(year int) error {
	if year < MinYear || year > MaxYear {
		return New(ErrCodeInvalidYear, "%d년부터 %d년 사이의 연도를 입력해주세요 (got %d)", MinYear, MaxYear, year)
	}
	return nil
}

// ValidateRate checks that a rate is a finite, non-negative number.
func ValidateRate(rate float64) error {
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate < 0 {
		return New(ErrCodeInvalidInput, "rate must be a finite non-negative number (got %v)", rate)
	}
	return nil
}

// ValidateOutputDir validates a directory that artifacts are written to.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..) after cleaning
func ValidateOutputDir(dir string) error {
	if dir == "" {
		return New(ErrCodeInvalidPath, "output directory cannot be empty")
	}

	const maxPathLength = 500
	if len(dir) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range dir {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	for _, part := range strings.Split(filepath.ToSlash(filepath.Clean(dir)), "/") {
		if part == ".." && !filepath.IsAbs(dir) {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	return nil
}
