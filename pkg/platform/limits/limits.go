// Package limits holds the size and length bounds enforced at the gateway edge.
package limits

import (
	"fmt"
	"unicode/utf8"

	dErrors "onecore/pkg/domain-errors"
)

// HTTP body limits
const (
	// MaxBodySize caps JSON request bodies (64 KiB). Uploads have their own
	// limit from UPLOAD_MAX_BYTES.
	MaxBodySize = 64 * 1024
)

// Search term limits
const (
	// MinSearchTermLength is the shortest free-text search accepted.
	MinSearchTermLength = 3

	// MaxSearchTermLength is the longest free-text search forwarded upstream.
	MaxSearchTermLength = 100
)

// CheckStringLength fails when value has more than max characters.
func CheckStringLength(fieldName, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("%s exceeds max length of %d", fieldName, max))
	}
	return nil
}

// CheckMinLength fails when value has fewer than min characters.
func CheckMinLength(fieldName, value string, min int) error {
	if utf8.RuneCountInString(value) < min {
		return dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("%s must be at least %d characters", fieldName, min))
	}
	return nil
}

// CheckSearchTerm applies both search term bounds.
func CheckSearchTerm(fieldName, value string) error {
	if err := CheckMinLength(fieldName, value, MinSearchTermLength); err != nil {
		return err
	}
	return CheckStringLength(fieldName, value, MaxSearchTermLength)
}
