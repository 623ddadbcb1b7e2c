package errors

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// MaxTagLength bounds a search tag.
const MaxTagLength = 128

// ValidateTag checks a root tag before it is sent to the photo service.
// The service treats commas as tag separators, so a tag may not contain
// one; whitespace and control characters are rejected as well.
func ValidateTag(tag string) error {
	if tag == "" {
		return New(ErrCodeInvalidTag, "tag cannot be empty")
	}
	if len(tag) > MaxTagLength {
		return New(ErrCodeInvalidTag, "tag too long (max %d characters)", MaxTagLength)
	}
	for _, r := range tag {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidTag, "tag %q contains whitespace or control characters", tag)
		}
	}
	if strings.Contains(tag, ",") {
		return New(ErrCodeInvalidTag, "tag %q contains a comma", tag)
	}
	return nil
}

// ValidateRunID checks that id is a run identifier.
func ValidateRunID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "run id cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return New(ErrCodeInvalidInput, "invalid run id %q", id)
	}
	return nil
}
