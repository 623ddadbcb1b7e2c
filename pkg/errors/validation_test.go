package errors

import (
	"strings"
	"testing"
)

func TestValidateTag(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "ocean", false},
		{"with dash", "new-york", false},
		{"unicode", "café", false},
		{"digits", "2024", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", MaxTagLength+1), true},
		{"space", "deep sea", true},
		{"tab", "deep\tsea", true},
		{"newline", "sea\n", true},
		{"null byte", "sea\x00", true},
		{"comma", "sky,sea", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTag(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTag(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidTag) {
				t.Errorf("ValidateTag(%q) code = %v", tt.input, GetCode(err))
			}
		})
	}
}

func TestValidateRunID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"uuid", "2f1c9f0e-6a55-4b0e-9a4a-0d6c8f2f1e11", false},
		{"empty", "", true},
		{"garbage", "not-a-run", true},
		{"path", "../../etc/passwd", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRunID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRunID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
