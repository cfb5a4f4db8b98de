package errors

import (
	"strings"
	"testing"
)

func TestValidateNodeID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"Simple", "api-gateway", false},
		{"Empty", "", false},
		{"Unicode", "datenbank-ü", false},
		{"Control", "bad\nid", true},
		{"Null", "a\x00b", true},
		{"TooLong", strings.Repeat("x", MaxNodeIDLength+1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNodeID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNodeID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("code = %q, want INVALID_INPUT", GetCode(err))
			}
		})
	}
}
