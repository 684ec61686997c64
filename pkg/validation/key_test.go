package validation

import (
	"strings"
	"testing"
)

func TestValidateStateKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		// Valid keys
		{"camel case", "userName", false},
		{"single char", "a", false},
		{"with digits", "step2", false},
		{"namespaced", "demo:calc.last-result_v1", false},
		{"max length", strings.Repeat("k", MaxStateKeyLength), false},

		// Invalid keys
		{"empty", "", true},
		{"too long", strings.Repeat("k", MaxStateKeyLength+1), true},
		{"space", "user name", true},
		{"newline injection", "userName\nlevel=ERROR", true},
		{"slash", "a/b", true},
		{"quote", `user"Name`, true},
		{"unicode", "naïve", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStateKey(tt.key)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStateKey(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			}
		})
	}
}
