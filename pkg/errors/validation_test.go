package errors

import (
	"strings"
	"testing"
)

func TestValidateTaskID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"numeric", "42", false},
		{"uuid", "0b7d2c9e-8f3e-4c36-9c5e-1a2b3c4d5e6f", false},
		{"dashed", "task-1", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 200), true},
		{"space", "task 1", true},
		{"slash", "a/b", true},
		{"backslash", "a\\b", true},
		{"null byte", "a\x00b", true},
		{"newline", "a\nb", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTaskID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTaskID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidTask) {
				t.Errorf("ValidateTaskID(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidTask)
			}
		})
	}
}

func TestValidateAttributeName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"camel case", "productType", false},
		{"with digit", "vdd1", false},
		{"snake case", "stack_method", false},

		{"empty", "", true},
		{"leading digit", "1st", true},
		{"dash", "product-type", true},
		{"dot", "a.b", true},
		{"too long", strings.Repeat("a", 65), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAttributeName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAttributeName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateYearRange(t *testing.T) {
	tests := []struct {
		name       string
		start, end int
		wantErr    bool
	}{
		{"single year", 2022, 2022, false},
		{"default window", 2022, 2026, false},
		{"inverted", 2026, 2022, true},
		{"zero year", 0, 2022, true},
		{"five digit year", 2022, 10000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateYearRange(tt.start, tt.end)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateYearRange(%d, %d) error = %v, wantErr %v", tt.start, tt.end, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidConfiguration) {
				t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidConfiguration)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "reports/q1.json", false},
		{"absolute", "/tmp/report.yaml", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 501), true},
		{"null byte", "report\x00.json", true},
		{"control char", "report\x01.json", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
