package errors

import (
	"math"
	"strings"
	"testing"
)

func TestValidateID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "w1", false},
		{"valid uuid", "0f8fad5b-d9cb-469f-a165-70867728950e", false},
		{"valid with spaces", "wire 7", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 300), true},
		{"null byte", "w\x001", true},
		{"newline", "w\n1", true},
		{"control char", "w\x01", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
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
		{"relative", "sheets/main.json", false},
		{"absolute", "/tmp/main.json", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 600), true},
		{"null byte", "main\x00.json", true},
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

func TestValidateNumbers(t *testing.T) {
	tests := []struct {
		name    string
		fn      func(string, float64) error
		input   float64
		wantErr bool
	}{
		{"finite ok", ValidateFinite, -3, false},
		{"finite nan", ValidateFinite, math.NaN(), true},
		{"finite inf", ValidateFinite, math.Inf(1), true},
		{"positive ok", ValidatePositive, 7, false},
		{"positive zero", ValidatePositive, 0, true},
		{"positive negative", ValidatePositive, -1, true},
		{"non-negative zero", ValidateNonNegative, 0, false},
		{"non-negative negative", ValidateNonNegative, -0.5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fn("value", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidConfig) {
				t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidConfig)
			}
		})
	}
}

func TestValidateFormat(t *testing.T) {
	if err := ValidateFormat("TOML", "toml", "yaml"); err != nil {
		t.Errorf("ValidateFormat(TOML) error = %v", err)
	}
	err := ValidateFormat("ini", "toml", "yaml")
	if !Is(err, ErrCodeInvalidFormat) {
		t.Fatalf("ValidateFormat(ini) = %v, want INVALID_FORMAT", err)
	}
	if !strings.Contains(err.Error(), "toml, yaml") {
		t.Errorf("message should list allowed formats: %v", err)
	}
}
