package ui

import (
	"strings"
	"testing"
)

func TestStatusHelpers(t *testing.T) {
	DisableColors()
	defer EnableColors()

	tests := []struct {
		name   string
		fn     func(string) string
		symbol string
	}{
		{"success", StatusSuccess, SymbolSuccess},
		{"error", StatusError, SymbolError},
		{"conflict", StatusConflict, SymbolConflict},
		{"skipped", StatusSkipped, SymbolSkipped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.fn("msg")
			if !strings.HasPrefix(got, tt.symbol) {
				t.Errorf("%s = %q, want prefix %q", tt.name, got, tt.symbol)
			}
			if !strings.HasSuffix(got, " msg") {
				t.Errorf("%s = %q, want suffix ' msg'", tt.name, got)
			}
			if bare := tt.fn(""); bare != tt.symbol {
				t.Errorf("%s(\"\") = %q, want %q", tt.name, bare, tt.symbol)
			}
		})
	}
}

func TestColorToggle(t *testing.T) {
	EnableColors()
	if !IsColorEnabled() {
		t.Error("colors should be enabled after EnableColors")
	}
	DisableColors()
	if IsColorEnabled() {
		t.Error("colors should be disabled after DisableColors")
	}
	EnableColors()
}
