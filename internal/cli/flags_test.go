package cli

import (
	"testing"
)

func TestNewFlags(t *testing.T) {
	flags := NewFlags()

	// Test default values
	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"Deck", flags.Deck, "Test"},
		{"Language", flags.Language, "en"},
		{"AnkiURL", flags.AnkiURL, "http://localhost:8765"},
		{"SynthProvider", flags.SynthProvider, "vocalware"},
		{"CacheEnabled", flags.CacheEnabled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("Expected %s to be %v, got %v", tt.name, tt.expected, tt.got)
			}
		})
	}
}

func TestLanguageValueRejectsUnknownLocale(t *testing.T) {
	var v languageValue

	if err := v.Set("cn"); err != nil {
		t.Fatalf("Set(cn) error = %v", err)
	}
	if v.String() != "cn" {
		t.Errorf("String() = %q, want cn", v.String())
	}

	if err := v.Set("de"); err == nil {
		t.Fatal("Set(de) expected an error")
	}
	if v.String() != "cn" {
		t.Errorf("failed Set must not change the value, got %q", v.String())
	}
}
