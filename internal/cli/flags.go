package cli

import (
	"fmt"
	"strings"

	"github.com/joeyxworks/anki-flashcard-builder/internal/config"
	"github.com/joeyxworks/anki-flashcard-builder/internal/dictionary"
)

// Flags holds all command-line flag values
type Flags struct {
	CfgFile  string
	Deck     string
	Language string
	AnkiURL  string

	SynthProvider string
	CacheEnabled  bool
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		Deck:          config.DefaultDeck,
		Language:      config.DefaultLanguage,
		AnkiURL:       config.DefaultAnkiURL,
		SynthProvider: "vocalware",
	}
}

// languageValue is a pflag.Value that only accepts supported dictionary
// languages, so a typo fails at flag parsing instead of on every card.
type languageValue string

func (v *languageValue) String() string {
	return string(*v)
}

func (v *languageValue) Set(s string) error {
	if !dictionary.Supported(s) {
		return fmt.Errorf("unsupported language %q (supported: %s)",
			s, strings.Join(dictionary.Languages(), ", "))
	}
	*v = languageValue(s)
	return nil
}

func (v *languageValue) Type() string {
	return "language"
}
