// Package synth turns words into speech for cards whose word has no
// recorded pronunciation. Providers write mp3 audio to a caller-chosen
// file.
package synth

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/joeyxworks/anki-flashcard-builder/internal/download"
)

// Provider defines the interface for text-to-speech providers.
type Provider interface {
	// GenerateAudio synthesizes speech for text and saves it to outputFile.
	GenerateAudio(ctx context.Context, text string, outputFile string) error

	// Name returns the provider name.
	Name() string

	// IsAvailable checks if the provider is properly configured.
	IsAvailable() error
}

// Config holds configuration for speech providers.
type Config struct {
	Provider string // "vocalware" or "openai"

	// VocalWare credentials
	APIID        string
	AccountID    string
	SecretPhrase string

	// OpenAI-specific settings
	OpenAIKey   string
	OpenAIModel string // "tts-1", "tts-1-hd", or "gpt-4o-mini-tts"
	OpenAIVoice string
	OpenAISpeed float64 // 0.25 to 4.0
}

// NewProvider creates the speech provider named by config.
func NewProvider(config *Config, fetcher *download.Fetcher, logger *zap.Logger) (Provider, error) {
	switch config.Provider {
	case "vocalware":
		p := NewVocalWareProvider(config, fetcher, logger)
		if err := p.IsAvailable(); err != nil {
			return nil, err
		}
		return p, nil

	case "openai":
		return NewOpenAIProvider(config, logger)

	default:
		return nil, fmt.Errorf("unknown speech provider: %s", config.Provider)
	}
}
