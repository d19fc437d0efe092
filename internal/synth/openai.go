package synth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIProvider implements Provider for the OpenAI TTS API. It exists for
// accounts without VocalWare credentials; the default pipeline uses
// VocalWare.
type OpenAIProvider struct {
	client *openai.Client
	config *Config
	logger *zap.Logger
}

// NewOpenAIProvider creates a new OpenAI TTS provider.
func NewOpenAIProvider(config *Config, logger *zap.Logger) (*OpenAIProvider, error) {
	if config.OpenAIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	return &OpenAIProvider{
		client: openai.NewClient(config.OpenAIKey),
		config: config,
		logger: logger,
	}, nil
}

// GenerateAudio generates speech for text using OpenAI TTS and writes the
// mp3 stream to outputFile.
func (p *OpenAIProvider) GenerateAudio(ctx context.Context, text, outputFile string) error {
	p.logger.Debug("requesting speech synthesis",
		zap.String("model", p.config.OpenAIModel),
		zap.String("voice", p.config.OpenAIVoice),
		zap.String("text", text))

	req := openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(p.config.OpenAIModel),
		Input:          text,
		Voice:          openai.SpeechVoice(p.config.OpenAIVoice),
		Speed:          p.config.OpenAISpeed,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	}

	response, err := p.client.CreateSpeech(ctx, req)
	if err != nil {
		return fmt.Errorf("OpenAI TTS API error: %w", err)
	}
	defer response.Close()

	out, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	written, err := io.Copy(out, response)
	if err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	if written == 0 {
		return errors.New("no audio data received from OpenAI")
	}

	return nil
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable checks if the OpenAI API key is configured.
func (p *OpenAIProvider) IsAvailable() error {
	if p.config.OpenAIKey == "" {
		return errors.New("OpenAI API key not configured")
	}
	return nil
}
