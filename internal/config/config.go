package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/joeyxworks/anki-flashcard-builder/internal/dictionary"
)

// Defaults for everything that is not a secret.
const (
	DefaultAnkiURL     = "http://localhost:8765"
	DefaultDeck        = "Test"
	DefaultLanguage    = "en"
	DefaultCardTimeout = 60 * time.Second
)

// Config holds all application configuration. It is built once at startup
// and passed explicitly into each component's constructor.
type Config struct {
	AnkiURL     string
	Deck        string
	Language    string
	CardTimeout time.Duration

	VocalWare VocalWare
	Synth     Synth
	Cache     Cache
}

// VocalWare holds the credentials for the speech-synthesis API. The secret
// phrase is only ever used to sign requests, never transmitted.
type VocalWare struct {
	APIID        string
	AccountID    string
	SecretPhrase string
}

// Synth selects and configures the fallback speech-synthesis provider.
type Synth struct {
	Provider    string // "vocalware" or "openai"
	OpenAIKey   string
	OpenAIModel string
	OpenAIVoice string
	OpenAISpeed float64
}

// Cache configures the optional on-disk dictionary lookup cache.
type Cache struct {
	Enabled bool
	Path    string
}

// Load reads configuration from the environment (including an optional .env
// file), any viper config file already initialized by the CLI, and flag
// bindings. With the default vocalware provider the three VocalWare
// secrets are required; a missing one is a startup error.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	viper.SetDefault("anki.url", DefaultAnkiURL)
	viper.SetDefault("anki.deck", DefaultDeck)
	viper.SetDefault("dictionary.language", DefaultLanguage)
	viper.SetDefault("processor.card_timeout", DefaultCardTimeout)
	viper.SetDefault("synth.provider", "vocalware")
	viper.SetDefault("synth.openai_model", "gpt-4o-mini-tts")
	viper.SetDefault("synth.openai_voice", "alloy")
	viper.SetDefault("synth.openai_speed", 1.0)

	// The secrets keep their historical environment names.
	_ = viper.BindEnv("vocalware.api_id", "VW_API_ID")
	_ = viper.BindEnv("vocalware.account_id", "VW_ACCOUNT_ID")
	_ = viper.BindEnv("vocalware.secret_phrase", "VW_SECRET_PHRASE")
	_ = viper.BindEnv("synth.openai_key", "OPENAI_API_KEY")
	_ = viper.BindEnv("anki.url", "ANKI_CONNECT_URL")

	cfg := &Config{
		AnkiURL:     viper.GetString("anki.url"),
		Deck:        viper.GetString("anki.deck"),
		Language:    viper.GetString("dictionary.language"),
		CardTimeout: viper.GetDuration("processor.card_timeout"),
		VocalWare: VocalWare{
			APIID:        viper.GetString("vocalware.api_id"),
			AccountID:    viper.GetString("vocalware.account_id"),
			SecretPhrase: viper.GetString("vocalware.secret_phrase"),
		},
		Synth: Synth{
			Provider:    viper.GetString("synth.provider"),
			OpenAIKey:   viper.GetString("synth.openai_key"),
			OpenAIModel: viper.GetString("synth.openai_model"),
			OpenAIVoice: viper.GetString("synth.openai_voice"),
			OpenAISpeed: viper.GetFloat64("synth.openai_speed"),
		},
		Cache: Cache{
			Enabled: viper.GetBool("cache.enabled"),
			Path:    viper.GetString("cache.path"),
		},
	}

	if cfg.CardTimeout <= 0 {
		cfg.CardTimeout = DefaultCardTimeout
	}

	if cfg.Cache.Enabled && cfg.Cache.Path == "" {
		cfg.Cache.Path = defaultCachePath()
	}

	if !dictionary.Supported(cfg.Language) {
		return nil, fmt.Errorf("unsupported language %q (supported: %s)",
			cfg.Language, strings.Join(dictionary.Languages(), ", "))
	}

	// The alternative openai provider brings its own key check; only the
	// default provider needs the VocalWare secrets.
	if cfg.Synth.Provider == "vocalware" {
		if cfg.VocalWare.APIID == "" {
			return nil, fmt.Errorf("missing VocalWare credentials: VW_API_ID is not set")
		}
		if cfg.VocalWare.AccountID == "" {
			return nil, fmt.Errorf("missing VocalWare credentials: VW_ACCOUNT_ID is not set")
		}
		if cfg.VocalWare.SecretPhrase == "" {
			return nil, fmt.Errorf("missing VocalWare credentials: VW_SECRET_PHRASE is not set")
		}
	}

	return cfg, nil
}

func defaultCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "lookups.db")
	}
	return filepath.Join(home, ".cache", "anki-flashcard-builder", "lookups.db")
}
