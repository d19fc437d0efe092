package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joeyxworks/anki-flashcard-builder/internal"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "anki-flashcard-builder",
		Short: "Fill Anki cards with pronunciation audio and definitions",
		Long: `anki-flashcard-builder walks an Anki deck over AnkiConnect and enriches
every card that has no audio yet.

Each card's word is looked up on Cambridge Dictionary for pronunciation
audio, a definition and example sentences. Words the dictionary has no
recording for are spoken through VocalWare text-to-speech instead. Anki
must be running with the AnkiConnect add-on enabled.

Examples:
  anki-flashcard-builder                     # Enrich the default deck
  anki-flashcard-builder --deck Vocabulary   # Enrich another deck
  anki-flashcard-builder -l cn               # Chinese definitions
  anki-flashcard-builder --cache             # Cache lookups on disk`,
		Args:    cobra.NoArgs,
		Version: internal.Version,
	}

	// Set up flags
	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.anki-flashcard-builder.yaml)")

	// Local flags
	cmd.Flags().StringVarP(&flags.Deck, "deck", "d", flags.Deck, "Anki deck to enrich")
	cmd.Flags().VarP((*languageValue)(&flags.Language), "language", "l", "Dictionary language (en or cn)")
	cmd.Flags().StringVar(&flags.AnkiURL, "anki-url", flags.AnkiURL, "AnkiConnect endpoint")
	cmd.Flags().StringVar(&flags.SynthProvider, "synth-provider", flags.SynthProvider, "Speech synthesis for words without recordings: vocalware or openai")
	cmd.Flags().BoolVar(&flags.CacheEnabled, "cache", false, "Cache dictionary lookups in a local database")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("anki.deck", cmd.Flags().Lookup("deck"))
	viper.BindPFlag("anki.url", cmd.Flags().Lookup("anki-url"))
	viper.BindPFlag("dictionary.language", cmd.Flags().Lookup("language"))
	viper.BindPFlag("synth.provider", cmd.Flags().Lookup("synth-provider"))
	viper.BindPFlag("cache.enabled", cmd.Flags().Lookup("cache"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".anki-flashcard-builder"
		// (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".anki-flashcard-builder")
	}

	// Environment variables
	viper.SetEnvPrefix("ANKI_BUILDER")
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
