package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/joeyxworks/anki-flashcard-builder/internal/anki"
	"github.com/joeyxworks/anki-flashcard-builder/internal/cache"
	"github.com/joeyxworks/anki-flashcard-builder/internal/cli"
	"github.com/joeyxworks/anki-flashcard-builder/internal/config"
	"github.com/joeyxworks/anki-flashcard-builder/internal/dictionary"
	"github.com/joeyxworks/anki-flashcard-builder/internal/download"
	"github.com/joeyxworks/anki-flashcard-builder/internal/processor"
	"github.com/joeyxworks/anki-flashcard-builder/internal/synth"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	// Set the run function
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd.Context())
	}

	// A signal cancels the context; the current card finishes failing fast
	// and the run stops.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Execute command
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func runCommand(ctx context.Context) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fetcher, err := download.NewFetcher(logger)
	if err != nil {
		return err
	}
	defer fetcher.Close()

	provider, err := synth.NewProvider(&synth.Config{
		Provider:     cfg.Synth.Provider,
		APIID:        cfg.VocalWare.APIID,
		AccountID:    cfg.VocalWare.AccountID,
		SecretPhrase: cfg.VocalWare.SecretPhrase,
		OpenAIKey:    cfg.Synth.OpenAIKey,
		OpenAIModel:  cfg.Synth.OpenAIModel,
		OpenAIVoice:  cfg.Synth.OpenAIVoice,
		OpenAISpeed:  cfg.Synth.OpenAISpeed,
	}, fetcher, logger)
	if err != nil {
		return err
	}

	dict := dictionary.NewClient("", logger)

	var lookup processor.Lookuper = dict
	if cfg.Cache.Enabled {
		store, err := cache.Open(cfg.Cache.Path, logger)
		if err != nil {
			return fmt.Errorf("failed to open lookup cache: %w", err)
		}
		defer store.Close()
		lookup = cache.NewCachingLookup(dict, store, logger)
	}

	proc := processor.New(
		anki.NewClient(cfg.AnkiURL, logger),
		lookup,
		provider,
		fetcher,
		processor.Options{
			Deck:        cfg.Deck,
			Language:    cfg.Language,
			CardTimeout: cfg.CardTimeout,
		},
		logger,
	)

	summary, err := proc.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("\nDone! %d cards: %d updated, %d with audio already, %d duplicates, %d failed\n",
		summary.Total, summary.Updated, summary.SkippedHasAudio, summary.SkippedDuplicate, summary.Failed)
	return nil
}
