package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/joeyxworks/anki-flashcard-builder/internal/anki"
	"github.com/joeyxworks/anki-flashcard-builder/internal/dictionary"
)

const defaultCardTimeout = time.Minute

// CardStore is the slice of the card store client the processor needs.
type CardStore interface {
	FindCards(ctx context.Context, deck string) ([]int64, error)
	CardsInfo(ctx context.Context, cardIDs []int64) ([]anki.Card, error)
	StoreMediaFile(ctx context.Context, fileName string, data []byte) (string, error)
	UpdateNoteFields(ctx context.Context, noteID int64, audioFile, definition string, examples []string) error
}

// Lookuper resolves a word to a dictionary entry.
type Lookuper interface {
	Lookup(ctx context.Context, word, language string) (*dictionary.Entry, error)
}

// Synthesizer generates speech for words without recorded pronunciation.
type Synthesizer interface {
	GenerateAudio(ctx context.Context, text string, outputFile string) error
	Name() string
}

// Fetcher downloads audio into the run's scratch space.
type Fetcher interface {
	Fetch(ctx context.Context, url, source string) (string, error)
	FilePath(source string) string
}

// Options configure a processing run.
type Options struct {
	Deck     string
	Language string

	// CardTimeout bounds the network work spent on a single card.
	CardTimeout time.Duration
}

// Summary counts what happened to each card in a run.
type Summary struct {
	Total            int
	Updated          int
	SkippedHasAudio  int
	SkippedDuplicate int
	Failed           int
}

// Processor drives the enrichment pipeline over one deck.
type Processor struct {
	store   CardStore
	lookup  Lookuper
	synth   Synthesizer
	fetcher Fetcher
	opts    Options
	logger  *zap.Logger
}

// New creates a processor for the given components.
func New(store CardStore, lookup Lookuper, synth Synthesizer, fetcher Fetcher, opts Options, logger *zap.Logger) *Processor {
	if opts.CardTimeout <= 0 {
		opts.CardTimeout = defaultCardTimeout
	}
	return &Processor{
		store:   store,
		lookup:  lookup,
		synth:   synth,
		fetcher: fetcher,
		opts:    opts,
		logger:  logger,
	}
}

// Run processes every card in the configured deck once. A failure on one
// card is logged and counted, then the run moves to the next card. An
// unreachable store means there is nothing to process, not a crash; only
// context cancellation stops the run with an error.
func (p *Processor) Run(ctx context.Context) (*Summary, error) {
	cardIDs, err := p.store.FindCards(ctx, p.opts.Deck)
	if err != nil {
		p.logger.Error("failed to list deck, nothing to process",
			zap.String("deck", p.opts.Deck),
			zap.Error(err))
		return &Summary{}, nil
	}

	cards, err := p.store.CardsInfo(ctx, cardIDs)
	if err != nil {
		p.logger.Error("failed to fetch card details, nothing to process",
			zap.String("deck", p.opts.Deck),
			zap.Error(err))
		return &Summary{}, nil
	}

	summary := &Summary{Total: len(cards)}

	// Words already enriched in this run. A word is only added after its
	// note update succeeds, so a failed word is retried when it appears on
	// a later card.
	processed := make(map[string]struct{}, len(cards))

	for _, card := range cards {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		word := card.FieldValue(anki.FieldWord)
		log := p.logger.With(
			zap.String("word", word),
			zap.Int64("card", card.CardID))

		if strings.TrimSpace(card.FieldValue(anki.FieldAudio)) != "" {
			log.Info("skipping card, audio already present")
			summary.SkippedHasAudio++
			continue
		}
		if _, ok := processed[word]; ok {
			log.Info("skipping card, word already handled in this run")
			summary.SkippedDuplicate++
			continue
		}

		if err := p.processCard(ctx, card, word); err != nil {
			log.Error("failed to enrich card", zap.Error(err))
			summary.Failed++
			continue
		}

		processed[word] = struct{}{}
		summary.Updated++
		log.Info("card enriched")
	}

	p.logger.Info("run complete",
		zap.Int("total", summary.Total),
		zap.Int("updated", summary.Updated),
		zap.Int("skipped_has_audio", summary.SkippedHasAudio),
		zap.Int("skipped_duplicate", summary.SkippedDuplicate),
		zap.Int("failed", summary.Failed))

	return summary, nil
}

// processCard enriches a single card: dictionary audio when the word has a
// recorded pronunciation, synthesized speech otherwise.
func (p *Processor) processCard(ctx context.Context, card anki.Card, word string) error {
	ctx, cancel := context.WithTimeout(ctx, p.opts.CardTimeout)
	defer cancel()

	// The dictionary is best effort: a failed scrape means the word gets
	// synthesized speech instead of failing outright.
	entry, err := p.lookup.Lookup(ctx, word, p.opts.Language)
	if err != nil {
		p.logger.Warn("dictionary lookup failed, falling back to synthesis",
			zap.String("word", word),
			zap.Error(err))
		entry = nil
	}

	var (
		audioPath  string
		definition string
		examples   []string
	)

	if entry != nil && entry.AudioURL != "" {
		audioPath, err = p.fetcher.Fetch(ctx, entry.AudioURL, "cambridge")
		if err != nil {
			return err
		}
		definition = entry.Definition
		examples = entry.Examples
	} else {
		// Synthesized audio carries no dictionary entry; the text fields
		// stay empty.
		audioPath = p.fetcher.FilePath(p.synth.Name())
		if err := p.synth.GenerateAudio(ctx, word, audioPath); err != nil {
			return err
		}
	}

	data, err := os.ReadFile(audioPath)
	if err != nil {
		return fmt.Errorf("failed to read audio file: %w", err)
	}

	fileName := filepath.Base(audioPath)
	storedName, err := p.store.StoreMediaFile(ctx, fileName, data)
	if err != nil {
		return err
	}
	if storedName == "" {
		storedName = fileName
	}

	return p.store.UpdateNoteFields(ctx, card.Note, storedName, definition, examples)
}
