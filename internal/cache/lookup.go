package cache

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/joeyxworks/anki-flashcard-builder/internal/dictionary"
)

// Lookuper is the dictionary lookup the cache wraps.
type Lookuper interface {
	Lookup(ctx context.Context, word, language string) (*dictionary.Entry, error)
}

// CachingLookup serves lookups from a Store and falls through to the
// wrapped lookup on a miss. Cache failures are logged and ignored: a
// broken cache degrades to plain lookups, it never fails a word.
type CachingLookup struct {
	next   Lookuper
	store  *Store
	logger *zap.Logger
}

// NewCachingLookup wraps next with the given store.
func NewCachingLookup(next Lookuper, store *Store, logger *zap.Logger) *CachingLookup {
	return &CachingLookup{
		next:   next,
		store:  store,
		logger: logger,
	}
}

// Lookup returns the cached entry for word when present, otherwise asks
// the wrapped lookup and caches its answer. Failed lookups and entries
// without an audio URL are never cached, so an empty scrape is retried
// on the next run.
func (c *CachingLookup) Lookup(ctx context.Context, word, language string) (*dictionary.Entry, error) {
	entry, err := c.store.Get(ctx, word, language)
	if err == nil {
		c.logger.Debug("lookup served from cache",
			zap.String("word", word),
			zap.String("language", language))
		return entry, nil
	}
	if !errors.Is(err, ErrMiss) {
		c.logger.Warn("cache read failed",
			zap.String("word", word),
			zap.Error(err))
	}

	entry, err = c.next.Lookup(ctx, word, language)
	if err != nil {
		return nil, err
	}

	if entry.AudioURL != "" {
		if err := c.store.Put(ctx, word, language, entry); err != nil {
			c.logger.Warn("cache write failed",
				zap.String("word", word),
				zap.Error(err))
		}
	}
	return entry, nil
}
