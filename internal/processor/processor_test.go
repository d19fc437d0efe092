package processor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/joeyxworks/anki-flashcard-builder/internal/anki"
	"github.com/joeyxworks/anki-flashcard-builder/internal/dictionary"
	"github.com/joeyxworks/anki-flashcard-builder/internal/testutil"
)

func newTestProcessor(t *testing.T, store *testutil.MockCardStore, lookup *testutil.MockLookup, synth *testutil.MockSynthesizer) *Processor {
	t.Helper()

	fetcher := &testutil.MockFetcher{Dir: t.TempDir()}
	opts := Options{Deck: "Test", Language: "en"}
	return New(store, lookup, synth, fetcher, opts, zap.NewNop())
}

func TestRunEnrichesCardWithDictionaryAudio(t *testing.T) {
	store := &testutil.MockCardStore{
		Cards: []anki.Card{testutil.Card(1, 101, "emerge", "")},
	}
	lookup := &testutil.MockLookup{
		Entries: map[string]*dictionary.Entry{
			"emerge": {
				AudioURL:   "https://example.com/emerge.mp3",
				Definition: "to appear by coming out of something",
				Examples:   []string{"It emerged.", "She emerged from the sea."},
			},
		},
	}
	synth := &testutil.MockSynthesizer{}
	p := newTestProcessor(t, store, lookup, synth)

	summary, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, 1, summary.Updated)
	assert.Zero(t, summary.Failed)
	assert.Empty(t, synth.Calls, "dictionary audio must not trigger synthesis")

	require.Len(t, store.Updates, 1)
	up := store.Updates[0]
	assert.Equal(t, int64(101), up.NoteID)
	assert.True(t, strings.HasPrefix(up.AudioFile, "cambridge-"), "audio file %q", up.AudioFile)
	assert.Equal(t, "to appear by coming out of something", up.Definition)
	assert.Equal(t, []string{"It emerged.", "She emerged from the sea."}, up.Examples)

	require.Contains(t, store.StoredFiles, up.AudioFile)
	assert.Equal(t, testutil.SampleAudio, store.StoredFiles[up.AudioFile])
}

func TestRunFallsBackToSynthesis(t *testing.T) {
	store := &testutil.MockCardStore{
		Cards: []anki.Card{testutil.Card(1, 101, "zzyzx", "")},
	}
	// Unconfigured words look up to an entry without audio.
	lookup := &testutil.MockLookup{}
	synth := &testutil.MockSynthesizer{}
	p := newTestProcessor(t, store, lookup, synth)

	summary, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, []string{"synthesize zzyzx"}, synth.Calls)

	require.Len(t, store.Updates, 1)
	up := store.Updates[0]
	assert.True(t, strings.HasPrefix(up.AudioFile, "vocalware-"), "audio file %q", up.AudioFile)
	assert.Empty(t, up.Definition, "synthesized cards carry no definition")
	assert.Empty(t, up.Examples)
}

func TestRunSkipsCardsWithAudio(t *testing.T) {
	store := &testutil.MockCardStore{
		Cards: []anki.Card{
			testutil.Card(1, 101, "emerge", "[sound:emerge.mp3]"),
			// A whitespace-only audio field counts as empty.
			testutil.Card(2, 102, "vanish", "   "),
		},
	}
	lookup := &testutil.MockLookup{
		Entries: map[string]*dictionary.Entry{
			"vanish": {AudioURL: "https://example.com/vanish.mp3"},
		},
	}
	p := newTestProcessor(t, store, lookup, &testutil.MockSynthesizer{})

	summary, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.SkippedHasAudio)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, []string{"lookup vanish (en)"}, lookup.Calls)
	require.Len(t, store.Updates, 1)
	assert.Equal(t, int64(102), store.Updates[0].NoteID)
}

func TestRunAllCardsCompleteTouchesNoNetwork(t *testing.T) {
	store := &testutil.MockCardStore{
		Cards: []anki.Card{
			testutil.Card(1, 101, "emerge", "[sound:emerge.mp3]"),
			testutil.Card(2, 102, "vanish", "[sound:vanish.mp3]"),
		},
	}
	lookup := &testutil.MockLookup{}
	synth := &testutil.MockSynthesizer{}
	p := newTestProcessor(t, store, lookup, synth)

	summary, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.SkippedHasAudio)
	assert.Zero(t, summary.Updated)
	assert.Empty(t, lookup.Calls)
	assert.Empty(t, synth.Calls)
	assert.Equal(t, []string{"findCards Test", "cardsInfo 2"}, store.Calls,
		"a complete deck costs only the listing and detail fetch")
}

func TestRunDeduplicatesWordsWithinRun(t *testing.T) {
	store := &testutil.MockCardStore{
		Cards: []anki.Card{
			testutil.Card(1, 101, "emerge", ""),
			testutil.Card(2, 102, "emerge", ""),
		},
	}
	lookup := &testutil.MockLookup{
		Entries: map[string]*dictionary.Entry{
			"emerge": {AudioURL: "https://example.com/emerge.mp3", Definition: "to appear"},
		},
	}
	p := newTestProcessor(t, store, lookup, &testutil.MockSynthesizer{})

	summary, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 1, summary.SkippedDuplicate)
	assert.Len(t, lookup.Calls, 1, "the word must only be looked up once")
	assert.Len(t, store.Updates, 1)
}

func TestRunSynthesizesWhenDictionaryUnreachable(t *testing.T) {
	store := &testutil.MockCardStore{
		Cards: []anki.Card{testutil.Card(1, 101, "emerge", "")},
	}
	lookup := &testutil.MockLookup{
		Errors: map[string]error{
			"emerge": errors.New("dictionary unreachable"),
		},
	}
	synth := &testutil.MockSynthesizer{}
	p := newTestProcessor(t, store, lookup, synth)

	summary, err := p.Run(context.Background())
	require.NoError(t, err)

	// A failed scrape routes the word to the fallback, not to a failure.
	assert.Equal(t, 1, summary.Updated)
	assert.Zero(t, summary.Failed)
	assert.Equal(t, []string{"synthesize emerge"}, synth.Calls)

	require.Len(t, store.Updates, 1)
	assert.Empty(t, store.Updates[0].Definition)
	assert.Empty(t, store.Updates[0].Examples)
}

func TestRunContinuesWhenBothAudioSourcesFail(t *testing.T) {
	store := &testutil.MockCardStore{
		Cards: []anki.Card{
			testutil.Card(1, 101, "broken", ""),
			testutil.Card(2, 102, "emerge", ""),
		},
	}
	lookup := &testutil.MockLookup{
		Entries: map[string]*dictionary.Entry{
			"emerge": {AudioURL: "https://example.com/emerge.mp3"},
		},
		Errors: map[string]error{
			"broken": errors.New("dictionary unreachable"),
		},
	}
	synth := &testutil.MockSynthesizer{Err: errors.New("tts rejected the request")}
	p := newTestProcessor(t, store, lookup, synth)

	summary, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Updated)
	require.Len(t, store.Updates, 1)
	assert.Equal(t, int64(102), store.Updates[0].NoteID)
}

func TestRunRetriesWordAfterFailedUpdate(t *testing.T) {
	store := &testutil.MockCardStore{
		Cards: []anki.Card{
			testutil.Card(1, 101, "emerge", ""),
			testutil.Card(2, 102, "emerge", ""),
		},
		UpdateErr: errors.New("note update rejected"),
	}
	lookup := &testutil.MockLookup{
		Entries: map[string]*dictionary.Entry{
			"emerge": {AudioURL: "https://example.com/emerge.mp3"},
		},
	}
	p := newTestProcessor(t, store, lookup, &testutil.MockSynthesizer{})

	summary, err := p.Run(context.Background())
	require.NoError(t, err)

	// The word never lands in the processed set, so the second card is a
	// fresh attempt rather than a duplicate skip.
	assert.Equal(t, 2, summary.Failed)
	assert.Zero(t, summary.SkippedDuplicate)
	assert.Len(t, lookup.Calls, 2)
}

func TestRunCountsUploadFailure(t *testing.T) {
	store := &testutil.MockCardStore{
		Cards:    []anki.Card{testutil.Card(1, 101, "emerge", "")},
		StoreErr: errors.New("media upload rejected"),
	}
	lookup := &testutil.MockLookup{
		Entries: map[string]*dictionary.Entry{
			"emerge": {AudioURL: "https://example.com/emerge.mp3"},
		},
	}
	p := newTestProcessor(t, store, lookup, &testutil.MockSynthesizer{})

	summary, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Failed)
	assert.Empty(t, store.Updates)
}

func TestRunUsesServerReportedMediaName(t *testing.T) {
	store := &testutil.MockCardStore{
		Cards:      []anki.Card{testutil.Card(1, 101, "emerge", "")},
		StoredName: "renamed-by-server.mp3",
	}
	lookup := &testutil.MockLookup{
		Entries: map[string]*dictionary.Entry{
			"emerge": {AudioURL: "https://example.com/emerge.mp3"},
		},
	}
	p := newTestProcessor(t, store, lookup, &testutil.MockSynthesizer{})

	_, err := p.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, store.Updates, 1)
	assert.Equal(t, "renamed-by-server.mp3", store.Updates[0].AudioFile)
}

func TestRunTreatsUnreachableStoreAsEmptyDeck(t *testing.T) {
	lookup := &testutil.MockLookup{}

	for name, store := range map[string]*testutil.MockCardStore{
		"listing fails": {FindErr: errors.New("anki not running")},
		"details fail": {
			Cards:   []anki.Card{testutil.Card(1, 101, "emerge", "")},
			InfoErr: errors.New("anki not running"),
		},
	} {
		t.Run(name, func(t *testing.T) {
			p := newTestProcessor(t, store, lookup, &testutil.MockSynthesizer{})

			summary, err := p.Run(context.Background())
			require.NoError(t, err, "an unreachable store means no cards, not a crash")
			assert.Equal(t, &Summary{}, summary)
			assert.Empty(t, lookup.Calls)
			assert.Empty(t, store.Updates)
		})
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	store := &testutil.MockCardStore{
		Cards: []anki.Card{
			testutil.Card(1, 101, "emerge", ""),
			testutil.Card(2, 102, "vanish", ""),
		},
	}
	p := newTestProcessor(t, store, &testutil.MockLookup{}, &testutil.MockSynthesizer{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := p.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, summary.Updated)
	assert.Empty(t, store.Updates)
}

func TestRunEmptyDeck(t *testing.T) {
	store := &testutil.MockCardStore{}
	p := newTestProcessor(t, store, &testutil.MockLookup{}, &testutil.MockSynthesizer{})

	summary, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &Summary{}, summary)
}

func TestNewDefaultsCardTimeout(t *testing.T) {
	p := New(&testutil.MockCardStore{}, &testutil.MockLookup{}, &testutil.MockSynthesizer{}, &testutil.MockFetcher{}, Options{}, zap.NewNop())
	assert.Equal(t, defaultCardTimeout, p.opts.CardTimeout)
}
