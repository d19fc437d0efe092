// Package testutil provides shared mocks and fixtures for exercising the
// enrichment pipeline without a running Anki or network access.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joeyxworks/anki-flashcard-builder/internal/anki"
	"github.com/joeyxworks/anki-flashcard-builder/internal/dictionary"
	"github.com/joeyxworks/anki-flashcard-builder/internal/download"
)

// MockCardStore mocks the card store client
type MockCardStore struct {
	Cards []anki.Card

	FindErr   error
	InfoErr   error
	StoreErr  error
	UpdateErr error

	// StoredName, when set, is reported back as the name media was stored
	// under, standing in for a server-side rename.
	StoredName string

	StoredFiles map[string][]byte
	Updates     []NoteUpdate
	Calls       []string
}

// NoteUpdate records one UpdateNoteFields call
type NoteUpdate struct {
	NoteID     int64
	AudioFile  string
	Definition string
	Examples   []string
}

// FindCards returns the ids of the configured cards
func (m *MockCardStore) FindCards(ctx context.Context, deck string) ([]int64, error) {
	m.Calls = append(m.Calls, fmt.Sprintf("findCards %s", deck))

	if m.FindErr != nil {
		return nil, m.FindErr
	}

	ids := make([]int64, 0, len(m.Cards))
	for _, c := range m.Cards {
		ids = append(ids, c.CardID)
	}
	return ids, nil
}

// CardsInfo returns the configured cards
func (m *MockCardStore) CardsInfo(ctx context.Context, cardIDs []int64) ([]anki.Card, error) {
	m.Calls = append(m.Calls, fmt.Sprintf("cardsInfo %d", len(cardIDs)))

	if m.InfoErr != nil {
		return nil, m.InfoErr
	}
	return m.Cards, nil
}

// StoreMediaFile records the uploaded file
func (m *MockCardStore) StoreMediaFile(ctx context.Context, fileName string, data []byte) (string, error) {
	m.Calls = append(m.Calls, fmt.Sprintf("storeMediaFile %s", fileName))

	if m.StoreErr != nil {
		return "", m.StoreErr
	}

	if m.StoredFiles == nil {
		m.StoredFiles = make(map[string][]byte)
	}
	m.StoredFiles[fileName] = data

	if m.StoredName != "" {
		return m.StoredName, nil
	}
	return fileName, nil
}

// UpdateNoteFields records the note update
func (m *MockCardStore) UpdateNoteFields(ctx context.Context, noteID int64, audioFile, definition string, examples []string) error {
	m.Calls = append(m.Calls, fmt.Sprintf("updateNoteFields %d", noteID))

	if m.UpdateErr != nil {
		return m.UpdateErr
	}

	m.Updates = append(m.Updates, NoteUpdate{
		NoteID:     noteID,
		AudioFile:  audioFile,
		Definition: definition,
		Examples:   examples,
	})
	return nil
}

// MockLookup mocks dictionary lookups
type MockLookup struct {
	Entries map[string]*dictionary.Entry
	Errors  map[string]error
	Calls   []string
}

// Lookup returns the canned entry for word. Unconfigured words behave like
// a page without audio or definition.
func (m *MockLookup) Lookup(ctx context.Context, word, language string) (*dictionary.Entry, error) {
	m.Calls = append(m.Calls, fmt.Sprintf("lookup %s (%s)", word, language))

	if err, ok := m.Errors[word]; ok {
		return nil, err
	}
	if entry, ok := m.Entries[word]; ok {
		return entry, nil
	}

	return &dictionary.Entry{
		Definition: dictionary.NoDefinition,
		Examples:   []string{},
	}, nil
}

// MockSynthesizer mocks speech synthesis by writing canned audio bytes
type MockSynthesizer struct {
	Err   error
	Audio []byte
	Calls []string
}

// GenerateAudio writes the canned audio to outputFile
func (m *MockSynthesizer) GenerateAudio(ctx context.Context, text, outputFile string) error {
	m.Calls = append(m.Calls, fmt.Sprintf("synthesize %s", text))

	if m.Err != nil {
		return m.Err
	}

	data := m.Audio
	if data == nil {
		data = SampleAudio
	}
	return os.WriteFile(outputFile, data, 0644)
}

// Name returns the mocked provider name
func (m *MockSynthesizer) Name() string {
	return "vocalware"
}

// MockFetcher mocks audio downloads by writing canned bytes into Dir
type MockFetcher struct {
	Dir    string
	Errors map[string]error
	Audio  []byte
	Calls  []string
}

// Fetch writes the canned audio to a fresh file under Dir
func (m *MockFetcher) Fetch(ctx context.Context, url, source string) (string, error) {
	m.Calls = append(m.Calls, fmt.Sprintf("fetch %s", url))

	if err, ok := m.Errors[url]; ok {
		return "", err
	}

	path := m.FilePath(source)
	data := m.Audio
	if data == nil {
		data = SampleAudio
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// FilePath allocates a file name under Dir the way the real fetcher does
func (m *MockFetcher) FilePath(source string) string {
	return filepath.Join(m.Dir, download.FileName(source))
}
