package testutil

import (
	"github.com/joeyxworks/anki-flashcard-builder/internal/anki"
)

// SampleAudio is a minimal MP3 frame header, enough to stand in for real
// audio bytes in tests.
var SampleAudio = []byte{0xFF, 0xFB, 0x90, 0x00}

// Card builds a deck card with the fields the pipeline reads.
func Card(cardID, noteID int64, word, audio string) anki.Card {
	return anki.Card{
		CardID: cardID,
		Note:   noteID,
		Fields: map[string]anki.Field{
			anki.FieldWord:  {Value: word, Order: 0},
			anki.FieldAudio: {Value: audio, Order: 1},
		},
	}
}
