// Package anki provides a client for the AnkiConnect HTTP API. It covers
// the four actions the enrichment pipeline needs: finding the cards of a
// deck, reading their fields, storing media files, and writing updated
// field values back to a note.
package anki
