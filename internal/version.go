package internal

// Version is the current release of anki-flashcard-builder.
var Version = "1.2.0"
