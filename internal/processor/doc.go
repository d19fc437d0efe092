// Package processor contains the core enrichment logic. It walks every
// card of a deck, looks the card's word up in the dictionary, falls back
// to speech synthesis when no recorded pronunciation exists, and publishes
// audio and dictionary text back to the card store. This package serves as
// the main coordinator between all other components.
package processor
