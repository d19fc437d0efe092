package anki

import "fmt"

// Field names of the note type the pipeline fills in.
const (
	FieldWord       = "Word"
	FieldAudio      = "Audio"
	FieldDefinition = "Definition"
	FieldExtra      = "Extra information"
)

// Card is the transient read/modify/write view of one store-owned card,
// as returned by the cardsInfo action.
type Card struct {
	CardID int64            `json:"cardId"`
	Note   int64            `json:"note"`
	Deck   string           `json:"deckName"`
	Fields map[string]Field `json:"fields"`
}

// Field is a single named field value on a card.
type Field struct {
	Value string `json:"value"`
	Order int    `json:"order"`
}

// FieldValue returns the named field's value, or the empty string when the
// card has no such field.
func (c Card) FieldValue(name string) string {
	return c.Fields[name].Value
}

// SoundTag formats a media filename as Anki's embedded playback directive.
func SoundTag(fileName string) string {
	return fmt.Sprintf("[sound:%s]", fileName)
}
