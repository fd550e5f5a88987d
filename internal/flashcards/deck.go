// Package flashcards tracks the interaction state of the flashcard
// deck belonging to one ingest result: which cards are face-up, plus
// the plain-text and CSV export transforms.
package flashcards

import (
	"fmt"
	"strings"
)

// CSVFilename is the fixed name the CSV export is saved under.
const CSVFilename = "rizq-flashcards.csv"

// Card is one question/answer pair in deck order.
type Card struct {
	Front string
	Back  string
}

// Deck is the ordered flashcard list belonging to one ingest result.
type Deck []Card

// State tracks which cards are face-up. It has value semantics: Toggle
// and FlipAll return a new State and never mutate the receiver, so
// multiple view projections can read the same value safely. The zero
// State is an empty deck with nothing flipped.
type State struct {
	deck    Deck
	flipped map[int]struct{}
}

// NewState returns the all-hidden state for deck.
func NewState(deck Deck) State {
	return State{deck: deck}
}

// Deck returns the deck this state is scoped to.
func (s State) Deck() Deck { return s.deck }

// Size returns the number of cards in the deck.
func (s State) Size() int { return len(s.deck) }

// Flipped reports whether the card at i is face-up.
func (s State) Flipped(i int) bool {
	_, ok := s.flipped[i]
	return ok
}

// FlippedCount returns how many cards are face-up.
func (s State) FlippedCount() int { return len(s.flipped) }

// AllFlipped reports whether every card in a non-empty deck is face-up.
func (s State) AllFlipped() bool {
	return len(s.deck) > 0 && len(s.flipped) == len(s.deck)
}

// Toggle flips the card at i. i must be a valid index into the deck;
// callers only produce indices by iterating the current deck.
func (s State) Toggle(i int) State {
	next := make(map[int]struct{}, len(s.flipped)+1)
	for k := range s.flipped {
		next[k] = struct{}{}
	}
	if _, ok := next[i]; ok {
		delete(next, i)
	} else {
		next[i] = struct{}{}
	}
	return State{deck: s.deck, flipped: next}
}

// FlipAll toggles between the two canonical states: if every card is
// face-up the deck resets to all-hidden, otherwise every card goes
// face-up. A mixed deck always lands on all-up, not per-card inverted.
func (s State) FlipAll() State {
	if len(s.flipped) == len(s.deck) {
		return State{deck: s.deck}
	}
	next := make(map[int]struct{}, len(s.deck))
	for i := range s.deck {
		next[i] = struct{}{}
	}
	return State{deck: s.deck, flipped: next}
}

// ExportText renders the deck as numbered question/answer blocks
// separated by blank lines. Pure function of the deck; flip state is
// ignored.
func (d Deck) ExportText() string {
	blocks := make([]string, len(d))
	for i, c := range d {
		blocks[i] = fmt.Sprintf("%d. Q: %s\n   A: %s", i+1, c.Front, c.Back)
	}
	return strings.Join(blocks, "\n\n")
}

// ExportCSV renders the deck in Anki import format: one line per card,
// front and back double-quoted with embedded quotes doubled. Pure
// function of the deck.
func (d Deck) ExportCSV() []byte {
	var b strings.Builder
	for _, c := range d {
		front := strings.ReplaceAll(c.Front, `"`, `""`)
		back := strings.ReplaceAll(c.Back, `"`, `""`)
		b.WriteString(`"` + front + `","` + back + `"` + "\n")
	}
	return []byte(b.String())
}
