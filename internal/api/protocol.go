// Package api provides the HTTP client and protocol types for the Rizq
// memory engine backend. Every response arrives in a uniform envelope
// {success, data?, message?}; a 2xx response with success:false is a
// declared failure, anything below that is a transport failure.
package api

import "encoding/json"

// Transcript holds the transcribed text of one ingested recording.
type Transcript struct {
	Text      string   `json:"text"`
	WordCount int      `json:"word_count"`
	Duration  *float64 `json:"duration,omitempty"` // seconds
}

// Metadata describes the ingested recording.
type Metadata struct {
	Filename  string `json:"filename,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Digest is the structured summary derived from a transcript.
type Digest struct {
	Summary     string   `json:"summary"`
	Highlights  []string `json:"highlights"`
	Insights    []string `json:"insights"`
	ActionItems []string `json:"action_items"`
	Questions   []string `json:"questions"`
}

// Flashcard is one question/answer pair.
type Flashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// FlashcardSet groups the flashcards generated for one recording.
type FlashcardSet struct {
	Count      int         `json:"count"`
	Flashcards []Flashcard `json:"flashcards"`
}

// IngestResult is returned by a successful upload-and-process call.
// It is immutable once received; a new ingest supersedes it wholesale.
type IngestResult struct {
	Transcript Transcript   `json:"transcript"`
	Metadata   Metadata     `json:"metadata"`
	Digest     Digest       `json:"digest"`
	Flashcards FlashcardSet `json:"flashcards"`
}

// Source is one retrieved snippet backing a search answer.
type Source struct {
	ID             string   `json:"id"`
	Snippet        string   `json:"snippet"`
	RelevanceScore *float64 `json:"relevance_score,omitempty"` // in [0,1]
}

// SearchResult is returned by a successful query. The answer is
// markdown.
type SearchResult struct {
	Query   string   `json:"query"`
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}

// envelope is the backend's uniform response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}
