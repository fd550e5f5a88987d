package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// startMockBackend serves one handler and returns a client pointed at it.
func startMockBackend(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL)
}

func ingestEnvelope(t *testing.T, w http.ResponseWriter, result IngestResult) {
	t.Helper()
	data, _ := json.Marshal(result)
	json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"data":    json.RawMessage(data),
	})
}

func TestSubmitAudioSuccess(t *testing.T) {
	duration := 123.4
	want := IngestResult{
		Transcript: Transcript{Text: "hello world", WordCount: 42, Duration: &duration},
		Metadata:   Metadata{Filename: "lecture.mp3", CreatedAt: "2026-01-02T15:04:05Z"},
		Digest: Digest{
			Summary:     "A lecture.",
			Highlights:  []string{"one", "two"},
			Insights:    []string{"deep"},
			ActionItems: []string{"review notes"},
			Questions:   []string{"why?"},
		},
		Flashcards: FlashcardSet{
			Count: 1,
			Flashcards: []Flashcard{
				{Front: "Q1", Back: "A1"},
			},
		},
	}

	client := startMockBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/ingest" {
			t.Errorf("got %s %s, want POST /ingest", r.Method, r.URL.Path)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer file.Close()
		if header.Filename != "lecture.mp3" {
			t.Errorf("filename = %q, want %q", header.Filename, "lecture.mp3")
		}
		body, _ := io.ReadAll(file)
		if string(body) != "fake audio bytes" {
			t.Errorf("file body = %q", body)
		}
		ingestEnvelope(t, w, want)
	})

	got, err := client.SubmitAudio(context.Background(), "lecture.mp3", strings.NewReader("fake audio bytes"))
	if err != nil {
		t.Fatalf("SubmitAudio: %v", err)
	}
	if got.Transcript.Text != "hello world" {
		t.Errorf("transcript text = %q", got.Transcript.Text)
	}
	if got.Transcript.WordCount != 42 {
		t.Errorf("word count = %d, want 42", got.Transcript.WordCount)
	}
	if got.Transcript.Duration == nil || *got.Transcript.Duration != 123.4 {
		t.Errorf("duration = %v, want 123.4", got.Transcript.Duration)
	}
	if len(got.Digest.Highlights) != 2 {
		t.Errorf("highlights = %d, want 2", len(got.Digest.Highlights))
	}
	if got.Flashcards.Count != 1 || len(got.Flashcards.Flashcards) != 1 {
		t.Errorf("flashcards = %+v", got.Flashcards)
	}
	if got.Flashcards.Flashcards[0].Front != "Q1" {
		t.Errorf("card front = %q", got.Flashcards.Flashcards[0].Front)
	}
}

func TestSubmitAudioDeclaredFailure(t *testing.T) {
	client := startMockBackend(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"message": "unsupported format",
		})
	})

	_, err := client.SubmitAudio(context.Background(), "x.wav", strings.NewReader("x"))
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T", err)
	}
	if apiErr.Message != "unsupported format" {
		t.Errorf("message = %q, want %q", apiErr.Message, "unsupported format")
	}
	if apiErr.Cause != CauseDeclared {
		t.Errorf("cause = %v, want CauseDeclared", apiErr.Cause)
	}
	if apiErr.Phase != PhaseUpload {
		t.Errorf("phase = %v, want PhaseUpload", apiErr.Phase)
	}
}

func TestSubmitAudioDeclaredFailureNoMessage(t *testing.T) {
	client := startMockBackend(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": false})
	})

	_, err := client.SubmitAudio(context.Background(), "x.wav", strings.NewReader("x"))
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v", err)
	}
	if apiErr.Message != "upload failed" {
		t.Errorf("message = %q, want fallback %q", apiErr.Message, "upload failed")
	}
}

func TestSubmitAudioNon2xx(t *testing.T) {
	client := startMockBackend(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	_, err := client.SubmitAudio(context.Background(), "x.wav", strings.NewReader("x"))
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v", err)
	}
	if apiErr.Cause != CauseTransport {
		t.Errorf("cause = %v, want CauseTransport", apiErr.Cause)
	}
	if !strings.Contains(apiErr.Message, "502") {
		t.Errorf("message = %q, want status text", apiErr.Message)
	}
}

func TestSubmitAudioTimeout(t *testing.T) {
	settled := make(chan struct{})
	client := startMockBackend(t, func(w http.ResponseWriter, r *http.Request) {
		// Outlive the client's deadline.
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		close(settled)
	})
	client.uploadTimeout = 30 * time.Millisecond

	start := time.Now()
	_, err := client.SubmitAudio(context.Background(), "long.wav", strings.NewReader("x"))
	if time.Since(start) > time.Second {
		t.Error("call did not abort at the deadline")
	}

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v", err)
	}
	if apiErr.Cause != CauseTransport {
		t.Errorf("cause = %v, want CauseTransport", apiErr.Cause)
	}
	if !strings.Contains(apiErr.Message, "timed out") {
		t.Errorf("message = %q, want timeout message", apiErr.Message)
	}

	// The aborted request settles server-side without a second
	// resolution client-side.
	select {
	case <-settled:
	case <-time.After(3 * time.Second):
		t.Fatal("server handler never finished")
	}
}

func TestSubmitAudioConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := New(url)
	_, err := client.SubmitAudio(context.Background(), "x.wav", strings.NewReader("x"))
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v", err)
	}
	if apiErr.Cause != CauseTransport {
		t.Errorf("cause = %v, want CauseTransport", apiErr.Cause)
	}
}

func TestSubmitQuerySuccess(t *testing.T) {
	score := 0.91
	client := startMockBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/search" {
			t.Errorf("got %s %s, want POST /search", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req["query"] != "what is the main topic" {
			t.Errorf("query = %q", req["query"])
		}

		data, _ := json.Marshal(SearchResult{
			Query:  req["query"],
			Answer: "**The main topic** is memory.",
			Sources: []Source{
				{ID: "abcdef1234567890", Snippet: "memory is discussed", RelevanceScore: &score},
				{ID: "short", Snippet: "unscored"},
			},
		})
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    json.RawMessage(data),
		})
	})

	got, err := client.SubmitQuery(context.Background(), "what is the main topic")
	if err != nil {
		t.Fatalf("SubmitQuery: %v", err)
	}
	if got.Answer != "**The main topic** is memory." {
		t.Errorf("answer = %q", got.Answer)
	}
	if len(got.Sources) != 2 {
		t.Fatalf("sources = %d, want 2", len(got.Sources))
	}
	if got.Sources[0].RelevanceScore == nil || *got.Sources[0].RelevanceScore != 0.91 {
		t.Errorf("score = %v, want 0.91", got.Sources[0].RelevanceScore)
	}
	if got.Sources[1].RelevanceScore != nil {
		t.Errorf("score = %v, want nil", got.Sources[1].RelevanceScore)
	}
}

func TestSubmitQueryDeclaredFailure(t *testing.T) {
	client := startMockBackend(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"message": "no memories ingested",
		})
	})

	_, err := client.SubmitQuery(context.Background(), "anything")
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v", err)
	}
	if apiErr.Phase != PhaseSearch {
		t.Errorf("phase = %v, want PhaseSearch", apiErr.Phase)
	}
	if apiErr.Cause != CauseDeclared {
		t.Errorf("cause = %v, want CauseDeclared", apiErr.Cause)
	}
	if apiErr.Message != "no memories ingested" {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestBaseURLTrimsTrailingSlash(t *testing.T) {
	c := New("http://example.test:8000/")
	if c.BaseURL() != "http://example.test:8000" {
		t.Errorf("base url = %q", c.BaseURL())
	}
}

func TestDefaultBaseURL(t *testing.T) {
	c := New("")
	if c.BaseURL() != DefaultBaseURL {
		t.Errorf("base url = %q, want %q", c.BaseURL(), DefaultBaseURL)
	}
}
