package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://127.0.0.1:8000"

// DefaultUploadTimeout bounds the upload-and-process call. Backend
// processing of long audio legitimately takes minutes; this is the
// backstop against an unbounded hang.
const DefaultUploadTimeout = 20 * time.Minute

// Client issues ingest and search calls against the backend. It holds
// no state between calls.
type Client struct {
	baseURL       string
	httpc         *http.Client
	uploadTimeout time.Duration
}

// New creates a client for the given base URL, falling back to
// DefaultBaseURL when empty.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		httpc:         &http.Client{},
		uploadTimeout: DefaultUploadTimeout,
	}
}

// BaseURL returns the resolved backend address.
func (c *Client) BaseURL() string { return c.baseURL }

// SubmitAudio uploads an audio file for transcription and analysis.
// The call runs under the upload timeout; if the deadline elapses
// before settlement the in-flight request is aborted and a transport
// failure is returned. The caller must pass a non-empty filename.
func (c *Client) SubmitAudio(ctx context.Context, filename string, audio io.Reader) (*IngestResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.uploadTimeout)
	defer cancel()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, &Error{Message: fmt.Sprintf("encode upload: %v", err), Phase: PhaseUpload, Cause: CauseTransport}
	}
	if _, err := io.Copy(part, audio); err != nil {
		return nil, &Error{Message: fmt.Sprintf("read audio: %v", err), Phase: PhaseUpload, Cause: CauseTransport}
	}
	if err := mw.Close(); err != nil {
		return nil, &Error{Message: fmt.Sprintf("encode upload: %v", err), Phase: PhaseUpload, Cause: CauseTransport}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ingest", &body)
	if err != nil {
		return nil, &Error{Message: fmt.Sprintf("build request: %v", err), Phase: PhaseUpload, Cause: CauseTransport}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var result IngestResult
	if err := c.do(req, PhaseUpload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SubmitQuery asks a question against previously ingested material.
// The caller must pass a query that is non-empty after trimming. The
// call is not bounded by the upload timeout; search is short-lived.
func (c *Client) SubmitQuery(ctx context.Context, query string) (*SearchResult, error) {
	payload, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return nil, &Error{Message: fmt.Sprintf("encode query: %v", err), Phase: PhaseSearch, Cause: CauseTransport}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, &Error{Message: fmt.Sprintf("build request: %v", err), Phase: PhaseSearch, Cause: CauseTransport}
	}
	req.Header.Set("Content-Type", "application/json")

	var result SearchResult
	if err := c.do(req, PhaseSearch, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// do executes the request and decodes the response envelope into out.
// Every failure is an *Error tagged with the phase.
func (c *Client) do(req *http.Request, phase Phase, out any) error {
	resp, err := c.httpc.Do(req)
	if err != nil {
		if phase == PhaseUpload && errors.Is(err, context.DeadlineExceeded) {
			return &Error{
				Message: fmt.Sprintf("upload timed out after %s", c.uploadTimeout),
				Phase:   phase,
				Cause:   CauseTransport,
			}
		}
		return &Error{Message: err.Error(), Phase: phase, Cause: CauseTransport}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{
			Message: fmt.Sprintf("%s failed: %s", phase, resp.Status),
			Phase:   phase,
			Cause:   CauseTransport,
		}
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return &Error{Message: fmt.Sprintf("decode response: %v", err), Phase: phase, Cause: CauseTransport}
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = phase.String() + " failed"
		}
		return &Error{Message: msg, Phase: phase, Cause: CauseDeclared}
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &Error{Message: fmt.Sprintf("decode response data: %v", err), Phase: phase, Cause: CauseTransport}
	}
	return nil
}
