package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/glamour"

	"github.com/ben05-coder/rizq/internal/api"
	"github.com/ben05-coder/rizq/internal/flashcards"
	"github.com/ben05-coder/rizq/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
)

// Focus tracks which zone has keyboard focus.
type Focus int

const (
	FocusFile Focus = iota
	FocusQuery
	FocusResults
)

// opKind identifies which of the two operations is running. At most
// one is in flight at any time.
type opKind int

const (
	opUpload opKind = iota
	opSearch
)

// Model is the root bubbletea model for the rizq TUI. It is the single
// owner of what operation is running, what came back, and what failed.
type Model struct {
	client *api.Client

	// Inputs
	fileInput  textinput.Model
	queryInput textinput.Model
	focus      Focus

	// Operation state. A new operation may only start while busy is
	// false; starting clears the prior result and error of either kind.
	busy    bool
	running opKind
	opSeq   int

	// Results. At most one is set, whichever operation completed last.
	ingest     *api.IngestResult
	search     *api.SearchResult
	answerView string // markdown-rendered search answer

	errorMessage string

	// Flashcards, rebuilt fresh for each ingest result.
	cards        flashcards.State
	selectedCard int

	transcriptOpen bool

	// Transient footer notice ("Copied!" etc).
	notice string

	spin   spinner.Model
	width  int
	height int
}

// New creates a new Model talking to the given client.
func New(client *api.Client) Model {
	fi := textinput.New()
	fi.Placeholder = "Path to an audio file..."
	fi.Prompt = "> "
	fi.Focus()

	qi := textinput.New()
	qi.Placeholder = "Ask a question..."
	qi.Prompt = "> "

	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(ui.SpinnerStyle))

	return Model{
		client:         client,
		fileInput:      fi,
		queryInput:     qi,
		spin:           sp,
		transcriptOpen: true,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// uploadCmd opens the chosen file and submits it. The settlement
// message carries seq so a late resolution cannot clobber a newer
// operation's state.
func uploadCmd(client *api.Client, seq int, path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return IngestDoneMsg{Seq: seq, Err: &api.Error{
				Message: fmt.Sprintf("open %s: %v", path, err),
				Phase:   api.PhaseUpload,
				Cause:   api.CauseTransport,
			}}
		}
		defer f.Close()

		result, err := client.SubmitAudio(context.Background(), filepath.Base(path), f)
		if err != nil {
			return IngestDoneMsg{Seq: seq, Err: asAPIError(err, api.PhaseUpload)}
		}
		return IngestDoneMsg{Seq: seq, Result: result}
	}
}

// searchCmd submits the query.
func searchCmd(client *api.Client, seq int, query string) tea.Cmd {
	return func() tea.Msg {
		result, err := client.SubmitQuery(context.Background(), query)
		if err != nil {
			return SearchDoneMsg{Seq: seq, Err: asAPIError(err, api.PhaseSearch)}
		}
		return SearchDoneMsg{Seq: seq, Result: result}
	}
}

func asAPIError(err error, phase api.Phase) *api.Error {
	var ae *api.Error
	if errors.As(err, &ae) {
		return ae
	}
	return &api.Error{Message: err.Error(), Phase: phase, Cause: api.CauseTransport}
}

// copyCmd writes text to the system clipboard.
func copyCmd(text, ack string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			return NoticeMsg{Text: "Copy failed: " + err.Error()}
		}
		return NoticeMsg{Text: ack}
	}
}

// exportCSVCmd writes the deck's CSV to the working directory.
func exportCSVCmd(deck flashcards.Deck) tea.Cmd {
	return func() tea.Msg {
		if err := os.WriteFile(flashcards.CSVFilename, deck.ExportCSV(), 0o644); err != nil {
			return NoticeMsg{Text: "Export failed: " + err.Error()}
		}
		return NoticeMsg{Text: "Exported " + flashcards.CSVFilename}
	}
}

// clearNoticeCmd fires after a delay to clear the transient notice.
func clearNoticeCmd() tea.Cmd {
	return tea.Tick(2*time.Second, func(time.Time) tea.Msg {
		return ClearNoticeMsg{}
	})
}

// Update processes messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case IngestDoneMsg:
		if !m.busy || m.running != opUpload || msg.Seq != m.opSeq {
			// Stale settlement, e.g. a call that already lost to its
			// own timeout.
			return m, nil
		}
		m.busy = false
		if msg.Err != nil {
			m.errorMessage = msg.Err.Message
			return m, nil
		}
		m.ingest = msg.Result
		m.search = nil
		m.cards = flashcards.NewState(deckOf(msg.Result))
		m.selectedCard = 0
		m.transcriptOpen = true
		return m, nil

	case SearchDoneMsg:
		if !m.busy || m.running != opSearch || msg.Seq != m.opSeq {
			return m, nil
		}
		m.busy = false
		m.queryInput.Reset()
		if msg.Err != nil {
			m.errorMessage = msg.Err.Message
			return m, nil
		}
		m.search = msg.Result
		m.ingest = nil
		m.answerView = renderMarkdown(msg.Result.Answer, m.contentWidth())
		return m, nil

	case NoticeMsg:
		m.notice = msg.Text
		return m, clearNoticeCmd()

	case ClearNoticeMsg:
		m.notice = ""
		return m, nil
	}

	// Cursor blink and other component messages.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.fileInput, cmd = m.fileInput.Update(msg)
	cmds = append(cmds, cmd)
	m.queryInput, cmd = m.queryInput.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// deckOf extracts the flashcard deck from an ingest result.
func deckOf(r *api.IngestResult) flashcards.Deck {
	deck := make(flashcards.Deck, 0, len(r.Flashcards.Flashcards))
	for _, c := range r.Flashcards.Flashcards {
		deck = append(deck, flashcards.Card{Front: c.Front, Back: c.Back})
	}
	return deck
}

// handleKey processes key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyQuit:
		return m, tea.Quit

	case KeyTab:
		m.focus = (m.focus + 1) % 3
		m.syncFocus()
		return m, nil

	case KeyEnter:
		switch m.focus {
		case FocusFile:
			return m.startUpload()
		case FocusQuery:
			return m.startSearch()
		case FocusResults:
			return m.toggleCard()
		}
	}

	if m.focus == FocusResults {
		return m.handleResultsKey(msg)
	}

	// Everything else goes to the focused input.
	var cmd tea.Cmd
	switch m.focus {
	case FocusFile:
		m.fileInput, cmd = m.fileInput.Update(msg)
	case FocusQuery:
		m.queryInput, cmd = m.queryInput.Update(msg)
	}
	return m, cmd
}

// handleResultsKey processes keys while the results zone is focused.
func (m Model) handleResultsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeySpace:
		return m.toggleCard()

	case KeyNextCard:
		if m.cards.Size() > 0 && m.selectedCard < m.cards.Size()-1 {
			m.selectedCard++
		}
		return m, nil

	case KeyPrevCard:
		if m.cards.Size() > 0 && m.selectedCard > 0 {
			m.selectedCard--
		}
		return m, nil

	case KeyFlipAll:
		if m.cards.Size() > 0 {
			m.cards = m.cards.FlipAll()
		}
		return m, nil

	case KeyCopy:
		if m.ingest != nil && m.cards.Size() > 0 {
			return m, copyCmd(m.cards.Deck().ExportText(), "Copied!")
		}
		if m.search != nil {
			return m, copyCmd(m.search.Answer, "Copied!")
		}
		return m, nil

	case KeyExportCSV:
		if m.ingest != nil && m.cards.Size() > 0 {
			return m, exportCSVCmd(m.cards.Deck())
		}
		return m, nil

	case KeyToggleTrans:
		if m.ingest != nil {
			m.transcriptOpen = !m.transcriptOpen
		}
		return m, nil

	case KeyCopyTranscript:
		if m.ingest != nil {
			return m, copyCmd(m.ingest.Transcript.Text, "Copied transcript!")
		}
		return m, nil

	case KeyCopyDigest:
		if m.ingest != nil {
			return m, copyCmd(digestText(m.ingest.Digest), "Copied digest!")
		}
		return m, nil
	}

	return m, nil
}

// startUpload begins the upload-and-process operation. It is a silent
// no-op while another operation is running or when no file is chosen.
func (m Model) startUpload() (tea.Model, tea.Cmd) {
	path := strings.TrimSpace(m.fileInput.Value())
	if m.busy || path == "" {
		return m, nil
	}
	m = m.clearOutcome()
	m.busy = true
	m.running = opUpload
	m.opSeq++
	return m, tea.Batch(m.spin.Tick, uploadCmd(m.client, m.opSeq, path))
}

// startSearch begins the search operation. Silent no-op while busy or
// when the query trims to empty; no network call is made either way.
func (m Model) startSearch() (tea.Model, tea.Cmd) {
	query := strings.TrimSpace(m.queryInput.Value())
	if m.busy || query == "" {
		return m, nil
	}
	m = m.clearOutcome()
	m.busy = true
	m.running = opSearch
	m.opSeq++
	return m, tea.Batch(m.spin.Tick, searchCmd(m.client, m.opSeq, query))
}

// clearOutcome wipes the previous result and error of either kind.
// Runs at operation start so the error banner never overlaps the next
// attempt's loading display.
func (m Model) clearOutcome() Model {
	m.ingest = nil
	m.search = nil
	m.answerView = ""
	m.errorMessage = ""
	m.notice = ""
	m.cards = flashcards.State{}
	m.selectedCard = 0
	return m
}

func (m Model) toggleCard() (tea.Model, tea.Cmd) {
	if m.cards.Size() > 0 && m.selectedCard < m.cards.Size() {
		m.cards = m.cards.Toggle(m.selectedCard)
	}
	return m, nil
}

func (m *Model) syncFocus() {
	m.fileInput.Blur()
	m.queryInput.Blur()
	switch m.focus {
	case FocusFile:
		m.fileInput.Focus()
	case FocusQuery:
		m.queryInput.Focus()
	}
}

// IsBusy reports whether an operation is running.
func (m Model) IsBusy() bool { return m.busy }

// CurrentError returns the displayed error message, empty when none.
func (m Model) CurrentError() string { return m.errorMessage }

// IngestResult returns the displayed ingest result, nil unless the
// last-completed operation was a successful upload.
func (m Model) IngestResult() *api.IngestResult { return m.ingest }

// SearchResult returns the displayed search result, nil unless the
// last-completed operation was a successful search.
func (m Model) SearchResult() *api.SearchResult { return m.search }

// renderMarkdown renders the answer markdown for the terminal, falling
// back to the raw text if rendering fails.
func renderMarkdown(text string, width int) string {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

// digestText flattens the digest into the numbered-sections layout
// used for the clipboard.
func digestText(d api.Digest) string {
	var b strings.Builder
	b.WriteString("Summary: " + d.Summary + "\n")
	writeSection := func(title string, items []string) {
		b.WriteString("\n" + title + ":\n")
		for i, it := range items {
			fmt.Fprintf(&b, "%d. %s\n", i+1, it)
		}
	}
	writeSection("Highlights", d.Highlights)
	writeSection("Insights", d.Insights)
	writeSection("Action Items", d.ActionItems)
	writeSection("Questions", d.Questions)
	return strings.TrimRight(b.String(), "\n")
}
