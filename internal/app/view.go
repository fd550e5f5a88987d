package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ben05-coder/rizq/internal/ui"
)

// View renders the full TUI. It is a pure projection of the model; no
// state lives here.
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var sections []string

	sections = append(sections, m.renderHeader())
	sections = append(sections, "")
	sections = append(sections, m.renderInputs())
	sections = append(sections, ui.DividerStyle.Render(strings.Repeat("─", m.width)))

	if m.errorMessage != "" {
		sections = append(sections, ui.ErrorStyle.Render("Error: ")+ui.ErrorTextStyle.Render(m.errorMessage))
	}

	if m.busy {
		sections = append(sections, m.renderBusy())
	} else if m.ingest != nil {
		sections = append(sections, m.renderIngest())
	} else if m.search != nil {
		sections = append(sections, m.renderSearch())
	} else if m.errorMessage == "" {
		sections = append(sections, ui.DimStyle.Render("  Upload a recording or ask a question to get started."))
	}

	sections = append(sections, ui.DividerStyle.Render(strings.Repeat("─", m.width)))
	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

func (m Model) renderHeader() string {
	title := ui.TitleStyle.Render("RIZQ MEMORY ENGINE")
	return title + ui.DimStyle.Render(" — "+m.client.BaseURL())
}

func (m Model) renderInputs() string {
	fileLabel := ui.PanelTitleStyle.Render("AUDIO")
	if m.focus == FocusFile {
		fileLabel = ui.PanelTitleActiveStyle.Render("AUDIO")
	}
	queryLabel := ui.PanelTitleStyle.Render("ASK")
	if m.focus == FocusQuery {
		queryLabel = ui.PanelTitleActiveStyle.Render("ASK")
	}

	return fileLabel + "  " + m.fileInput.View() + "\n" +
		queryLabel + "    " + m.queryInput.View()
}

func (m Model) renderBusy() string {
	label := "Processing..."
	if m.running == opSearch {
		label = "Searching..."
	}
	return "\n  " + m.spin.View() + ui.DimStyle.Render(label)
}

func (m Model) renderIngest() string {
	var parts []string
	parts = append(parts, m.renderTranscript())
	parts = append(parts, m.renderDigest())
	if m.cards.Size() > 0 {
		parts = append(parts, m.renderFlashcards())
	}
	return strings.Join(parts, "\n\n")
}

func (m Model) renderTranscript() string {
	t := m.ingest.Transcript
	md := m.ingest.Metadata

	header := m.panelTitle("TRANSCRIPT")
	if md.Filename != "" {
		header += ui.DimStyle.Render("  " + md.Filename)
	}
	header += ui.CountStyle.Render(fmt.Sprintf("  %d words", t.WordCount))
	if t.Duration != nil {
		header += ui.CountStyle.Render("  " + formatDuration(*t.Duration))
	}

	lines := []string{header}
	if m.transcriptOpen {
		for _, l := range wrapText(t.Text, m.contentWidth()) {
			lines = append(lines, "  "+l)
		}
		if md.CreatedAt != "" {
			lines = append(lines, ui.DimStyle.Render("  "+md.CreatedAt))
		}
	} else {
		lines = append(lines, ui.DimStyle.Render("  (collapsed — press t to expand)"))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderDigest() string {
	d := m.ingest.Digest

	lines := []string{m.panelTitle("DIGEST")}
	for _, l := range wrapText(d.Summary, m.contentWidth()) {
		lines = append(lines, "  "+l)
	}

	section := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		lines = append(lines, "")
		lines = append(lines, "  "+ui.PanelTitleStyle.Render(title)+ui.CountStyle.Render(fmt.Sprintf(" (%d)", len(items))))
		for i, it := range items {
			wrapped := wrapText(it, m.contentWidth()-6)
			lines = append(lines, fmt.Sprintf("  %d. %s", i+1, wrapped[0]))
			for _, wl := range wrapped[1:] {
				lines = append(lines, "     "+wl)
			}
		}
	}
	section("Highlights", d.Highlights)
	section("Insights", d.Insights)
	section("Action Items", d.ActionItems)
	section("Questions", d.Questions)

	return strings.Join(lines, "\n")
}

func (m Model) renderFlashcards() string {
	header := m.panelTitle("FLASHCARDS") +
		ui.CountStyle.Render(fmt.Sprintf("  %d cards", m.cards.Size()))
	if m.cards.AllFlipped() {
		header += ui.DimStyle.Render("  [f Reset All]")
	} else {
		header += ui.DimStyle.Render("  [f Flip All]")
	}

	lines := []string{header}
	for i, card := range m.cards.Deck() {
		marker := "▸"
		if m.cards.Flipped(i) {
			marker = "▾"
		}

		num := ui.CardNumberStyle.Render(fmt.Sprintf("#%d", i+1))
		front := card.Front
		if i == m.selectedCard && m.focus == FocusResults {
			lines = append(lines, ui.SelectedStyle.Render("> "+marker+" ")+num+" "+ui.SelectedStyle.Render(front))
		} else {
			lines = append(lines, "  "+marker+" "+num+" "+front)
		}

		if m.cards.Flipped(i) {
			for _, wl := range wrapText(card.Back, m.contentWidth()-8) {
				lines = append(lines, ui.CardBackStyle.Render("       "+wl))
			}
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderSearch() string {
	lines := []string{m.panelTitle("ANSWER") + ui.DimStyle.Render("  "+m.search.Query)}
	lines = append(lines, m.answerView)

	if len(m.search.Sources) > 0 {
		lines = append(lines, "")
		lines = append(lines, m.panelTitle("SOURCES")+ui.CountStyle.Render(fmt.Sprintf("  %d", len(m.search.Sources))))
		for i, src := range m.search.Sources {
			badge := relevanceStyle(src.RelevanceScore).Render(relevanceLabel(src.RelevanceScore))
			head := fmt.Sprintf("  #%d %s %s", i+1, shortID(src.ID), badge)
			if src.RelevanceScore != nil {
				head += ui.CountStyle.Render(fmt.Sprintf(" %.1f%%", *src.RelevanceScore*100))
			}
			lines = append(lines, head)
			for _, wl := range wrapText(src.Snippet, m.contentWidth()-6) {
				lines = append(lines, ui.DimStyle.Render("     "+wl))
			}
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderFooter() string {
	var parts []string

	if m.notice != "" {
		parts = append(parts, ui.NoticeStyle.Render(m.notice))
	}

	parts = append(parts, ui.FooterKeyStyle.Render("Tab")+ui.FooterDescStyle.Render(" Focus"))
	switch m.focus {
	case FocusFile:
		parts = append(parts, ui.FooterKeyStyle.Render("Enter")+ui.FooterDescStyle.Render(" Upload"))
	case FocusQuery:
		parts = append(parts, ui.FooterKeyStyle.Render("Enter")+ui.FooterDescStyle.Render(" Ask"))
	case FocusResults:
		if m.ingest != nil {
			if m.cards.Size() > 0 {
				parts = append(parts, ui.FooterKeyStyle.Render("j/k")+ui.FooterDescStyle.Render(" Card"))
				parts = append(parts, ui.FooterKeyStyle.Render("Enter")+ui.FooterDescStyle.Render(" Flip"))
				parts = append(parts, ui.FooterKeyStyle.Render("f")+ui.FooterDescStyle.Render(" Flip All"))
				parts = append(parts, ui.FooterKeyStyle.Render("c")+ui.FooterDescStyle.Render(" Copy"))
				parts = append(parts, ui.FooterKeyStyle.Render("e")+ui.FooterDescStyle.Render(" Export"))
			}
			parts = append(parts, ui.FooterKeyStyle.Render("t")+ui.FooterDescStyle.Render(" Transcript"))
		}
		if m.search != nil {
			parts = append(parts, ui.FooterKeyStyle.Render("c")+ui.FooterDescStyle.Render(" Copy Answer"))
		}
	}
	parts = append(parts, ui.FooterKeyStyle.Render("Ctrl+C")+ui.FooterDescStyle.Render(" Quit"))

	return strings.Join(parts, "  ")
}

func (m Model) panelTitle(s string) string {
	if m.focus == FocusResults {
		return ui.PanelTitleActiveStyle.Render(s)
	}
	return ui.PanelTitleStyle.Render(s)
}

func (m Model) contentWidth() int {
	if m.width == 0 {
		return 78
	}
	return max(20, m.width-4)
}

// relevanceLabel mirrors the score thresholds the web UI used.
func relevanceLabel(score *float64) string {
	switch {
	case score == nil:
		return "N/A"
	case *score > 0.8:
		return "Highly Relevant"
	case *score > 0.6:
		return "Relevant"
	default:
		return "Somewhat Relevant"
	}
}

func relevanceStyle(score *float64) lipgloss.Style {
	switch {
	case score == nil:
		return ui.RelevanceGrayStyle
	case *score > 0.8:
		return ui.RelevanceGreenStyle
	case *score > 0.6:
		return ui.RelevanceYellowStyle
	default:
		return ui.RelevanceOrangeStyle
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8] + "..."
	}
	return id
}

// formatDuration renders seconds as m:ss.
func formatDuration(seconds float64) string {
	mins := int(seconds) / 60
	secs := int(seconds) % 60
	return fmt.Sprintf("%d:%02d", mins, secs)
}

func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		var current string
		for _, word := range strings.Fields(paragraph) {
			if current == "" {
				current = word
			} else if len(current)+1+len(word) <= width {
				current += " " + word
			} else {
				lines = append(lines, current)
				current = word
			}
		}
		if current != "" {
			lines = append(lines, current)
		} else {
			lines = append(lines, "")
		}
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}
