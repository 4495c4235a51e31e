package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/handiism/khinsider-downloader/internal/download"
)

// Palette.
const (
	colorAccent = lipgloss.Color("#E76F51")
	colorTeal   = lipgloss.Color("#2A9D8F")
	colorGreen  = lipgloss.Color("#8AC926")
	colorYellow = lipgloss.Color("#F4A261")
	colorRed    = lipgloss.Color("#E63946")
	colorBlue   = lipgloss.Color("#8ECAE6")
	colorGray   = lipgloss.Color("#808080")
)

func fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

var (
	titleStyle    = fg(colorAccent).Bold(true).MarginBottom(1)
	subtitleStyle = fg(colorTeal)
	successStyle  = fg(colorGreen)
	errorStyle    = fg(colorRed)
	infoStyle     = fg(colorBlue)
	dimStyle      = fg(colorGray)
	albumStyle    = fg(colorYellow)
	boxStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorTeal).
			Padding(1, 2)
)

// logMarks maps event levels to the style and marker of a log line.
// Verbose events use the dim default.
var logMarks = map[download.ProgressLevel]struct {
	style lipgloss.Style
	mark  string
}{
	download.LevelError:   {errorStyle, "✗"},
	download.LevelWarning: {fg(colorYellow).Italic(true), "!"},
	download.LevelSuccess: {successStyle, "✓"},
	download.LevelInfo:    {infoStyle, "›"},
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("♪ KHInsider Downloader"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Download video game soundtracks"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateInitializing:
		b.WriteString(m.viewInitializing())
	case StateDownloading:
		b.WriteString(m.viewDownloading())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.helpText()))

	return b.String()
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Enter album URL:"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s Follow listing pages (ctrl+l)\n", checkbox(m.followListings))
	fmt.Fprintf(&b, "  %s Create playlist (ctrl+p)\n", checkbox(m.playlist))
	fmt.Fprintf(&b, "  %s MP3 instead of FLAC (ctrl+f)\n", checkbox(m.lossy))
	fmt.Fprintf(&b, "  %s Verbose output (ctrl+v)\n", checkbox(m.verbose))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Download path: %s", m.settings.DownloadsPath)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewInitializing() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Resolving album pages..."))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewDownloading() string {
	var b strings.Builder

	if len(m.albums) > 0 {
		b.WriteString(successStyle.Render(fmt.Sprintf("Found %d album(s):", len(m.albums))))
		b.WriteString("\n")
		for _, album := range m.albums {
			b.WriteString(albumStyle.Render("  ♪ " + album))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(m.progress.ViewAs(m.percent()))
	b.WriteString("\n")

	b.WriteString(infoStyle.Render(fmt.Sprintf(
		"Files: %d/%d | Downloaded: %s of %s",
		m.downloadedFiles,
		m.totalFiles,
		humanize.Bytes(uint64(m.receivedBytes)),
		humanize.Bytes(uint64(m.totalBytes)),
	)))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	summary := fmt.Sprintf(
		"Download Complete!\n\n"+
			"Albums: %d\n"+
			"Files: %d (%d skipped, %d failed)\n"+
			"Unmatched: %d\n"+
			"Size: %s",
		m.stats.Albums,
		m.stats.Downloaded,
		m.stats.Skipped,
		m.stats.Failed,
		m.stats.Unmatched,
		humanize.Bytes(uint64(m.stats.Bytes)),
	)
	return boxStyle.Render(summary)
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("✗ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString("  " + m.err.Error())
	}

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, entry := range m.logs {
		style, mark := dimStyle, "•"
		if lm, ok := logMarks[entry.Level]; ok {
			style, mark = lm.style, lm.mark
		}
		b.WriteString(style.Render(mark + " " + entry.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) helpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • ctrl+l: listings • ctrl+p: playlist • ctrl+f: format • ctrl+v: verbose • esc: quit"
	case StateInitializing, StateDownloading:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new download • q: quit"
	}
	return ""
}
