// Package tui provides the interactive inline track picker.
package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/hifi/internal/domain"
	"github.com/mmcdole/hifi/internal/tui/styles"
)

const (
	noChoice  = -1
	maxWidth  = 72
	rowIndent = 2
)

// Picker selects a track with an inline bubbletea list. It satisfies the
// console Selector contract.
type Picker struct {
	in     io.Reader
	out    io.Writer
	keys   KeyMap
	logger *slog.Logger
}

// NewPicker creates a picker reading keys from in and drawing to out
func NewPicker(in io.Reader, out io.Writer, logger *slog.Logger) *Picker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Picker{
		in:     in,
		out:    out,
		keys:   DefaultKeyMap(),
		logger: logger,
	}
}

// Select runs the picker until a track is chosen or the user skips.
// Returns the track index, or -1 when nothing was chosen.
func (p *Picker) Select(ctx context.Context, tracks []domain.Track) (int, error) {
	if len(tracks) == 0 {
		return noChoice, nil
	}

	prog := tea.NewProgram(
		newPickerModel(tracks, p.keys),
		tea.WithContext(ctx),
		tea.WithInput(p.in),
		tea.WithOutput(p.out),
	)

	final, err := prog.Run()
	if err != nil {
		if ctx.Err() != nil {
			return noChoice, ctx.Err()
		}
		return noChoice, fmt.Errorf("track picker: %w", err)
	}

	m, ok := final.(pickerModel)
	if !ok {
		return noChoice, nil
	}
	p.logger.Debug("picker closed", "chosen", m.chosen, "filter", m.filter.Value())
	return m.chosen, nil
}

// trackSource adapts tracks to fuzzy.Source using lowercase display names
type trackSource []string

func (s trackSource) String(i int) string { return s[i] }
func (s trackSource) Len() int            { return len(s) }

type pickerModel struct {
	tracks  []domain.Track
	labels  trackSource
	visible []int // indices into tracks, in display order
	cursor  int

	filter textinput.Model
	keys   KeyMap

	chosen int
	done   bool
}

func newPickerModel(tracks []domain.Track, keys KeyMap) pickerModel {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle

	labels := make(trackSource, len(tracks))
	for i, t := range tracks {
		labels[i] = strings.ToLower(t.DisplayName())
	}

	m := pickerModel{
		tracks: tracks,
		labels: labels,
		filter: ti,
		keys:   keys,
		chosen: noChoice,
	}
	m.applyFilter()
	return m
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.filter.Focused() {
		return m.updateFilter(keyMsg)
	}

	switch {
	case key.Matches(keyMsg, m.keys.Clear) && m.filter.Value() != "":
		m.filter.SetValue("")
		m.applyFilter()
	case key.Matches(keyMsg, m.keys.Cancel):
		return m.finish(noChoice)
	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < len(m.visible)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, m.keys.Choose):
		if len(m.visible) > 0 {
			return m.finish(m.visible[m.cursor])
		}
	case key.Matches(keyMsg, m.keys.Filter):
		cmd := m.filter.Focus()
		return m, cmd
	default:
		// Digits pick by visible position, matching the numbered list
		if n, ok := digit(keyMsg); ok && n <= len(m.visible) {
			return m.finish(m.visible[n-1])
		}
	}
	return m, nil
}

// updateFilter routes keys to the filter input while it has focus
func (m pickerModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m.finish(noChoice)
	case tea.KeyEsc:
		m.filter.SetValue("")
		m.filter.Blur()
		m.applyFilter()
		return m, nil
	case tea.KeyEnter:
		m.filter.Blur()
		if len(m.visible) == 1 {
			return m.finish(m.visible[0])
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m pickerModel) finish(idx int) (tea.Model, tea.Cmd) {
	m.chosen = idx
	m.done = true
	m.filter.Blur()
	return m, tea.Quit
}

// applyFilter recomputes the visible rows from the filter query
func (m *pickerModel) applyFilter() {
	m.cursor = 0
	query := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	if query == "" {
		m.visible = make([]int, len(m.tracks))
		for i := range m.tracks {
			m.visible[i] = i
		}
		return
	}

	matches := fuzzy.FindFrom(query, m.labels)
	m.visible = make([]int, len(matches))
	for i, match := range matches {
		m.visible[i] = match.Index
	}
}

func (m pickerModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.AccentStyle.Render("Select track"))
	b.WriteString("\n")

	if m.filter.Focused() || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
		b.WriteString("\n")
	}

	if len(m.visible) == 0 {
		b.WriteString(styles.DimStyle.Render("  no matches"))
		b.WriteString("\n")
	}

	for row, idx := range m.visible {
		t := m.tracks[idx]
		label := styles.Truncate(fmt.Sprintf("%d. %s - %s [%s]", row+1, t.Title, t.Artist, t.AudioQuality), maxWidth-rowIndent)
		if row == m.cursor {
			b.WriteString(styles.SelectedItemStyle.Render(label))
		} else {
			b.WriteString(styles.NormalItemStyle.Render(label))
		}
		b.WriteString("\n")
	}

	b.WriteString(m.helpView())
	return b.String()
}

func (m pickerModel) helpView() string {
	var parts []string
	for _, kb := range m.keys.ShortHelp() {
		h := kb.Help()
		parts = append(parts, styles.HelpKeyStyle.Render(h.Key)+" "+styles.HelpDescStyle.Render(h.Desc))
	}
	return strings.Join(parts, styles.HelpDescStyle.Render(" • "))
}

// digit reports a 1-9 key press
func digit(msg tea.KeyMsg) (int, bool) {
	if msg.Type != tea.KeyRunes || len(msg.Runes) != 1 {
		return 0, false
	}
	r := msg.Runes[0]
	if r < '1' || r > '9' {
		return 0, false
	}
	return int(r - '0'), true
}
