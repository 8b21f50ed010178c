// Package render draws the collection on a terminal. Terminal implements both
// ports.Renderer and ports.Notifier so the CLI can show the random quote, the
// filtered list, the category selector and the notification line.
package render

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/jsamuelsen/quote-keeper/internal/domain"
	"github.com/jsamuelsen/quote-keeper/internal/ports"
)

// EmptyListText is shown when the filtered list has nothing in it.
const EmptyListText = "No quotes in this category."

// Terminal writes plain lines styled with lipgloss. Colors are only emitted
// when the writer is a color-capable terminal.
type Terminal struct {
	mu  sync.Mutex
	out io.Writer
	err io.Writer

	quote    lipgloss.Style
	meta     lipgloss.Style
	id       lipgloss.Style
	dim      lipgloss.Style
	selected lipgloss.Style
	levels   map[ports.NotificationLevel]lipgloss.Style
}

// NewTerminal draws on out and writes notifications to errOut. A nil errOut
// sends notifications to out as well.
func NewTerminal(out, errOut io.Writer) *Terminal {
	if errOut == nil {
		errOut = out
	}

	r := lipgloss.NewRenderer(out)
	re := lipgloss.NewRenderer(errOut)

	return &Terminal{
		out:      out,
		err:      errOut,
		quote:    r.NewStyle().Bold(true).PaddingLeft(2),
		meta:     r.NewStyle().Foreground(lipgloss.Color("245")).PaddingLeft(4),
		id:       r.NewStyle().Foreground(lipgloss.Color("39")),
		dim:      r.NewStyle().Faint(true).PaddingLeft(2),
		selected: r.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		levels: map[ports.NotificationLevel]lipgloss.Style{
			ports.NotificationInfo:    re.NewStyle().Foreground(lipgloss.Color("42")),
			ports.NotificationWarning: re.NewStyle().Foreground(lipgloss.Color("214")),
			ports.NotificationError:   re.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		},
	}
}

// ShowRandom implements ports.Renderer.
func (t *Terminal) ShowRandom(_ context.Context, q domain.Quote) {
	var b strings.Builder

	b.WriteString(t.quote.Render(`"`+q.Text+`"`) + "\n")

	meta := "- " + q.DisplayAuthor()
	if q.Category != "" {
		meta += " [" + q.Category + "]"
	}

	b.WriteString(t.meta.Render(meta) + "\n")

	t.write(t.out, b.String())
}

// RenderList implements ports.Renderer.
func (t *Terminal) RenderList(_ context.Context, quotes []domain.Quote) {
	if len(quotes) == 0 {
		t.write(t.out, t.dim.Render(EmptyListText)+"\n")

		return
	}

	var b strings.Builder

	for _, q := range quotes {
		fmt.Fprintf(&b, "  %s  %q - %s (%s)\n", t.id.Render(q.ID), q.Text, q.DisplayAuthor(), q.Category)
	}

	t.write(t.out, b.String())
}

// RenderCategories implements ports.Renderer. The selected entry is bracketed.
func (t *Terminal) RenderCategories(_ context.Context, categories []string, selected string) {
	entries := make([]string, len(categories))

	for i, c := range categories {
		if c == selected {
			entries[i] = t.selected.Render("[" + c + "]")

			continue
		}

		entries[i] = c
	}

	t.write(t.out, "Categories: "+strings.Join(entries, " | ")+"\n")
}

// Notify implements ports.Notifier.
func (t *Terminal) Notify(_ context.Context, n ports.Notification) {
	style, ok := t.levels[n.Level]
	if !ok {
		style = t.levels[ports.NotificationInfo]
	}

	t.write(t.err, style.Render("["+string(n.Level)+"]")+" "+n.Message+"\n")
}

func (t *Terminal) write(w io.Writer, s string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, _ = io.WriteString(w, s)
}
