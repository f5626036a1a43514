package render

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Printer writes lines to w, styling segments when color is on.
type Printer struct {
	w      io.Writer
	color  bool
	styles map[Style]lipgloss.Style
}

// NewPrinter returns a Printer writing to w. With color off segments are
// written verbatim.
func NewPrinter(w io.Writer, color bool) *Printer {
	r := lipgloss.NewRenderer(w)
	if color {
		r.SetColorProfile(termenv.ANSI)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Printer{
		w:     w,
		color: color,
		styles: map[Style]lipgloss.Style{
			ID:    r.NewStyle().Foreground(lipgloss.Color("2")),
			Group: r.NewStyle().Foreground(lipgloss.Color("3")),
			Stars: r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
			Alert: r.NewStyle().Foreground(lipgloss.Color("1")),
		},
	}
}

// Plain returns a Printer on the same writer with styling off.
func (p *Printer) Plain() *Printer {
	if !p.color {
		return p
	}
	return NewPrinter(p.w, false)
}

// Render returns the line as it would be printed, without a newline.
func (p *Printer) Render(l Line) string {
	var b strings.Builder
	for _, s := range l {
		style, ok := p.styles[s.Style]
		if !p.color || !ok {
			b.WriteString(s.Text)
			continue
		}
		b.WriteString(style.Render(s.Text))
	}
	return b.String()
}

// Println writes one line followed by a newline.
func (p *Printer) Println(segs ...Segment) error {
	_, err := io.WriteString(p.w, p.Render(segs)+"\n")
	return err
}

// PrintLines writes each line followed by a newline.
func (p *Printer) PrintLines(lines []Line) error {
	for _, l := range lines {
		if err := p.Println(l...); err != nil {
			return err
		}
	}
	return nil
}
