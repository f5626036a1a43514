// Package render decides what a task listing looks like and writes it with
// terminal styling.
package render

import (
	"strconv"
	"strings"

	"github.com/amirbrooks/todo/internal/store"
)

// Style tags a segment; the Printer maps tags to terminal styles.
type Style int

const (
	Plain Style = iota
	ID
	Group
	Stars
	Alert
)

// Segment is a run of text sharing one style.
type Segment struct {
	Text  string
	Style Style
}

// Line is one output line. An empty Line is a blank separator.
type Line []Segment

// Text returns the line without styling.
func (l Line) Text() string {
	var b strings.Builder
	for _, s := range l {
		b.WriteString(s.Text)
	}
	return b.String()
}

// Text is a convenience for a single unstyled segment.
func Text(s string) Segment { return Segment{Text: s, Style: Plain} }

// Suffix renders the descriptor part that follows a task's text:
// " (id)", then " (group)" when set, then " (**)" with one star per
// priority level up to three.
func Suffix(d store.Descriptor) []Segment {
	segs := []Segment{{Text: " (" + strconv.Itoa(d.ID) + ")", Style: ID}}
	if d.HasGroup() {
		segs = append(segs, Segment{Text: " (" + d.Group + ")", Style: Group})
	}
	if n := d.DisplayPriority(); n > 0 {
		segs = append(segs, Segment{Text: " (" + strings.Repeat("*", n) + ")", Style: Stars})
	}
	return segs
}

// TaskLine renders one entry.
func TaskLine(e store.Entry) Line {
	return append(Line{Text(e.Text)}, Suffix(e.Desc)...)
}

// Format lays out entries, given in display order, as lines with a blank
// line wherever priority or group changes.
func Format(entries []store.Entry) []Line {
	lines := make([]Line, 0, len(entries))
	for i, e := range entries {
		if i > 0 && !entries[i-1].Desc.SameBlock(e.Desc) {
			lines = append(lines, Line{})
		}
		lines = append(lines, TaskLine(e))
	}
	return lines
}
