// internal/content/terminal.go
package content

import (
	"strings"

	"github.com/fatih/color"

	"flashcard_quiz/internal/model"
)

// TerminalFormatter はCLI向けにContentObjectを整形する。数式は区切り記号ごと表示する。
type TerminalFormatter struct {
	heading *color.Color
	math    *color.Color
	muted   *color.Color
}

func NewTerminalFormatter(colored bool) *TerminalFormatter {
	f := &TerminalFormatter{
		heading: color.New(color.Bold, color.FgCyan),
		math:    color.New(color.FgYellow),
		muted:   color.New(color.Italic, color.FgHiBlack),
	}
	for _, c := range []*color.Color{f.heading, f.math, f.muted} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return f
}

func (f *TerminalFormatter) Format(obj model.ContentObject) string {
	return f.Entries(Render(obj))
}

func (f *TerminalFormatter) Entries(entries []Entry) string {
	if len(entries) == 0 {
		return f.muted.Sprint(NoContentLabel) + "\n"
	}
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(f.heading.Sprint(f.Segments(e.Heading) + ":"))
		switch e.Kind {
		case EntryScalar:
			b.WriteString(" ")
			if len(e.Values) > 0 {
				b.WriteString(f.Segments(e.Values[0]))
			}
			b.WriteString("\n")
		case EntryList:
			b.WriteString("\n")
			for _, v := range e.Values {
				b.WriteString("  - " + f.Segments(v) + "\n")
			}
		case EntryEmptyList:
			b.WriteString(" " + f.muted.Sprint("("+EmptyListLabel+")") + "\n")
		default:
			b.WriteString(" " + f.muted.Sprint("("+NoValueLabel+")") + "\n")
		}
	}
	return b.String()
}

func (f *TerminalFormatter) Segments(segs []Segment) string {
	var b strings.Builder
	for _, seg := range segs {
		if seg.Kind == KindMath {
			b.WriteString(f.math.Sprint(Literal(seg)))
			continue
		}
		b.WriteString(seg.Value)
	}
	return b.String()
}
