// internal/content/html.go
package content

import (
	"html"
	"log/slog"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"flashcard_quiz/internal/model"
)

// MathPolicy は組版結果に許可するマークアップ
func MathPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^math (inline|display)$`)).OnElements("span")
	return p
}

// HTMLFormatter はエントリをHTML断片に変換する。
// テキストはエスケープし、数式は Typesetter に渡した結果を Policy で無害化する。
type HTMLFormatter struct {
	Typesetter Typesetter
	Policy     *bluemonday.Policy
	Logger     *slog.Logger
}

func NewHTMLFormatter(ts Typesetter, logger *slog.Logger) *HTMLFormatter {
	if ts == nil {
		ts = MathJaxTypesetter{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTMLFormatter{
		Typesetter: ts,
		Policy:     MathPolicy(),
		Logger:     logger,
	}
}

// Content はContentObjectをHTMLにする
func (f *HTMLFormatter) Content(obj model.ContentObject) string {
	return f.Entries(Render(obj))
}

// Entries はエントリ列をHTMLにする。エントリがなければ空表示を返す。
func (f *HTMLFormatter) Entries(entries []Entry) string {
	var b strings.Builder
	if len(entries) == 0 {
		b.WriteString(`<p class="empty">` + NoContentLabel + `</p>`)
		return b.String()
	}
	b.WriteString(`<div class="content">`)
	for _, e := range entries {
		b.WriteString(`<div class="entry"><strong>`)
		b.WriteString(f.Segments(e.Heading))
		b.WriteString(`:</strong>`)
		switch e.Kind {
		case EntryScalar:
			b.WriteString(` <span class="value">`)
			if len(e.Values) > 0 {
				b.WriteString(f.Segments(e.Values[0]))
			}
			b.WriteString(`</span>`)
		case EntryList:
			b.WriteString(`<ul>`)
			for _, v := range e.Values {
				b.WriteString(`<li>`)
				b.WriteString(f.Segments(v))
				b.WriteString(`</li>`)
			}
			b.WriteString(`</ul>`)
		case EntryEmptyList:
			b.WriteString(`<p class="empty">` + EmptyListLabel + `</p>`)
		default:
			b.WriteString(`<p class="absent">` + NoValueLabel + `</p>`)
		}
		b.WriteString(`</div>`)
	}
	b.WriteString(`</div>`)
	return b.String()
}

// Segments はセグメント列をHTMLにする。テキストはエスケープし、全体を Policy で無害化する。
// 組版に失敗した数式は区切り記号付きの元の表記をテキストとして出す。
func (f *HTMLFormatter) Segments(segs []Segment) string {
	var b strings.Builder
	for _, seg := range segs {
		if seg.Kind != KindMath {
			b.WriteString(html.EscapeString(seg.Value))
			continue
		}
		out, err := f.Typesetter.Typeset(seg.Value, seg.Display)
		if err != nil {
			f.Logger.Warn("Math typesetting failed, falling back to literal source",
				slog.String("source", Literal(seg)),
				slog.Bool("display", seg.Display),
				slog.Any("error", err),
			)
			b.WriteString(html.EscapeString(Literal(seg)))
			continue
		}
		b.WriteString(out)
	}
	return f.Policy.Sanitize(b.String())
}
