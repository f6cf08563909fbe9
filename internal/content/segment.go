// internal/content/segment.go
package content

import (
	"fmt"
	"strings"
)

// Kind はセグメントの種類
type Kind int

const (
	KindText Kind = iota
	KindMath
)

func (k Kind) String() string {
	if k == KindMath {
		return "math"
	}
	return "text"
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "text":
		*k = KindText
	case "math":
		*k = KindMath
	default:
		return fmt.Errorf("unknown segment kind %q", text)
	}
	return nil
}

// Segment は表示用に分割された文字列の断片。
// Display は $$...$$ のブロック数式のときだけ true。
type Segment struct {
	Kind    Kind   `json:"kind"`
	Value   string `json:"value"`
	Display bool   `json:"display,omitempty"`
}

// Text はテキストセグメントを作る
func Text(s string) Segment { return Segment{Kind: KindText, Value: s} }

// InlineMath はインライン数式セグメントを作る
func InlineMath(src string) Segment { return Segment{Kind: KindMath, Value: src} }

// DisplayMath はブロック数式セグメントを作る
func DisplayMath(src string) Segment { return Segment{Kind: KindMath, Value: src, Display: true} }

// Literal はセグメントを区切り記号付きの元の表記に戻す。
// 数式の組版に失敗したときの代替表示に使う。
func Literal(seg Segment) string {
	if seg.Kind != KindMath {
		return seg.Value
	}
	if seg.Display {
		return "$$" + seg.Value + "$$"
	}
	return "$" + seg.Value + "$"
}

// SegmentText は文字列をテキストと数式の並びに分割する。
//
//   - $$ はブロック数式を開き、次のエスケープされていない $$ で閉じる。中にエスケープされていない $ は置けない。
//   - $ はインライン数式を開き、次のエスケープされていない $ で閉じる。
//   - 中身が空の区間と、閉じられない $ はそのままテキストになる。
//   - \$ は区切りにならず、テキスト・数式のどちらでもそのまま残る。
//
// 連続するテキストは一つにまとめる。空文字列は空のスライスを返す。
func SegmentText(text string) []Segment {
	var (
		out       []Segment
		textStart int
		i         int
	)
	n := len(text)

	flushText := func(end int) {
		if end > textStart {
			out = appendText(out, text[textStart:end])
		}
	}

	for i < n {
		switch text[i] {
		case '\\':
			// エスケープされた次の1バイトは読み飛ばす
			i += 2
			continue
		case '$':
		default:
			i++
			continue
		}

		if i+1 < n && text[i+1] == '$' {
			if end, ok := closeBlock(text, i+2); ok && end > i+2 {
				flushText(i)
				out = append(out, DisplayMath(text[i+2:end]))
				i = end + 2
				textStart = i
				continue
			}
			// 閉じられない、または空の $$ は文字として扱う
			i += 2
			continue
		}

		if end, ok := closeInline(text, i+1); ok && end > i+1 {
			flushText(i)
			out = append(out, InlineMath(text[i+1:end]))
			i = end + 1
			textStart = i
			continue
		}
		i++
	}
	if textStart < n {
		out = appendText(out, text[textStart:])
	}
	if out == nil {
		out = []Segment{}
	}
	return out
}

// closeInline は from 以降で最初のエスケープされていない $ の位置を返す
func closeInline(text string, from int) (int, bool) {
	for j := from; j < len(text); j++ {
		switch text[j] {
		case '\\':
			j++
		case '$':
			return j, true
		}
	}
	return 0, false
}

// closeBlock は from 以降で最初のエスケープされていない $$ の位置を返す。
// 途中に単独の $ があれば閉じられない。
func closeBlock(text string, from int) (int, bool) {
	for j := from; j < len(text); j++ {
		switch text[j] {
		case '\\':
			j++
		case '$':
			if j+1 < len(text) && text[j+1] == '$' {
				return j, true
			}
			return 0, false
		}
	}
	return 0, false
}

func appendText(out []Segment, s string) []Segment {
	if last := len(out) - 1; last >= 0 && out[last].Kind == KindText {
		out[last].Value += s
		return out
	}
	return append(out, Text(s))
}

// plainText はセグメント列を区切り記号付きの1つの文字列に戻す
func plainText(segs []Segment) string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(Literal(s))
	}
	return b.String()
}
