// internal/content/render.go
package content

import (
	"fmt"

	"flashcard_quiz/internal/model"
)

// EntryKind は見出しに対応する値の表示方法
type EntryKind int

const (
	EntryScalar    EntryKind = iota // 単一の値
	EntryList                       // 箇条書き
	EntryEmptyList                  // 空のリスト
	EntryAbsent                     // 値なし (null)
)

var entryKindNames = [...]string{
	EntryScalar:    "scalar",
	EntryList:      "list",
	EntryEmptyList: "empty_list",
	EntryAbsent:    "absent",
}

func (k EntryKind) String() string {
	if k >= EntryScalar && k <= EntryAbsent {
		return entryKindNames[k]
	}
	return fmt.Sprintf("EntryKind(%d)", int(k))
}

func (k EntryKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// 空表示のラベル
const (
	NoContentLabel = "No content available."
	EmptyListLabel = "Empty list"
	NoValueLabel   = "No value"
)

// Entry は見出し一つ分の表示内容。
// Values は Scalar なら1要素、List なら要素ごと、EmptyList と Absent では空。
type Entry struct {
	Heading []Segment   `json:"heading"`
	Kind    EntryKind   `json:"kind"`
	Values  [][]Segment `json:"values"`
}

// Render はキーの順序を保ったままContentObjectを表示用のエントリに変換する。
// 見出しも値と同じく数式を含められる。
func Render(obj model.ContentObject) []Entry {
	entries := make([]Entry, 0, len(obj))
	for _, field := range obj {
		e := Entry{
			Heading: SegmentText(field.Heading),
			Values:  [][]Segment{},
		}
		switch field.Value.Kind() {
		case model.ValueScalar:
			e.Kind = EntryScalar
			e.Values = append(e.Values, SegmentText(field.Value.Scalar()))
		case model.ValueList:
			items := field.Value.List()
			if len(items) == 0 {
				e.Kind = EntryEmptyList
				break
			}
			e.Kind = EntryList
			for _, item := range items {
				e.Values = append(e.Values, SegmentText(item))
			}
		default:
			e.Kind = EntryAbsent
		}
		entries = append(entries, e)
	}
	return entries
}
