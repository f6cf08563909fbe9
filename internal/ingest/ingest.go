// internal/ingest/ingest.go
package ingest

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"flashcard_quiz/internal/model"
	"flashcard_quiz/internal/webutil"
)

// コレクション名のルール (URLのパス要素としても使う)
const nameRule = "required,max=255,excludesall=/\\"

// DroppedItem は取り込み時に捨てたアイテムとその理由
type DroppedItem struct {
	Index  int    `json:"index"`
	ID     string `json:"id,omitempty"`
	Reason string `json:"reason"`
}

// Report は取り込み結果の集計
type Report struct {
	Collection string        `json:"collection"`
	Total      int           `json:"total"`
	Accepted   int           `json:"accepted"`
	Dropped    []DroppedItem `json:"dropped"`
}

// ValidateName はコレクション名を検証する
func ValidateName(name string) error {
	if err := webutil.Validator.Var(name, nameRule); err != nil {
		return fmt.Errorf("%w: invalid collection name %q", model.ErrInvalidInput, name)
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: collection name is blank", model.ErrInvalidInput)
	}
	return nil
}

// Parse はアップロードされたJSONを検証してコレクションにする。
// 不正なアイテムは理由付きで Report に記録して捨てる。ID が重複した場合は後のものを捨てる。
// トップレベルが配列でない場合と、有効なアイテムが一件もない場合は model.ErrSchema を返す。
func Parse(name string, data []byte) (model.Collection, Report, error) {
	report := Report{Collection: name, Dropped: []DroppedItem{}}
	if err := ValidateName(name); err != nil {
		return model.Collection{}, report, err
	}
	if !gjson.ValidBytes(data) {
		return model.Collection{}, report, fmt.Errorf("%w: %s is not valid JSON", model.ErrSchema, name)
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return model.Collection{}, report, fmt.Errorf("%w: %s must contain a top-level array", model.ErrSchema, name)
	}

	col := model.Collection{Name: name, Items: []model.FlashcardItem{}}
	seen := map[model.ItemID]bool{}
	index := 0
	root.ForEach(func(_, raw gjson.Result) bool {
		i := index
		index++
		report.Total++

		item, err := ParseItem(raw)
		if err != nil {
			report.Dropped = append(report.Dropped, DroppedItem{Index: i, ID: idHint(raw), Reason: err.Error()})
			return true
		}
		if seen[item.ID] {
			report.Dropped = append(report.Dropped, DroppedItem{
				Index:  i,
				ID:     item.ID.String(),
				Reason: fmt.Sprintf("duplicate id %s", item.ID),
			})
			return true
		}
		seen[item.ID] = true
		col.Items = append(col.Items, item)
		return true
	})
	report.Accepted = len(col.Items)

	if len(col.Items) == 0 {
		return model.Collection{}, report, fmt.Errorf("%w: %s has no valid items", model.ErrSchema, name)
	}
	return col, report, nil
}

// ParseItem は一件分のJSONをFlashcardItemにする
func ParseItem(raw gjson.Result) (model.FlashcardItem, error) {
	if !raw.IsObject() {
		return model.FlashcardItem{}, fmt.Errorf("%w: item must be an object", model.ErrSchema)
	}
	id, err := model.ParseItemID(raw.Get("id"))
	if err != nil {
		return model.FlashcardItem{}, err
	}
	front, err := model.ParseContentObject(raw.Get("front"))
	if err != nil {
		return model.FlashcardItem{}, fmt.Errorf("front: %w", err)
	}
	back, err := model.ParseContentObject(raw.Get("back"))
	if err != nil {
		return model.FlashcardItem{}, fmt.Errorf("back: %w", err)
	}
	return model.FlashcardItem{ID: id, Front: front, Back: back}, nil
}

func idHint(raw gjson.Result) string {
	id := raw.Get("id")
	switch id.Type {
	case gjson.String:
		return id.Str
	case gjson.Number:
		return id.Raw
	default:
		return ""
	}
}
