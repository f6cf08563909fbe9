// internal/model/item.go
package model

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// ItemID はファイルに書かれた通りの文字列または数値のID。
// 比較可能なのでmapのキーとして使える。
type ItemID struct {
	value    string
	isNumber bool
}

// StringID は文字列IDを作る
func StringID(s string) ItemID {
	return ItemID{value: s}
}

// NumberID は数値IDを作る。raw はJSONの数値リテラルそのまま。
func NumberID(raw string) ItemID {
	return ItemID{value: raw, isNumber: true}
}

func (id ItemID) String() string { return id.value }

func (id ItemID) IsNumber() bool { return id.isNumber }

func (id ItemID) IsZero() bool { return id == ItemID{} }

func (id ItemID) MarshalJSON() ([]byte, error) {
	if id.isNumber {
		return []byte(id.value), nil
	}
	return json.Marshal(id.value)
}

func (id *ItemID) UnmarshalJSON(data []byte) error {
	parsed, err := ParseItemID(gjson.ParseBytes(data))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParseItemID はgjsonの値からIDを取り出す。null・空文字・数値以外の型はスキーマエラー。
func ParseItemID(res gjson.Result) (ItemID, error) {
	switch res.Type {
	case gjson.String:
		if res.Str == "" {
			return ItemID{}, fmt.Errorf("%w: id must not be empty", ErrSchema)
		}
		return StringID(res.Str), nil
	case gjson.Number:
		return NumberID(res.Raw), nil
	case gjson.Null:
		if res.Exists() {
			return ItemID{}, fmt.Errorf("%w: id must not be null", ErrSchema)
		}
		return ItemID{}, fmt.Errorf("%w: id is missing", ErrSchema)
	default:
		return ItemID{}, fmt.Errorf("%w: id must be a string or number", ErrSchema)
	}
}

// FlashcardItem は取り込み後に変更されないカード一枚分
type FlashcardItem struct {
	ID    ItemID        `json:"id"`
	Front ContentObject `json:"front"`
	Back  ContentObject `json:"back"`
}

// Collection は名前付きのアイテム集合
type Collection struct {
	Name  string          `json:"name"`
	Items []FlashcardItem `json:"items"`
}

// WorkingItem は選択から平坦化されたクイズ対象のアイテム
type WorkingItem struct {
	ID               ItemID        `json:"id"`
	SourceCollection string        `json:"collection"`
	Front            ContentObject `json:"front"`
	Back             ContentObject `json:"back"`
}

// Side は指定した面の内容を返す
func (w WorkingItem) Side(s Side) ContentObject {
	if s == SideBack {
		return w.Back
	}
	return w.Front
}

// CollectionSummary は一覧表示用の件数情報
type CollectionSummary struct {
	Name      string `json:"name"`
	ItemCount int    `json:"item_count"`
	Selected  bool   `json:"selected"`
}
