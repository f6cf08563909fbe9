// internal/model/content.go
package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// ValueKind はContentValueの種類
type ValueKind int

const (
	ValueAbsent ValueKind = iota // JSON null
	ValueScalar
	ValueList
)

// ContentValue は見出しに対応する値。null・スカラー・スカラーのリストのいずれか。
// 数値と真偽値はJSONの表記のまま文字列として保持する。
type ContentValue struct {
	kind   ValueKind
	scalar string
	list   []string
}

func AbsentValue() ContentValue { return ContentValue{kind: ValueAbsent} }

func ScalarValue(s string) ContentValue { return ContentValue{kind: ValueScalar, scalar: s} }

func ListValue(items ...string) ContentValue {
	if items == nil {
		items = []string{}
	}
	return ContentValue{kind: ValueList, list: items}
}

func (v ContentValue) Kind() ValueKind { return v.kind }

func (v ContentValue) Scalar() string { return v.scalar }

// List はリストのコピーを返す
func (v ContentValue) List() []string {
	out := make([]string, len(v.list))
	copy(out, v.list)
	return out
}

func (v ContentValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case ValueScalar:
		return json.Marshal(v.scalar)
	case ValueList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	default:
		return []byte("null"), nil
	}
}

func (v *ContentValue) UnmarshalJSON(data []byte) error {
	parsed, err := ParseContentValue(gjson.ParseBytes(data))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ParseContentValue はgjsonの値をContentValueに変換する。
// オブジェクトや、スカラー以外を含む配列はスキーマエラー。
func ParseContentValue(res gjson.Result) (ContentValue, error) {
	if res.IsObject() {
		return ContentValue{}, fmt.Errorf("%w: nested objects are not allowed", ErrSchema)
	}
	if res.IsArray() {
		items := []string{}
		var elemErr error
		res.ForEach(func(_, elem gjson.Result) bool {
			s, ok := scalarText(elem)
			if !ok {
				elemErr = fmt.Errorf("%w: list elements must be strings, numbers or booleans", ErrSchema)
				return false
			}
			items = append(items, s)
			return true
		})
		if elemErr != nil {
			return ContentValue{}, elemErr
		}
		return ListValue(items...), nil
	}
	if res.Type == gjson.Null {
		return AbsentValue(), nil
	}
	s, ok := scalarText(res)
	if !ok {
		return ContentValue{}, fmt.Errorf("%w: unsupported value %q", ErrSchema, res.Raw)
	}
	return ScalarValue(s), nil
}

func scalarText(res gjson.Result) (string, bool) {
	switch res.Type {
	case gjson.String:
		return res.Str, true
	case gjson.Number, gjson.True, gjson.False:
		return res.Raw, true
	default:
		return "", false
	}
}

// ContentField は見出しと値の組
type ContentField struct {
	Heading string
	Value   ContentValue
}

// ContentObject はキーの順序を保った見出しと値の並び
type ContentObject []ContentField

func (c ContentObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Heading)
		if err != nil {
			return nil, err
		}
		val, err := f.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (c *ContentObject) UnmarshalJSON(data []byte) error {
	parsed, err := ParseContentObject(gjson.ParseBytes(data))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseContentObject はJSONオブジェクトをキー順のままContentObjectに変換する。
// 同じキーが重複した場合は最初の位置に最後の値を採用する。
func ParseContentObject(res gjson.Result) (ContentObject, error) {
	if !res.IsObject() {
		return nil, fmt.Errorf("%w: content must be an object", ErrSchema)
	}
	obj := ContentObject{}
	index := map[string]int{}
	var fieldErr error
	res.ForEach(func(key, value gjson.Result) bool {
		v, err := ParseContentValue(value)
		if err != nil {
			fieldErr = fmt.Errorf("field %q: %w", key.Str, err)
			return false
		}
		if i, ok := index[key.Str]; ok {
			obj[i].Value = v
			return true
		}
		index[key.Str] = len(obj)
		obj = append(obj, ContentField{Heading: key.Str, Value: v})
		return true
	})
	if fieldErr != nil {
		return nil, fieldErr
	}
	return obj, nil
}
