// internal/model/model_test.go
package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentObject_KeepsKeyOrder(t *testing.T) {
	raw := `{"zeta":"z","alpha":["a","b"],"mid":null,"n":3,"flag":true}`

	var obj ContentObject
	require.NoError(t, json.Unmarshal([]byte(raw), &obj))

	headings := make([]string, 0, len(obj))
	for _, f := range obj {
		headings = append(headings, f.Heading)
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid", "n", "flag"}, headings)
	assert.Equal(t, ValueScalar, obj[0].Value.Kind())
	assert.Equal(t, []string{"a", "b"}, obj[1].Value.List())
	assert.Equal(t, ValueAbsent, obj[2].Value.Kind())
	assert.Equal(t, "3", obj[3].Value.Scalar())
	assert.Equal(t, "true", obj[4].Value.Scalar())

	out, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":"z","alpha":["a","b"],"mid":null,"n":"3","flag":"true"}`, string(out))
}

func TestContentObject_EmptyListAndEmptyObject(t *testing.T) {
	var obj ContentObject
	require.NoError(t, json.Unmarshal([]byte(`{"Examples":[]}`), &obj))
	require.Len(t, obj, 1)
	assert.Equal(t, ValueList, obj[0].Value.Kind())
	assert.Empty(t, obj[0].Value.List())

	out, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Examples":[]}`, string(out))

	var empty ContentObject
	require.NoError(t, json.Unmarshal([]byte(`{}`), &empty))
	assert.Empty(t, empty)
	out, err = json.Marshal(empty)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(out))
}

func TestContentObject_RejectsInvalidShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "配列", raw: `["a"]`},
		{name: "ネストしたオブジェクト", raw: `{"a":{"b":1}}`},
		{name: "リスト内のオブジェクト", raw: `{"a":[{"b":1}]}`},
		{name: "リスト内のnull", raw: `{"a":[null]}`},
		{name: "ネストした配列", raw: `{"a":[["b"]]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var obj ContentObject
			err := json.Unmarshal([]byte(tt.raw), &obj)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrSchema), "got %v", err)
		})
	}
}

func TestItemID_PreservesKind(t *testing.T) {
	var item FlashcardItem
	require.NoError(t, json.Unmarshal([]byte(`{"id":42,"front":{},"back":{}}`), &item))
	assert.True(t, item.ID.IsNumber())
	assert.Equal(t, "42", item.ID.String())

	out, err := json.Marshal(item.ID)
	require.NoError(t, err)
	assert.Equal(t, "42", string(out))

	var str ItemID
	require.NoError(t, json.Unmarshal([]byte(`"42"`), &str))
	assert.False(t, str.IsNumber())
	assert.NotEqual(t, item.ID, str)

	out, err = json.Marshal(str)
	require.NoError(t, err)
	assert.Equal(t, `"42"`, string(out))

	for _, bad := range []string{`null`, `""`, `true`, `{}`} {
		var id ItemID
		err := json.Unmarshal([]byte(bad), &id)
		assert.ErrorIs(t, err, ErrSchema, bad)
	}
}

func TestReviewMode_TextRoundTrip(t *testing.T) {
	for _, name := range ReviewModeNames() {
		m, err := ParseReviewMode(name)
		require.NoError(t, err)
		assert.Equal(t, name, m.String())

		b, err := json.Marshal(m)
		require.NoError(t, err)
		var back ReviewMode
		require.NoError(t, json.Unmarshal(b, &back))
		assert.Equal(t, m, back)
	}

	_, err := ParseReviewMode("sideways")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "ReviewMode(0)", ReviewMode(0).String())
	assert.Equal(t, ModeFrontToBack, DefaultReviewMode)
}

func TestSide_Opposite(t *testing.T) {
	assert.Equal(t, SideBack, SideFront.Opposite())
	assert.Equal(t, SideFront, SideBack.Opposite())

	b, err := json.Marshal(SideBack)
	require.NoError(t, err)
	assert.Equal(t, `"back"`, string(b))
}

func TestAppError_Unwrap(t *testing.T) {
	err := NewAppError("EMPTY_SELECTION", "nothing to review", "", ErrEmptySelection)
	assert.ErrorIs(t, err, ErrEmptySelection)
	assert.Equal(t, "EMPTY_SELECTION", err.Detail.Code)
}
