// internal/ingest/ingest_test.go
package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flashcard_quiz/internal/model"
)

func TestParse_ValidCollection(t *testing.T) {
	data := []byte(`[
		{"id": 1, "front": {"Term": "Mitosis"}, "back": {"Steps": ["Prophase", "Metaphase"], "Note": null}},
		{"id": "two", "front": {"Q": "$E=mc^2$"}, "back": {"A": "energy"}}
	]`)

	col, report, err := Parse("biology.json", data)
	require.NoError(t, err)
	assert.Equal(t, "biology.json", col.Name)
	require.Len(t, col.Items, 2)

	assert.True(t, col.Items[0].ID.IsNumber())
	assert.Equal(t, "1", col.Items[0].ID.String())
	assert.Equal(t, "Steps", col.Items[0].Back[0].Heading)
	assert.Equal(t, model.ValueAbsent, col.Items[0].Back[1].Value.Kind())
	assert.Equal(t, model.StringID("two"), col.Items[1].ID)

	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 2, report.Accepted)
	assert.Empty(t, report.Dropped)
}

func TestParse_DropsInvalidItems(t *testing.T) {
	data := []byte(`[
		{"id": 1, "front": {"a": "x"}, "back": {"b": "y"}},
		{"front": {"a": "x"}, "back": {"b": "y"}},
		{"id": null, "front": {}, "back": {}},
		{"id": "", "front": {}, "back": {}},
		{"id": 2, "front": "text", "back": {}},
		{"id": 3, "front": {"a": {"nested": true}}, "back": {}},
		{"id": 4, "front": {}, "back": null},
		{"id": 1, "front": {"dup": "x"}, "back": {}},
		"not an object",
		{"id": "1", "front": {}, "back": {}}
	]`)

	col, report, err := Parse("mixed.json", data)
	require.NoError(t, err)

	// 数値の1と文字列の"1"は別のID
	require.Len(t, col.Items, 2)
	assert.Equal(t, model.NumberID("1"), col.Items[0].ID)
	assert.Equal(t, "x", col.Items[0].Front[0].Value.Scalar(), "重複時は先のアイテムを残す")
	assert.Equal(t, model.StringID("1"), col.Items[1].ID)

	assert.Equal(t, 10, report.Total)
	assert.Equal(t, 2, report.Accepted)
	require.Len(t, report.Dropped, 8)

	indexes := make([]int, 0, len(report.Dropped))
	for _, d := range report.Dropped {
		indexes = append(indexes, d.Index)
		assert.NotEmpty(t, d.Reason)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, indexes)
	assert.Equal(t, "1", report.Dropped[6].ID)
	assert.Contains(t, report.Dropped[6].Reason, "duplicate")
}

func TestParse_SchemaErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "JSONではない", data: `{not json`},
		{name: "トップレベルがオブジェクト", data: `{"id": 1}`},
		{name: "空の配列", data: `[]`},
		{name: "有効なアイテムがない", data: `[{"id": null, "front": {}, "back": {}}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse("deck.json", []byte(tt.data))
			assert.ErrorIs(t, err, model.ErrSchema)
		})
	}
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("deck.json"))
	assert.NoError(t, ValidateName("日本語の単語帳"))
	for _, bad := range []string{"", "   ", "a/b", `a\b`} {
		assert.ErrorIs(t, ValidateName(bad), model.ErrInvalidInput, bad)
	}

	_, _, err := Parse("", []byte(`[{"id":1,"front":{},"back":{}}]`))
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}
