// internal/content/segment_test.go
package content

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Segment
	}{
		{
			name:  "数式なし",
			input: "no math here",
			want:  []Segment{Text("no math here")},
		},
		{
			name:  "空文字列",
			input: "",
			want:  []Segment{},
		},
		{
			name:  "インライン数式",
			input: "Energy: $E=mc^2$ total",
			want:  []Segment{Text("Energy: "), InlineMath("E=mc^2"), Text(" total")},
		},
		{
			name:  "ブロック数式のみ",
			input: "$$a^2+b^2=c^2$$",
			want:  []Segment{DisplayMath("a^2+b^2=c^2")},
		},
		{
			name:  "インラインとブロックの混在",
			input: "$x$ and $$y$$",
			want:  []Segment{InlineMath("x"), Text(" and "), DisplayMath("y")},
		},
		{
			name:  "インラインの直後にブロック",
			input: "$a$$$b$$",
			want:  []Segment{InlineMath("a"), DisplayMath("b")},
		},
		{
			name:  "閉じられない $ はテキスト",
			input: "costs $5",
			want:  []Segment{Text("costs $5")},
		},
		{
			name:  "エスケープされた $ は区切りにならない",
			input: `price \$5 and \$6`,
			want:  []Segment{Text(`price \$5 and \$6`)},
		},
		{
			name:  "数式内のエスケープされた $ はそのまま残る",
			input: `$a \$ b$`,
			want:  []Segment{InlineMath(`a \$ b`)},
		},
		{
			name:  "空の $$ はテキスト",
			input: "a $$ b",
			want:  []Segment{Text("a $$ b")},
		},
		{
			name:  "空のブロック $$$$ はテキスト",
			input: "$$$$",
			want:  []Segment{Text("$$$$")},
		},
		{
			name:  "ブロック内の単独 $ で閉じられない",
			input: "$$a$b$$",
			want:  []Segment{Text("$$a"), InlineMath("b"), Text("$")},
		},
		{
			name:  "エスケープされたバックスラッシュの後の $ は区切り",
			input: `\\$x$`,
			want:  []Segment{Text(`\\`), InlineMath("x")},
		},
		{
			name:  "末尾のバックスラッシュ",
			input: `tail\`,
			want:  []Segment{Text(`tail\`)},
		},
		{
			name:  "マルチバイト文字",
			input: "面積は $\\pi r^2$ です",
			want:  []Segment{Text("面積は "), InlineMath(`\pi r^2`), Text(" です")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SegmentText(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.input, plainText(got), "セグメントを連結すると元の文字列に戻る")
		})
	}
}

func TestSegmentText_NoAdjacentTextSegments(t *testing.T) {
	inputs := []string{
		"$ $$ $$$ $",
		"a$b$$c$$$d$$$$e",
		`\$$x$\$`,
		strings.Repeat("$a", 50),
	}
	for _, in := range inputs {
		segs := SegmentText(in)
		for i := 1; i < len(segs); i++ {
			assert.False(t, segs[i-1].Kind == KindText && segs[i].Kind == KindText, "input %q", in)
		}
		for _, s := range segs {
			if s.Kind == KindMath {
				assert.NotEmpty(t, s.Value, "input %q", in)
			}
		}
		assert.Equal(t, in, plainText(segs))
	}
}

func TestSegmentText_OutputIsLinear(t *testing.T) {
	in := strings.Repeat("x $y$ ", 10000)
	segs := SegmentText(in)
	require.Len(t, segs, 20001)
	assert.Equal(t, InlineMath("y"), segs[1])
}

func TestLiteral(t *testing.T) {
	assert.Equal(t, "plain", Literal(Text("plain")))
	assert.Equal(t, "$x^2$", Literal(InlineMath("x^2")))
	assert.Equal(t, "$$x^2$$", Literal(DisplayMath("x^2")))
}

func TestSegment_JSON(t *testing.T) {
	b, err := json.Marshal([]Segment{Text("a"), DisplayMath("b")})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"kind":"text","value":"a"},{"kind":"math","value":"b","display":true}]`, string(b))
}
