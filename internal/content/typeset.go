// internal/content/typeset.go
package content

import (
	"errors"
	"html"
	"strings"
)

var (
	ErrUnbalancedBraces = errors.New("unbalanced braces in math source")
	ErrForbiddenMarkup  = errors.New("math source contains delimiter markup")
)

// Typesetter は数式のソースをHTMLに組版する
type Typesetter interface {
	Typeset(src string, display bool) (string, error)
}

// MathJaxTypesetter はブラウザ側のMathJaxが処理するマークアップを出力する
type MathJaxTypesetter struct{}

var _ Typesetter = MathJaxTypesetter{}

func (MathJaxTypesetter) Typeset(src string, display bool) (string, error) {
	if err := checkMathSource(src); err != nil {
		return "", err
	}
	escaped := html.EscapeString(src)
	if display {
		return `<span class="math display">\[` + escaped + `\]</span>`, nil
	}
	return `<span class="math inline">\(` + escaped + `\)</span>`, nil
}

// checkMathSource は波括弧の対応とMathJaxの区切り記号の混入を調べる
func checkMathSource(src string) error {
	depth := 0
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '\\':
			if i+1 < len(src) {
				switch src[i+1] {
				case '(', ')', '[', ']':
					return ErrForbiddenMarkup
				}
			}
			i++
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return ErrUnbalancedBraces
			}
		}
	}
	if depth != 0 {
		return ErrUnbalancedBraces
	}
	if strings.ContainsRune(src, 0) {
		return ErrForbiddenMarkup
	}
	return nil
}
