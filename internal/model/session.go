// internal/model/session.go
package model

import (
	"encoding"
	"encoding/json"
	"fmt"
)

// ReviewMode は各カードでどちらの面を問題として出すかを決める
type ReviewMode int

const (
	ModeFrontToBack ReviewMode = iota + 1 // 表 → 裏
	ModeBackToFront                       // 裏 → 表
	ModeRandom                            // カードごとにランダム
)

// DefaultReviewMode は未設定時のモード
const DefaultReviewMode = ModeFrontToBack

var (
	reviewModeNames  = [...]string{ModeFrontToBack: "front-to-back", ModeBackToFront: "back-to-front", ModeRandom: "random"}
	reviewModeByName = map[string]ReviewMode{
		"front-to-back": ModeFrontToBack,
		"back-to-front": ModeBackToFront,
		"random":        ModeRandom,
	}
)

var (
	_ fmt.Stringer             = ReviewMode(0)
	_ json.Marshaler           = ReviewMode(0)
	_ json.Unmarshaler         = (*ReviewMode)(nil)
	_ encoding.TextMarshaler   = ReviewMode(0)
	_ encoding.TextUnmarshaler = (*ReviewMode)(nil)
)

// ParseReviewMode は "front-to-back" / "back-to-front" / "random" を解釈する
func ParseReviewMode(s string) (ReviewMode, error) {
	m, ok := reviewModeByName[s]
	if !ok {
		return 0, fmt.Errorf("%w: unknown review mode %q", ErrInvalidInput, s)
	}
	return m, nil
}

// ReviewModeNames は有効なモード名を定義順で返す
func ReviewModeNames() []string {
	return []string{
		reviewModeNames[ModeFrontToBack],
		reviewModeNames[ModeBackToFront],
		reviewModeNames[ModeRandom],
	}
}

func (m ReviewMode) String() string {
	if m.IsValid() {
		return reviewModeNames[m]
	}
	return fmt.Sprintf("ReviewMode(%d)", int(m))
}

func (m ReviewMode) IsValid() bool {
	return m >= ModeFrontToBack && m <= ModeRandom
}

func (m ReviewMode) MarshalText() ([]byte, error) {
	if !m.IsValid() {
		return nil, fmt.Errorf("%w: review mode %d", ErrInvalidInput, int(m))
	}
	return []byte(reviewModeNames[m]), nil
}

func (m *ReviewMode) UnmarshalText(text []byte) error {
	v, err := ParseReviewMode(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

func (m ReviewMode) MarshalJSON() ([]byte, error) {
	text, err := m.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

func (m *ReviewMode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: review mode must be a string", ErrInvalidInput)
	}
	return m.UnmarshalText([]byte(s))
}

// Side はカードの面
type Side int

const (
	SideFront Side = iota + 1
	SideBack
)

var (
	sideNames  = [...]string{SideFront: "front", SideBack: "back"}
	sideByName = map[string]Side{"front": SideFront, "back": SideBack}
)

var (
	_ fmt.Stringer             = Side(0)
	_ json.Marshaler           = Side(0)
	_ json.Unmarshaler         = (*Side)(nil)
	_ encoding.TextMarshaler   = Side(0)
	_ encoding.TextUnmarshaler = (*Side)(nil)
)

func (s Side) String() string {
	if s.IsValid() {
		return sideNames[s]
	}
	return fmt.Sprintf("Side(%d)", int(s))
}

func (s Side) IsValid() bool {
	return s == SideFront || s == SideBack
}

// Opposite は反対の面
func (s Side) Opposite() Side {
	if s == SideBack {
		return SideFront
	}
	return SideBack
}

func (s Side) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("%w: side %d", ErrInvalidInput, int(s))
	}
	return []byte(sideNames[s]), nil
}

func (s *Side) UnmarshalText(text []byte) error {
	v, ok := sideByName[string(text)]
	if !ok {
		return fmt.Errorf("%w: unknown side %q", ErrInvalidInput, text)
	}
	*s = v
	return nil
}

func (s Side) MarshalJSON() ([]byte, error) {
	text, err := s.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

func (s *Side) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("%w: side must be a string", ErrInvalidInput)
	}
	return s.UnmarshalText([]byte(str))
}

// SessionState はクイズセッションの状態。
// Finished が false の間は 0 <= CurrentIndex < len(OrderedItems)。
type SessionState struct {
	OrderedItems  []WorkingItem `json:"ordered_items"`
	CurrentIndex  int           `json:"current_index"`
	PromptSide    Side          `json:"prompt_side"`
	AnswerVisible bool          `json:"answer_visible"`
	Finished      bool          `json:"finished"`
}
