// Package quiz はフラッシュカードの出題順と表示状態を管理するセッションエンジン。
// 状態遷移は同期的でロックを持たない。呼び出し側が操作を直列化する。
package quiz

import (
	"fmt"
	"math/rand/v2"
	"time"

	"flashcard_quiz/internal/model"
)

// State はセッションの状態
type State int

const (
	StateEmpty    State = iota // セッションなし、またはアイテムが0件
	StateActive                // 出題中 (答えは非表示)
	StateFlipped               // 出題中 (答えを表示)
	StateFinished              // 最後のカードを過ぎた
)

var stateNames = [...]string{
	StateEmpty:    "empty",
	StateActive:   "active",
	StateFlipped:  "flipped",
	StateFinished: "finished",
}

func (s State) String() string {
	if s >= StateEmpty && s <= StateFinished {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Card は現在のカードの表示内容
type Card struct {
	Item          model.WorkingItem
	PromptSide    model.Side
	Prompt        model.ContentObject
	Answer        model.ContentObject
	AnswerVisible bool
	Position      int // 1始まり
	Total         int
}

// Engine は一つのクイズセッションを表す
type Engine struct {
	items []model.WorkingItem // 元のアイテム列 (再シャッフル用)
	mode  model.ReviewMode
	rng   *rand.Rand
	draw  func() model.Side // random モードでカードごとに一度呼ぶ
	state model.SessionState
}

// NewEngine はエンジンを作る。rng が nil なら時刻で初期化した乱数を使う。
func NewEngine(mode model.ReviewMode, rng *rand.Rand) *Engine {
	if !mode.IsValid() {
		mode = model.DefaultReviewMode
	}
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	e := &Engine{mode: mode, rng: rng}
	e.draw = e.drawSide
	return e
}

// ComputePromptSide はモードから問題として出す面を決める。
// random のときだけ draw を一度呼ぶ。
func ComputePromptSide(index int, mode model.ReviewMode, draw func() model.Side) model.Side {
	switch mode {
	case model.ModeBackToFront:
		return model.SideBack
	case model.ModeRandom:
		return draw()
	default:
		return model.SideFront
	}
}

// Shuffle は items のコピーを rng で一様に並べ替えて返す
func Shuffle(items []model.WorkingItem, rng *rand.Rand) []model.WorkingItem {
	out := make([]model.WorkingItem, len(items))
	copy(out, items)
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// Start は items を元に新しいセッションを始める。
// 空の場合はエラーにせず Empty 状態になる。
func (e *Engine) Start(items []model.WorkingItem) {
	e.items = make([]model.WorkingItem, len(items))
	copy(e.items, items)
	e.begin()
}

// Load はアイテム列とモードを差し替えて新しいセッションを始める
func (e *Engine) Load(items []model.WorkingItem, mode model.ReviewMode) {
	if mode.IsValid() {
		e.mode = mode
	}
	e.Start(items)
}

// Restart は同じアイテム列を並べ替え直して最初から始める
func (e *Engine) Restart() {
	if len(e.items) == 0 {
		return
	}
	e.begin()
}

// ToggleAnswer は答えの表示を切り替える。出題中以外は何もしない。
func (e *Engine) ToggleAnswer() {
	if !e.inProgress() {
		return
	}
	e.state.AnswerVisible = !e.state.AnswerVisible
}

// Advance は次のカードへ進む。最後のカードなら Finished になる。
func (e *Engine) Advance() {
	if !e.inProgress() {
		return
	}
	next := e.state.CurrentIndex + 1
	if next >= len(e.state.OrderedItems) {
		e.state.Finished = true
		e.state.AnswerVisible = false
		return
	}
	e.state.CurrentIndex = next
	e.state.PromptSide = ComputePromptSide(next, e.mode, e.draw)
	e.state.AnswerVisible = false
}

// Quit はセッションを破棄する
func (e *Engine) Quit() {
	e.items = nil
	e.state = model.SessionState{}
}

func (e *Engine) State() State {
	switch {
	case len(e.state.OrderedItems) == 0:
		return StateEmpty
	case e.state.Finished:
		return StateFinished
	case e.state.AnswerVisible:
		return StateFlipped
	default:
		return StateActive
	}
}

func (e *Engine) Mode() model.ReviewMode { return e.mode }

// Len は出題対象のアイテム数
func (e *Engine) Len() int { return len(e.state.OrderedItems) }

// Progress は1始まりの現在位置と総数を返す。終了後は総数と総数。
func (e *Engine) Progress() (position, total int) {
	total = len(e.state.OrderedItems)
	switch {
	case total == 0:
		return 0, 0
	case e.state.Finished:
		return total, total
	default:
		return e.state.CurrentIndex + 1, total
	}
}

// Current は現在のカードを返す。出題中でなければ false。
func (e *Engine) Current() (Card, bool) {
	if !e.inProgress() {
		return Card{}, false
	}
	item := e.state.OrderedItems[e.state.CurrentIndex]
	pos, total := e.Progress()
	return Card{
		Item:          item,
		PromptSide:    e.state.PromptSide,
		Prompt:        item.Side(e.state.PromptSide),
		Answer:        item.Side(e.state.PromptSide.Opposite()),
		AnswerVisible: e.state.AnswerVisible,
		Position:      pos,
		Total:         total,
	}, true
}

// Snapshot は状態のコピーを返す
func (e *Engine) Snapshot() model.SessionState {
	s := e.state
	s.OrderedItems = make([]model.WorkingItem, len(e.state.OrderedItems))
	copy(s.OrderedItems, e.state.OrderedItems)
	return s
}

func (e *Engine) begin() {
	if len(e.items) == 0 {
		e.state = model.SessionState{}
		return
	}
	e.state = model.SessionState{
		OrderedItems: Shuffle(e.items, e.rng),
		CurrentIndex: 0,
	}
	e.state.PromptSide = ComputePromptSide(0, e.mode, e.draw)
}

func (e *Engine) inProgress() bool {
	return len(e.state.OrderedItems) > 0 && !e.state.Finished
}

func (e *Engine) drawSide() model.Side {
	if e.rng.IntN(2) == 0 {
		return model.SideFront
	}
	return model.SideBack
}
