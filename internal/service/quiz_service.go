// internal/service/quiz_service.go
package service

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"

	"flashcard_quiz/internal/content"
	"flashcard_quiz/internal/model"
	"flashcard_quiz/internal/quiz"
)

// RenderedContent はカードの片面を表示用に変換したもの
type RenderedContent struct {
	Entries []content.Entry `json:"entries"`
	HTML    string          `json:"html"`
}

// CardView は現在のカード。答えは表示中のときだけ含める。
type CardView struct {
	ID            model.ItemID     `json:"id"`
	Collection    string           `json:"collection"`
	PromptSide    model.Side       `json:"prompt_side"`
	Prompt        RenderedContent  `json:"prompt"`
	AnswerVisible bool             `json:"answer_visible"`
	Answer        *RenderedContent `json:"answer,omitempty"`
}

// QuizView はクイズセッションの表示状態
type QuizView struct {
	SessionID string           `json:"session_id"`
	State     quiz.State       `json:"state"`
	Mode      model.ReviewMode `json:"mode"`
	Position  int              `json:"position"`
	Total     int              `json:"total"`
	Card      *CardView        `json:"card,omitempty"`
}

type QuizService interface {
	// Start は選択中のコレクションから新しいセッションを始める。
	// 対象アイテムがなければ model.ErrEmptySelection。
	Start(ctx context.Context) (*QuizView, error)
	Current(ctx context.Context, sessionID string) (*QuizView, error)
	Flip(ctx context.Context, sessionID string) (*QuizView, error)
	Next(ctx context.Context, sessionID string) (*QuizView, error)
	Restart(ctx context.Context, sessionID string) (*QuizView, error)
	Quit(ctx context.Context, sessionID string) error
}

// quizService は単一のセッションを保持し、操作を mu で直列化する
type quizService struct {
	library   LibraryService
	formatter *content.HTMLFormatter
	rng       *rand.Rand
	logger    *slog.Logger

	mu        sync.Mutex
	sessionID string
	engine    *quiz.Engine
}

func NewQuizService(library LibraryService, formatter *content.HTMLFormatter, rng *rand.Rand, logger *slog.Logger) QuizService {
	if logger == nil {
		logger = slog.Default()
	}
	if formatter == nil {
		formatter = content.NewHTMLFormatter(content.MathJaxTypesetter{}, logger)
	}
	s := &quizService{
		library:   library,
		formatter: formatter,
		rng:       rng,
		logger:    logger.With(slog.String("service", "quiz")),
	}
	library.OnChange(s.reload)
	return s
}

func (s *quizService) Start(ctx context.Context) (*QuizView, error) {
	items := s.library.WorkingItems()
	mode := s.library.Mode()
	if len(items) == 0 {
		s.logger.Warn("Quiz start requested with empty selection")
		return nil, model.NewAppError("EMPTY_SELECTION", "No items to review. Select at least one collection with items.", "", model.ErrEmptySelection)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	engine := quiz.NewEngine(mode, s.rng)
	engine.Start(items)
	s.engine = engine
	s.sessionID = uuid.NewString()

	s.logger.Info("Quiz session started",
		slog.String("session_id", s.sessionID),
		slog.Int("items", len(items)),
		slog.String("mode", mode.String()),
	)
	return s.viewLocked(), nil
}

func (s *quizService) Current(ctx context.Context, sessionID string) (*QuizView, error) {
	return s.act(sessionID, "current", nil)
}

func (s *quizService) Flip(ctx context.Context, sessionID string) (*QuizView, error) {
	return s.act(sessionID, "flip", (*quiz.Engine).ToggleAnswer)
}

func (s *quizService) Next(ctx context.Context, sessionID string) (*QuizView, error) {
	return s.act(sessionID, "next", (*quiz.Engine).Advance)
}

func (s *quizService) Restart(ctx context.Context, sessionID string) (*QuizView, error) {
	return s.act(sessionID, "restart", (*quiz.Engine).Restart)
}

func (s *quizService) Quit(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkSessionLocked(sessionID); err != nil {
		return err
	}
	s.engine.Quit()
	s.logger.Info("Quiz session discarded", slog.String("session_id", s.sessionID))
	s.engine = nil
	s.sessionID = ""
	return nil
}

func (s *quizService) act(sessionID, action string, fn func(*quiz.Engine)) (*QuizView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkSessionLocked(sessionID); err != nil {
		return nil, err
	}
	if fn != nil {
		fn(s.engine)
		s.logger.Debug("Quiz action applied",
			slog.String("session_id", s.sessionID),
			slog.String("action", action),
			slog.String("state", s.engine.State().String()),
		)
	}
	return s.viewLocked(), nil
}

// checkSessionLocked は sessionID が空なら現在のセッションを、そうでなければ一致を確認する
func (s *quizService) checkSessionLocked(sessionID string) error {
	if s.engine == nil {
		return model.NewAppError("NO_SESSION", "No quiz session is in progress.", "", model.ErrNoSession)
	}
	if sessionID != "" && sessionID != s.sessionID {
		return model.NewAppError("NO_SESSION", "The quiz session has ended or been replaced.", "session_id", model.ErrNoSession)
	}
	return nil
}

// reload は選択やモードが変わったとき進行中のセッションを作り直す
func (s *quizService) reload(items []model.WorkingItem, mode model.ReviewMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine == nil {
		return
	}
	s.engine.Load(items, mode)
	s.logger.Info("Quiz session reloaded after library change",
		slog.String("session_id", s.sessionID),
		slog.Int("items", len(items)),
		slog.String("mode", mode.String()),
	)
}

func (s *quizService) viewLocked() *QuizView {
	pos, total := s.engine.Progress()
	view := &QuizView{
		SessionID: s.sessionID,
		State:     s.engine.State(),
		Mode:      s.engine.Mode(),
		Position:  pos,
		Total:     total,
	}
	card, ok := s.engine.Current()
	if !ok {
		return view
	}
	view.Card = &CardView{
		ID:            card.Item.ID,
		Collection:    card.Item.SourceCollection,
		PromptSide:    card.PromptSide,
		Prompt:        s.render(card.Prompt),
		AnswerVisible: card.AnswerVisible,
	}
	if card.AnswerVisible {
		answer := s.render(card.Answer)
		view.Card.Answer = &answer
	}
	return view
}

func (s *quizService) render(obj model.ContentObject) RenderedContent {
	entries := content.Render(obj)
	return RenderedContent{
		Entries: entries,
		HTML:    s.formatter.Entries(entries),
	}
}
