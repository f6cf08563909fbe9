// internal/service/library_service.go
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tidwall/gjson"
	"gorm.io/gorm"

	"flashcard_quiz/internal/ingest"
	"flashcard_quiz/internal/model"
	"flashcard_quiz/internal/repository"
)

// ChangeListener は選択・モード・コレクションが変わったときに呼ばれる
type ChangeListener func(items []model.WorkingItem, mode model.ReviewMode)

type LibraryService interface {
	// Load は保存済みのコレクションとモードを読み込み、全コレクションを選択状態にする。
	// 壊れたデータは破棄して既定値で続行する。
	Load(ctx context.Context) error
	Import(ctx context.Context, name string, data []byte) (*ingest.Report, error)
	Remove(ctx context.Context, name string) error
	RemoveAll(ctx context.Context) error
	Select(ctx context.Context, names []string) error
	SetMode(ctx context.Context, mode model.ReviewMode) error

	Overview() *model.LibraryOverview
	Mode() model.ReviewMode
	WorkingItems() []model.WorkingItem
	OnChange(fn ChangeListener)
}

type libraryService struct {
	db      *gorm.DB
	kvStore repository.KVStore
	logger  *slog.Logger

	mu          sync.RWMutex
	collections []model.Collection // 登録順
	selected    map[string]bool
	mode        model.ReviewMode
	listeners   []ChangeListener
}

func NewLibraryService(db *gorm.DB, kvStore repository.KVStore, logger *slog.Logger) LibraryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &libraryService{
		db:       db,
		kvStore:  kvStore,
		logger:   logger.With(slog.String("service", "library")),
		selected: map[string]bool{},
		mode:     model.DefaultReviewMode,
	}
}

func (s *libraryService) Load(ctx context.Context) error {
	collections, err := s.loadCollections(ctx)
	if err != nil {
		return err
	}
	mode, err := s.loadMode(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.collections = collections
	s.mode = mode
	s.selected = map[string]bool{}
	for _, c := range collections {
		s.selected[c.Name] = true
	}
	s.mu.Unlock()

	s.logger.Info("Library loaded",
		slog.Int("collections", len(collections)),
		slog.String("mode", mode.String()),
	)
	s.notify()
	return nil
}

func (s *libraryService) loadCollections(ctx context.Context) ([]model.Collection, error) {
	raw, err := s.kvStore.Get(ctx, s.db, model.KeyQuizData)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, nil
		}
		s.logger.Error("Error reading stored collections", slog.Any("error", err))
		return nil, model.ErrInternalServer
	}

	collections, err := decodeCollections(raw)
	if err != nil {
		s.logger.Error("Stored collections are corrupt, discarding", slog.Any("error", err))
		if delErr := s.kvStore.Delete(ctx, s.db, model.KeyQuizData); delErr != nil {
			s.logger.Error("Error clearing corrupt collections", slog.Any("error", delErr))
		}
		return nil, nil
	}
	return collections, nil
}

func (s *libraryService) loadMode(ctx context.Context) (model.ReviewMode, error) {
	raw, err := s.kvStore.Get(ctx, s.db, model.KeyQuizMode)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.DefaultReviewMode, nil
		}
		s.logger.Error("Error reading stored review mode", slog.Any("error", err))
		return 0, model.ErrInternalServer
	}
	mode, err := model.ParseReviewMode(raw)
	if err != nil {
		s.logger.Warn("Invalid review mode in storage, using default",
			slog.String("stored", raw),
			slog.String("default", model.DefaultReviewMode.String()),
		)
		if delErr := s.kvStore.Delete(ctx, s.db, model.KeyQuizMode); delErr != nil {
			s.logger.Error("Error clearing invalid review mode", slog.Any("error", delErr))
		}
		return model.DefaultReviewMode, nil
	}
	return mode, nil
}

func (s *libraryService) Import(ctx context.Context, name string, data []byte) (*ingest.Report, error) {
	col, report, err := ingest.Parse(name, data)
	if err != nil {
		s.logger.Warn("Rejected collection upload", slog.String("collection", name), slog.Any("error", err))
		return &report, err
	}
	for _, d := range report.Dropped {
		s.logger.Warn("Dropped invalid item",
			slog.String("collection", name),
			slog.Int("index", d.Index),
			slog.String("id", d.ID),
			slog.String("reason", d.Reason),
		)
	}

	s.mu.Lock()
	next := replaceCollection(s.collections, col)
	err = s.save(ctx, next, s.mode, true)
	if err == nil {
		s.collections = next
		s.selected[col.Name] = true
	}
	s.mu.Unlock()
	if err != nil {
		return &report, err
	}

	s.logger.Info("Collection imported",
		slog.String("collection", name),
		slog.Int("accepted", report.Accepted),
		slog.Int("dropped", len(report.Dropped)),
	)
	s.notify()
	return &report, nil
}

func (s *libraryService) Remove(ctx context.Context, name string) error {
	s.mu.Lock()
	idx := indexOf(s.collections, name)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: collection %q", model.ErrNotFound, name)
	}
	next := make([]model.Collection, 0, len(s.collections)-1)
	next = append(next, s.collections[:idx]...)
	next = append(next, s.collections[idx+1:]...)

	err := s.save(ctx, next, s.mode, false)
	if err == nil {
		s.collections = next
		delete(s.selected, name)
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.logger.Info("Collection removed", slog.String("collection", name))
	s.notify()
	return nil
}

func (s *libraryService) RemoveAll(ctx context.Context) error {
	s.mu.Lock()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.kvStore.Delete(ctx, tx, model.KeyQuizData); err != nil {
			return err
		}
		return s.kvStore.Delete(ctx, tx, model.KeyQuizMode)
	})
	if err == nil {
		s.collections = nil
		s.selected = map[string]bool{}
		s.mode = model.DefaultReviewMode
	}
	s.mu.Unlock()
	if err != nil {
		s.logger.Error("Error removing all data", slog.Any("error", err))
		return model.ErrInternalServer
	}

	s.logger.Info("All collections removed, review mode reset")
	s.notify()
	return nil
}

func (s *libraryService) Select(ctx context.Context, names []string) error {
	s.mu.Lock()
	next := map[string]bool{}
	for _, n := range names {
		if indexOf(s.collections, n) < 0 {
			s.mu.Unlock()
			return fmt.Errorf("%w: collection %q", model.ErrNotFound, n)
		}
		next[n] = true
	}
	s.selected = next
	s.mu.Unlock()

	s.logger.Info("Selection changed", slog.Int("selected", len(next)))
	s.notify()
	return nil
}

func (s *libraryService) SetMode(ctx context.Context, mode model.ReviewMode) error {
	if !mode.IsValid() {
		return fmt.Errorf("%w: review mode", model.ErrInvalidInput)
	}
	s.mu.Lock()
	err := s.kvStore.Set(ctx, s.db, model.KeyQuizMode, mode.String())
	if err == nil {
		s.mode = mode
	}
	s.mu.Unlock()
	if err != nil {
		s.logger.Error("Error saving review mode", slog.Any("error", err))
		return model.ErrInternalServer
	}

	s.logger.Info("Review mode changed", slog.String("mode", mode.String()))
	s.notify()
	return nil
}

func (s *libraryService) Overview() *model.LibraryOverview {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ov := &model.LibraryOverview{
		Collections: make([]model.CollectionSummary, 0, len(s.collections)),
		Selected:    []string{},
		Mode:        s.mode,
	}
	for _, c := range s.collections {
		sel := s.selected[c.Name]
		ov.Collections = append(ov.Collections, model.CollectionSummary{
			Name:      c.Name,
			ItemCount: len(c.Items),
			Selected:  sel,
		})
		if sel {
			ov.Selected = append(ov.Selected, c.Name)
			ov.SelectedItemCount += len(c.Items)
		}
	}
	return ov
}

func (s *libraryService) Mode() model.ReviewMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// WorkingItems は選択中のコレクションを登録順に平坦化する
func (s *libraryService) WorkingItems() []model.WorkingItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.workingItemsLocked()
}

func (s *libraryService) OnChange(fn ChangeListener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *libraryService) workingItemsLocked() []model.WorkingItem {
	items := []model.WorkingItem{}
	for _, c := range s.collections {
		if !s.selected[c.Name] {
			continue
		}
		for _, it := range c.Items {
			items = append(items, model.WorkingItem{
				ID:               it.ID,
				SourceCollection: c.Name,
				Front:            it.Front,
				Back:             it.Back,
			})
		}
	}
	return items
}

func (s *libraryService) notify() {
	s.mu.RLock()
	items := s.workingItemsLocked()
	mode := s.mode
	listeners := append([]ChangeListener(nil), s.listeners...)
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(items, mode)
	}
}

// save はコレクションを保存する。withMode ならモードも同じトランザクションで保存する。
// コレクションが空ならキーを削除する。
func (s *libraryService) save(ctx context.Context, collections []model.Collection, mode model.ReviewMode, withMode bool) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(collections) == 0 {
			if err := s.kvStore.Delete(ctx, tx, model.KeyQuizData); err != nil {
				return err
			}
		} else {
			raw, err := encodeCollections(collections)
			if err != nil {
				return err
			}
			if err := s.kvStore.Set(ctx, tx, model.KeyQuizData, raw); err != nil {
				return err
			}
		}
		if withMode {
			return s.kvStore.Set(ctx, tx, model.KeyQuizMode, mode.String())
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Error saving collections", slog.Any("error", err))
		return model.ErrInternalServer
	}
	return nil
}

// encodeCollections は登録順を保ったまま {名前: アイテム配列} のJSONにする
func encodeCollections(collections []model.Collection) (string, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range collections {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Name)
		if err != nil {
			return "", err
		}
		items, err := json.Marshal(c.Items)
		if err != nil {
			return "", err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(items)
	}
	buf.WriteByte('}')
	return buf.String(), nil
}

// decodeCollections は保存されたJSONを検証してコレクションに戻す。
// 一件でも不正なら全体を model.ErrPersistenceCorrupt とする。
func decodeCollections(raw string) ([]model.Collection, error) {
	if !gjson.Valid(raw) {
		return nil, fmt.Errorf("%w: not valid JSON", model.ErrPersistenceCorrupt)
	}
	root := gjson.Parse(raw)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: expected an object", model.ErrPersistenceCorrupt)
	}

	var (
		collections []model.Collection
		decodeErr   error
	)
	root.ForEach(func(key, value gjson.Result) bool {
		if !value.IsArray() {
			decodeErr = fmt.Errorf("%w: collection %q is not a list", model.ErrPersistenceCorrupt, key.Str)
			return false
		}
		col := model.Collection{Name: key.Str, Items: []model.FlashcardItem{}}
		value.ForEach(func(_, raw gjson.Result) bool {
			item, err := ingest.ParseItem(raw)
			if err != nil {
				decodeErr = fmt.Errorf("%w: collection %q: %v", model.ErrPersistenceCorrupt, key.Str, err)
				return false
			}
			col.Items = append(col.Items, item)
			return true
		})
		if decodeErr != nil {
			return false
		}
		collections = replaceCollection(collections, col)
		return true
	})
	if decodeErr != nil {
		return nil, decodeErr
	}
	return collections, nil
}

// replaceCollection は同名のコレクションを置き換え、なければ末尾に追加した新しいスライスを返す
func replaceCollection(collections []model.Collection, col model.Collection) []model.Collection {
	next := make([]model.Collection, len(collections), len(collections)+1)
	copy(next, collections)
	if i := indexOf(next, col.Name); i >= 0 {
		next[i] = col
		return next
	}
	return append(next, col)
}

func indexOf(collections []model.Collection, name string) int {
	for i, c := range collections {
		if c.Name == name {
			return i
		}
	}
	return -1
}
