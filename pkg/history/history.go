// Package history は生成履歴を KV ストアの1レコードとして永続化します。
package history

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/shouni/illustration-studio/pkg/domain"
	"github.com/shouni/illustration-studio/pkg/kvstore"
)

// StorageKey は履歴レコードのキーです。既存の保存データと互換を保つため固定です。
const StorageKey = "singhoo-illustrator-history"

// Store はメモリ上の履歴リストと、その永続化を管理します。
// リストは新しい順で、全消去以外で要素が取り除かれることはありません。
type Store struct {
	mu    sync.Mutex
	kv    kvstore.Store
	key   string
	items []domain.HistoryItem
}

// Option は Store の設定を変更します。
type Option func(*Store)

// WithKey は保存キーを差し替えます。
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// New は kv をバックエンドとする Store を作成します。Load を呼ぶまで履歴は空です。
func New(kv kvstore.Store, opts ...Option) *Store {
	s := &Store{kv: kv, key: StorageKey}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load は永続化された履歴を読み込みます。
// レコードが無い、読めない、壊れている場合は空の履歴で初期化し、ログに残すだけでエラーにはしません。
func (s *Store) Load(ctx context.Context) []domain.HistoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	raw, err := s.kv.Get(ctx, s.key)
	switch {
	case errors.Is(err, kvstore.ErrNotFound):
		return s.snapshot()
	case err != nil:
		slog.ErrorContext(ctx, "履歴の読み込みに失敗しました", "key", s.key, "error", err)
		return s.snapshot()
	}

	var items []domain.HistoryItem
	if err := json.Unmarshal(raw, &items); err != nil {
		slog.ErrorContext(ctx, "履歴の解析に失敗しました。空の履歴で続行します", "key", s.key, "error", err)
		return s.snapshot()
	}
	s.items = items
	return s.snapshot()
}

// Append は item を先頭に追加し、リスト全体を書き戻します。
// 書き込みに失敗してもメモリ上の履歴は更新したままにします。
func (s *Store) Append(ctx context.Context, item domain.HistoryItem) []domain.HistoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = append([]domain.HistoryItem{item}, s.items...)
	s.persist(ctx)
	return s.snapshot()
}

// Clear はメモリ上の履歴を空にし、レコード自体を削除します。
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	if err := s.kv.Delete(ctx, s.key); err != nil {
		slog.ErrorContext(ctx, "履歴の削除に失敗しました", "key", s.key, "error", err)
	}
}

// Items は現在の履歴のコピーを新しい順で返します。
func (s *Store) Items() []domain.HistoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Store) persist(ctx context.Context) {
	raw, err := json.Marshal(s.items)
	if err != nil {
		slog.ErrorContext(ctx, "履歴のエンコードに失敗しました", "error", err)
		return
	}
	if err := s.kv.Set(ctx, s.key, raw); err != nil {
		slog.ErrorContext(ctx, "履歴の保存に失敗しました", "key", s.key, "items", len(s.items), "error", err)
	}
}

func (s *Store) snapshot() []domain.HistoryItem {
	out := make([]domain.HistoryItem, len(s.items))
	copy(out, s.items)
	return out
}
