// Package studio はスタジオ画面の状態遷移と履歴の管理を行います。
package studio

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/shouni/illustration-studio/pkg/domain"
	"github.com/shouni/illustration-studio/pkg/history"
	"github.com/shouni/illustration-studio/pkg/imgutil"
)

// 画面に表示するメッセージ
const (
	MsgPromptRequired     = "プロンプトを入力してください。"
	MsgEditPromptRequired = "編集指示を入力してください。"
	MsgSourceRequired     = "編集する画像をアップロードしてください。"
	MsgQueryRequired      = "コンセプトやアイデアを入力してください。"

	generateErrorPrefix = "画像生成中にエラーが発生しました: "
	editErrorPrefix     = "画像編集中にエラーが発生しました: "
	thinkErrorPrefix    = "構想中にエラーが発生しました: "
)

// 単一実行のキーの接頭辞
const (
	flightGenerate = "generate"
	flightEdit     = "edit"
	flightThink    = "think"
)

// flightKey は操作の種類と要求内容から単一実行のキーを作ります。
// 内容がすべて同じ要求だけが1回のプロバイダ呼び出しを共有します。
func flightKey(kind string, fields ...string) string {
	h := sha256.New()
	for _, f := range fields {
		h.Write([]byte(f))
		h.Write([]byte{0})
	}
	return kind + ":" + hex.EncodeToString(h.Sum(nil))
}

// Studio は Illustrator と履歴ストアを束ね、State に対する操作を提供します。
type Studio struct {
	illustrator domain.Illustrator
	history     *history.Store
	now         func() time.Time

	compress bool
	quality  int

	flight singleflight.Group

	mu   sync.Mutex
	last int64
}

// Option は Studio の設定を変更します。
type Option func(*Studio)

// WithClock は時刻の取得元を差し替えます。
func WithClock(now func() time.Time) Option {
	return func(s *Studio) { s.now = now }
}

// WithCompression はアップロード画像を指定品質の JPEG に再圧縮します。
func WithCompression(quality int) Option {
	return func(s *Studio) {
		s.compress = true
		s.quality = quality
	}
}

// New は Studio を作成します。
func New(illustrator domain.Illustrator, store *history.Store, opts ...Option) (*Studio, error) {
	if illustrator == nil {
		return nil, errors.New("illustrator is required")
	}
	if store == nil {
		return nil, errors.New("history store is required")
	}
	s := &Studio{
		illustrator: illustrator,
		history:     store,
		now:         time.Now,
		quality:     imgutil.DefaultJPEGQuality,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Start は永続化された履歴を読み込みます。壊れていても空の履歴で続行します。
func (s *Studio) Start(ctx context.Context, st *State) {
	items := s.history.Load(ctx)
	if len(items) > 0 {
		s.mu.Lock()
		s.last = max(s.last, items[0].Timestamp)
		s.mu.Unlock()
	}
	st.update(func(st *State) { st.History = items })
	slog.InfoContext(ctx, "履歴を読み込みました", "items", len(items))
}

type recorded struct {
	asset   domain.ImageAsset
	history []domain.HistoryItem
}

// Generate は現在のプロンプトと設定で画像を生成し、結果を表示して履歴に追加します。
func (s *Studio) Generate(ctx context.Context, st *State) {
	var req domain.GenerateRequest
	if !s.begin(st, func(st *State) string {
		if st.Prompt == "" {
			return MsgPromptRequired
		}
		req = domain.GenerateRequest{
			Prompt:      st.Prompt,
			AspectRatio: st.AspectRatio,
			Model:       st.Model,
			Resolution:  st.Resolution,
		}
		st.Displayed = ""
		return ""
	}) {
		return
	}

	v, err, _ := s.flight.Do(flightKey(flightGenerate,
		req.Prompt, string(req.AspectRatio), string(req.Model), string(req.Resolution)), func() (any, error) {
		asset, err := s.illustrator.Generate(ctx, req)
		if err != nil {
			return nil, err
		}
		return s.record(ctx, asset, req.Prompt, req.Model, req.AspectRatio, req.Resolution), nil
	})
	s.finish(st, v, err, generateErrorPrefix)
}

// Edit は元画像と編集指示で画像を編集し、結果を表示して履歴に追加します。
// 履歴にはモデルを常にマルチモーダルモデル、解像度を standard として記録します。
func (s *Studio) Edit(ctx context.Context, st *State) {
	var req domain.EditRequest
	if !s.begin(st, func(st *State) string {
		if st.EditPrompt == "" {
			return MsgEditPromptRequired
		}
		if st.SourceImage.IsZero() {
			return MsgSourceRequired
		}
		req = domain.EditRequest{
			Prompt:      st.EditPrompt,
			SourceImage: st.SourceImage,
			AspectRatio: st.AspectRatio,
		}
		st.Displayed = ""
		return ""
	}) {
		return
	}

	v, err, _ := s.flight.Do(flightKey(flightEdit,
		req.Prompt, string(req.AspectRatio), req.SourceImage.MimeType, req.SourceImage.Base64), func() (any, error) {
		asset, err := s.illustrator.Edit(ctx, req)
		if err != nil {
			return nil, err
		}
		return s.record(ctx, asset, req.Prompt, domain.ModelFlashImage, req.AspectRatio, domain.ResolutionStandard), nil
	})
	s.finish(st, v, err, editErrorPrefix)
}

// Think はアイデアからプロンプト案を作り、提案として保持します。履歴には追加しません。
func (s *Studio) Think(ctx context.Context, st *State) {
	var query string
	if !s.begin(st, func(st *State) string {
		if st.ThinkingQuery == "" {
			return MsgQueryRequired
		}
		query = st.ThinkingQuery
		st.Suggestion = ""
		return ""
	}) {
		return
	}

	v, err, _ := s.flight.Do(flightKey(flightThink, query), func() (any, error) {
		return s.illustrator.ExpandPrompt(ctx, domain.ThinkRequest{Query: query})
	})
	st.update(func(st *State) {
		st.Loading = false
		if err != nil {
			st.Error = thinkErrorPrefix + err.Error()
			return
		}
		st.Suggestion = v.(string)
	})
}

// AdoptSuggestion は提案をプロンプトに取り込み、生成モードに切り替えます。提案が無ければ何もしません。
func (s *Studio) AdoptSuggestion(st *State) bool {
	adopted := false
	st.update(func(st *State) {
		if st.Suggestion == "" {
			return
		}
		st.Prompt = st.Suggestion
		st.Mode = domain.ModeGenerate
		st.Suggestion = ""
		st.ThinkingQuery = ""
		adopted = true
	})
	return adopted
}

// SelectHistoryItem は履歴の1件を表示し、編集元と各設定をその時の値に戻します。
func (s *Studio) SelectHistoryItem(st *State, item domain.HistoryItem) {
	st.update(func(st *State) {
		st.Displayed = item.Image.DataURI()
		st.SourceImage = item.Image
		st.Prompt = item.Prompt
		if item.Model == domain.ModelFlashImage && st.Mode == domain.ModeEdit {
			st.EditPrompt = item.Prompt
		} else {
			st.EditPrompt = ""
		}
		st.AspectRatio = item.AspectRatio
		st.Model = item.Model
		st.Resolution = item.Resolution
		st.Error = ""
	})
}

// ClearHistory は履歴を空にし、保存されたレコードも削除します。
func (s *Studio) ClearHistory(ctx context.Context, st *State) {
	s.history.Clear(ctx)
	st.update(func(st *State) { st.History = nil })
}

// SetMode はモードを切り替えます。処理中は切り替えずに false を返します。
func (s *Studio) SetMode(st *State, mode domain.Mode) bool {
	if !mode.Valid() {
		return false
	}
	changed := false
	st.update(func(st *State) {
		if st.Loading {
			return
		}
		st.Mode = mode
		changed = true
	})
	return changed
}

// LoadSourceImage は画像ファイルを読み込み、編集元として設定します。
func (s *Studio) LoadSourceImage(ctx context.Context, st *State, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("画像ファイルの読み込みに失敗しました: %w", err)
	}

	mimeType := imgutil.MimeTypeFor(path, data)
	if !imgutil.IsImage(mimeType) {
		return fmt.Errorf("%w: 画像ファイルではありません (%s)", domain.ErrInvalidRequest, mimeType)
	}

	if s.compress {
		compressed, err := imgutil.CompressToJPEG(data, s.quality)
		if err != nil {
			slog.WarnContext(ctx, "画像の再圧縮に失敗しました。元のデータを使います", "path", path, "error", err)
		} else {
			data, mimeType = compressed, "image/jpeg"
		}
	}

	asset := domain.NewImageAsset(data, mimeType)
	st.update(func(st *State) { st.SourceImage = asset })
	slog.DebugContext(ctx, "編集元の画像を読み込みました", "path", path, "mimeType", mimeType, "bytes", len(data))
	return nil
}

// begin は入力を検証し、問題なければ処理中にします。検証に失敗したら処理中にはしません。
func (s *Studio) begin(st *State, prepare func(st *State) string) bool {
	ok := false
	st.update(func(st *State) {
		if msg := prepare(st); msg != "" {
			st.Error = msg
			return
		}
		st.Loading = true
		st.Error = ""
		ok = true
	})
	return ok
}

func (s *Studio) finish(st *State, v any, err error, prefix string) {
	st.update(func(st *State) {
		st.Loading = false
		if err != nil {
			st.Error = prefix + err.Error()
			return
		}
		r := v.(recorded)
		st.Displayed = r.asset.DataURI()
		st.History = r.history
	})
}

// record は成功した結果を履歴の先頭に追加します。
func (s *Studio) record(ctx context.Context, asset domain.ImageAsset, prompt string, model domain.Model, aspect domain.AspectRatio, res domain.Resolution) recorded {
	ts := s.timestamp()
	items := s.history.Append(ctx, domain.HistoryItem{
		ID:          strconv.FormatInt(ts, 10),
		Image:       asset,
		Prompt:      prompt,
		Model:       model,
		AspectRatio: aspect,
		Resolution:  res,
		Timestamp:   ts,
	})
	return recorded{asset: asset, history: items}
}

// timestamp はエポックミリ秒を返します。同じミリ秒に重なった場合は直前の値より1進めます。
func (s *Studio) timestamp() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.now().UnixMilli()
	if ts <= s.last {
		ts = s.last + 1
	}
	s.last = ts
	return ts
}
