package studio

import (
	"sync"

	"github.com/shouni/illustration-studio/pkg/domain"
)

// State はスタジオ画面の状態すべてです。
// 各操作は Studio のメソッドに *State を渡して遷移させます。操作の途中で読む場合は Snapshot を使います。
type State struct {
	mu sync.Mutex

	Mode          domain.Mode
	Prompt        string
	ThinkingQuery string
	EditPrompt    string
	AspectRatio   domain.AspectRatio
	Model         domain.Model
	Resolution    domain.Resolution

	// SourceImage は編集対象の画像です。ゼロ値なら未設定です。
	SourceImage domain.ImageAsset
	// Displayed は表示中の画像の data URI です。
	Displayed string
	// Suggestion はプロンプト拡張の結果です。履歴には残りません。
	Suggestion string

	Loading bool
	Error   string
	History []domain.HistoryItem
}

// NewState は画面の初期値で State を作成します。
func NewState() *State {
	return &State{
		Mode:        domain.ModeGenerate,
		Prompt:      domain.DefaultPrompt,
		AspectRatio: domain.DefaultAspectRatio,
		Model:       domain.DefaultModel,
		Resolution:  domain.DefaultResolution,
	}
}

// View は State の読み取り専用のコピーです。
type View struct {
	Mode          domain.Mode
	Prompt        string
	ThinkingQuery string
	EditPrompt    string
	AspectRatio   domain.AspectRatio
	Model         domain.Model
	Resolution    domain.Resolution
	SourceImage   domain.ImageAsset
	Displayed     string
	Suggestion    string
	Loading       bool
	Error         string
	History       []domain.HistoryItem
}

// Snapshot は現在の状態をコピーして返します。
func (st *State) Snapshot() View {
	st.mu.Lock()
	defer st.mu.Unlock()

	history := make([]domain.HistoryItem, len(st.History))
	copy(history, st.History)
	return View{
		Mode:          st.Mode,
		Prompt:        st.Prompt,
		ThinkingQuery: st.ThinkingQuery,
		EditPrompt:    st.EditPrompt,
		AspectRatio:   st.AspectRatio,
		Model:         st.Model,
		Resolution:    st.Resolution,
		SourceImage:   st.SourceImage,
		Displayed:     st.Displayed,
		Suggestion:    st.Suggestion,
		Loading:       st.Loading,
		Error:         st.Error,
		History:       history,
	}
}

func (st *State) update(fn func(st *State)) {
	st.mu.Lock()
	defer st.mu.Unlock()
	fn(st)
}
