package domain

import (
	"context"

	"github.com/samber/lo"
)

// AspectRatio は出力画像のアスペクト比です。
type AspectRatio string

const (
	AspectSquare    AspectRatio = "1:1"
	AspectPortrait  AspectRatio = "3:4"
	AspectLandscape AspectRatio = "4:3"
	AspectTall      AspectRatio = "9:16"
	AspectWide      AspectRatio = "16:9"
)

// AspectRatios は受け付けるアスペクト比の一覧です。
var AspectRatios = []AspectRatio{AspectSquare, AspectPortrait, AspectLandscape, AspectTall, AspectWide}

func (a AspectRatio) Valid() bool { return lo.Contains(AspectRatios, a) }

// Model は画像生成に使うモデルです。
type Model string

const (
	// ModelImagen は高精細な text-to-image モデルです。
	ModelImagen Model = "imagen-4.0-generate-001"
	// ModelFlashImage はマルチモーダル画像モデルで、編集にも使われます。
	ModelFlashImage Model = "gemini-2.5-flash-image"
)

var Models = []Model{ModelImagen, ModelFlashImage}

func (m Model) Valid() bool { return lo.Contains(Models, m) }

// Resolution は出力解像度の指定です。standard はプロバイダのデフォルトに任せます。
type Resolution string

const (
	ResolutionStandard Resolution = "standard"
	Resolution1K       Resolution = "1k"
	Resolution2K       Resolution = "2k"
)

var Resolutions = []Resolution{ResolutionStandard, Resolution1K, Resolution2K}

func (r Resolution) Valid() bool { return lo.Contains(Resolutions, r) }

// Mode はスタジオUIの操作モードです。
type Mode string

const (
	ModeGenerate Mode = "generate"
	ModeEdit     Mode = "edit"
	ModeThinking Mode = "thinking"
)

var Modes = []Mode{ModeGenerate, ModeEdit, ModeThinking}

func (m Mode) Valid() bool { return lo.Contains(Modes, m) }

// GenerateRequest はテキストからの画像生成要求です。
type GenerateRequest struct {
	Prompt      string
	AspectRatio AspectRatio
	Model       Model
	Resolution  Resolution
}

// EditRequest は元画像と指示文による画像編集要求です。
type EditRequest struct {
	Prompt      string
	SourceImage ImageAsset
	AspectRatio AspectRatio
}

// ThinkRequest はプロンプト拡張の要求です。
type ThinkRequest struct {
	Query string
}

// Illustrator は画像生成プロバイダへの3つの操作をまとめた契約です。
// Gemini を直接呼ぶ実装と、自前のバックエンドを経由する実装の2つがあります。
type Illustrator interface {
	Generate(ctx context.Context, req GenerateRequest) (ImageAsset, error)
	Edit(ctx context.Context, req EditRequest) (ImageAsset, error)
	ExpandPrompt(ctx context.Context, req ThinkRequest) (string, error)
}
