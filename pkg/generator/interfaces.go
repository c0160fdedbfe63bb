package generator

import (
	"context"

	"google.golang.org/genai"
)

// GenerativeModel は genai.Models のうち、このパッケージが利用するメソッドだけを抜き出したインターフェースです。
// *genai.Models がそのまま満たします。
type GenerativeModel interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateImages(ctx context.Context, model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
}

// ImageExecutor は、プロバイダへのリクエスト実行とレスポンス解析を担うインターフェースです。
type ImageExecutor interface {
	// ExecuteRequest は、マルチモーダルモデルに画像のみの出力を要求し、最初の画像パーツを返します。
	ExecuteRequest(ctx context.Context, model string, parts []*genai.Part, aspectRatio string) (*ImageOutput, error)
	// ExecuteImagen は、text-to-image モデルで1枚だけ画像を生成します。
	ExecuteImagen(ctx context.Context, model, prompt string, opts ImagenOptions) (*ImageOutput, error)
	// ExecuteText は、テキスト生成を行い応答テキストをそのまま返します。
	ExecuteText(ctx context.Context, model, prompt string, opts TextOptions) (string, error)
}
