package generator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/illustration-studio/pkg/domain"

	"google.golang.org/genai"
)

const (
	thinkingSystemPrompt = "You are an expert prompt engineer for an AI image generator specializing in galgame-style illustrations. " +
		"Your task is to expand a user's simple idea into a detailed, creative, and descriptive prompt. " +
		"The prompt should be a single paragraph of comma-separated keywords and phrases. Start with 'masterpiece, best quality'."

	thinkingUserTemplate = "Based on this idea: \"%s\", create a rich, detailed, and artistic prompt for an AI image generator. " +
		"The style must be 'galgame' or 'bishōjo game'. Describe the a character, their pose, expression, clothing, the background, " +
		"lighting, and overall mood. Use descriptive keywords and phrases."
)

// GeminiGenerator は生成・編集・プロンプト拡張の3操作を担当する統合ジェネレーターです。
// domain.Illustrator の直接呼び出し版の実装です。
type GeminiGenerator struct {
	executor ImageExecutor
	models   Models
}

// NewGeminiGenerator は GeminiGenerator を初期化するのだ。
func NewGeminiGenerator(executor ImageExecutor, models Models) (*GeminiGenerator, error) {
	if executor == nil {
		return nil, fmt.Errorf("executor (ImageExecutor) is required")
	}
	if models.Image == "" {
		models.Image = DefaultModels.Image
	}
	if models.Multimodal == "" {
		models.Multimodal = DefaultModels.Multimodal
	}
	if models.Thinking == "" {
		models.Thinking = DefaultModels.Thinking
	}
	return &GeminiGenerator{executor: executor, models: models}, nil
}

// Generate はプロンプトから画像を1枚生成するのだ。
// モデルが Imagen なら text-to-image API、それ以外はマルチモーダルモデルに画像のみを要求する。
func (g *GeminiGenerator) Generate(ctx context.Context, req domain.GenerateRequest) (domain.ImageAsset, error) {
	prompt := stylize(req.Prompt)

	if req.Model == domain.ModelImagen {
		slog.InfoContext(ctx, "Imagen生成リクエスト", "model", g.models.Image, "aspect_ratio", req.AspectRatio, "resolution", req.Resolution)
		out, err := g.executor.ExecuteImagen(ctx, g.models.Image, prompt, ImagenOptions{
			AspectRatio: string(req.AspectRatio),
			ImageSize:   imageSizeFor(req.Resolution),
		})
		if err != nil {
			return domain.ImageAsset{}, fmt.Errorf("Imagen画像生成エラー: %w", wrapFailure(domain.ErrGenerationFailed, err))
		}
		return domain.NewImageAsset(out.Data, ImagenOutputMIMEType), nil
	}

	slog.InfoContext(ctx, "Gemini生成リクエスト", "model", g.models.Multimodal, "aspect_ratio", req.AspectRatio)
	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	out, err := g.executor.ExecuteRequest(ctx, g.models.Multimodal, parts, string(req.AspectRatio))
	if err != nil {
		return domain.ImageAsset{}, fmt.Errorf("Gemini画像生成エラー: %w", wrapFailure(domain.ErrGenerationFailed, err))
	}
	return domain.NewImageAsset(out.Data, out.MimeType), nil
}

// Edit は元画像と指示文から画像を編集するのだ。常にマルチモーダルモデルを使う。
// パーツの順序は元画像、指示文の順で固定なのだ。
func (g *GeminiGenerator) Edit(ctx context.Context, req domain.EditRequest) (domain.ImageAsset, error) {
	data, err := req.SourceImage.Bytes()
	if err != nil {
		return domain.ImageAsset{}, err
	}

	slog.InfoContext(ctx, "Gemini編集リクエスト", "model", g.models.Multimodal, "source_mime_type", req.SourceImage.MimeType, "source_bytes", len(data))
	parts := []*genai.Part{
		genai.NewPartFromBytes(data, req.SourceImage.MimeType),
		genai.NewPartFromText(req.Prompt),
	}
	out, err := g.executor.ExecuteRequest(ctx, g.models.Multimodal, parts, string(req.AspectRatio))
	if err != nil {
		return domain.ImageAsset{}, fmt.Errorf("Gemini画像編集エラー: %w", wrapFailure(domain.ErrEditFailed, err))
	}
	return domain.NewImageAsset(out.Data, out.MimeType), nil
}

// ExpandPrompt は短いアイデアを詳細な画像生成プロンプトに膨らませるのだ。
// 応答テキストは長さも含めて一切加工しない。
func (g *GeminiGenerator) ExpandPrompt(ctx context.Context, req domain.ThinkRequest) (string, error) {
	slog.InfoContext(ctx, "プロンプト拡張リクエスト", "model", g.models.Thinking)
	idea, err := g.executor.ExecuteText(ctx, g.models.Thinking, thinkingPrompt(req.Query), TextOptions{
		SystemPrompt:   thinkingSystemPrompt,
		ThinkingBudget: ThinkingBudget,
		Temperature:    ThinkingTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("プロンプト拡張エラー: %w", err)
	}
	return idea, nil
}

var _ domain.Illustrator = (*GeminiGenerator)(nil)
