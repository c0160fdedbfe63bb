package generator

import (
	"context"
	"fmt"

	"github.com/shouni/illustration-studio/pkg/domain"

	"google.golang.org/genai"
)

// ExecuteRequest はマルチモーダルモデルを画像のみの出力モダリティで呼び出します。
func (c *GeminiImageCore) ExecuteRequest(ctx context.Context, model string, parts []*genai.Part, aspectRatio string) (*ImageOutput, error) {
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{string(genai.ModalityImage)},
		ImageConfig: &genai.ImageConfig{
			AspectRatio: aspectRatio,
		},
	}

	resp, err := c.aiClient.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return nil, err
	}
	return c.parseToResponse(resp)
}

// ExecuteImagen は text-to-image モデルで1枚生成します。出力は常に JPEG です。
func (c *GeminiImageCore) ExecuteImagen(ctx context.Context, model, prompt string, opts ImagenOptions) (*ImageOutput, error) {
	config := &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		OutputMIMEType: ImagenOutputMIMEType,
		AspectRatio:    opts.AspectRatio,
		ImageSize:      opts.ImageSize,
	}

	resp, err := c.aiClient.GenerateImages(ctx, model, prompt, config)
	if err != nil {
		return nil, err
	}
	if resp == nil || len(resp.GeneratedImages) == 0 {
		return nil, errNoImageData
	}
	img := resp.GeneratedImages[0].Image
	if img == nil || len(img.ImageBytes) == 0 {
		return nil, errNoImageData
	}
	return &ImageOutput{Data: img.ImageBytes, MimeType: ImagenOutputMIMEType}, nil
}

// ExecuteText はテキスト生成を行います。応答テキストは加工せずにそのまま返します。
func (c *GeminiImageCore) ExecuteText(ctx context.Context, model, prompt string, opts TextOptions) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(opts.Temperature),
	}
	if opts.SystemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(opts.SystemPrompt, genai.RoleUser)
	}
	if opts.ThinkingBudget > 0 {
		config.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: genai.Ptr(opts.ThinkingBudget)}
	}

	resp, err := c.aiClient.GenerateContent(ctx, model, genai.Text(prompt), config)
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", domain.ErrEmptyResponse
	}
	return resp.Text(), nil
}

func (c *GeminiImageCore) parseToResponse(resp *genai.GenerateContentResponse) (*ImageOutput, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, domain.ErrEmptyResponse
	}

	// 最初の候補 (Candidate) のみを利用する。
	candidate := resp.Candidates[0]

	var parts []responsePart
	if candidate.Content != nil {
		for _, p := range candidate.Content.Parts {
			parts = append(parts, classifyPart(p))
		}
	}
	if img, ok := firstImage(parts); ok {
		return &ImageOutput{Data: img.data, MimeType: img.mimeType}, nil
	}

	// 安全フィルター等によるブロックの確認
	if candidate.FinishReason != genai.FinishReasonUnspecified && candidate.FinishReason != genai.FinishReasonStop {
		return nil, fmt.Errorf("%w (FinishReason: %s)", errNoImageData, candidate.FinishReason)
	}
	return nil, errNoImageData
}
