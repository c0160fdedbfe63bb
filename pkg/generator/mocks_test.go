package generator

import (
	"context"

	"google.golang.org/genai"
)

// --- Mocks ---

// mockAIClient は GenerativeModel のテスト用モックなのだ。
type mockAIClient struct {
	generateContentFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	generateImagesFunc  func(ctx context.Context, model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)

	lastModel    string
	lastContents []*genai.Content
	lastConfig   *genai.GenerateContentConfig
}

func (m *mockAIClient) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	m.lastModel = model
	m.lastContents = contents
	m.lastConfig = config
	if m.generateContentFunc != nil {
		return m.generateContentFunc(ctx, model, contents, config)
	}
	return imageResponse("image/png", []byte("fake")), nil
}

func (m *mockAIClient) GenerateImages(ctx context.Context, model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
	m.lastModel = model
	if m.generateImagesFunc != nil {
		return m.generateImagesFunc(ctx, model, prompt, config)
	}
	return &genai.GenerateImagesResponse{
		GeneratedImages: []*genai.GeneratedImage{{Image: &genai.Image{ImageBytes: []byte("jpeg"), MIMEType: "image/jpeg"}}},
	}, nil
}

// mockExecutor は ImageExecutor のテスト用モックなのだ。
type mockExecutor struct {
	requestFunc func(ctx context.Context, model string, parts []*genai.Part, aspectRatio string) (*ImageOutput, error)
	imagenFunc  func(ctx context.Context, model, prompt string, opts ImagenOptions) (*ImageOutput, error)
	textFunc    func(ctx context.Context, model, prompt string, opts TextOptions) (string, error)
}

func (m *mockExecutor) ExecuteRequest(ctx context.Context, model string, parts []*genai.Part, aspectRatio string) (*ImageOutput, error) {
	if m.requestFunc != nil {
		return m.requestFunc(ctx, model, parts, aspectRatio)
	}
	return nil, nil
}

func (m *mockExecutor) ExecuteImagen(ctx context.Context, model, prompt string, opts ImagenOptions) (*ImageOutput, error) {
	if m.imagenFunc != nil {
		return m.imagenFunc(ctx, model, prompt, opts)
	}
	return nil, nil
}

func (m *mockExecutor) ExecuteText(ctx context.Context, model, prompt string, opts TextOptions) (string, error) {
	if m.textFunc != nil {
		return m.textFunc(ctx, model, prompt, opts)
	}
	return "", nil
}

// imageResponse は画像パーツを1つだけ含む応答を作るヘルパーなのだ。
func imageResponse(mimeType string, data []byte) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Parts: []*genai.Part{{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}}},
			},
		}},
	}
}
