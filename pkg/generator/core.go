package generator

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiImageCore はプロバイダ呼び出しとレスポンス解析の共通ロジックを保持する基盤クラスです。
type GeminiImageCore struct {
	aiClient GenerativeModel
}

// NewGeminiImageCore は依存関係を注入して GeminiImageCore を初期化します。
func NewGeminiImageCore(aiClient GenerativeModel) (*GeminiImageCore, error) {
	if aiClient == nil {
		return nil, fmt.Errorf("aiClient is required")
	}
	return &GeminiImageCore{aiClient: aiClient}, nil
}

// NewGenAIClient は Gemini API バックエンド向けの genai クライアントを作成し、
// そのモデルサービスを返します。タイムアウトやリトライは設定しません。
func NewGenAIClient(ctx context.Context, apiKey string) (GenerativeModel, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genaiクライアントの作成に失敗しました: %w", err)
	}
	return client.Models, nil
}
