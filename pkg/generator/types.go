package generator

import (
	"errors"

	"google.golang.org/genai"
)

const (
	// StylePreamble は生成プロンプトの先頭に必ず付与する画風指定です。
	StylePreamble = "galgame style, anime, beautiful, "
	// ImagenOutputMIMEType は text-to-image モデルの出力形式です。
	ImagenOutputMIMEType = "image/jpeg"
	// ThinkingBudget はプロンプト拡張時の推論トークン予算です。
	ThinkingBudget int32 = 32768
	// ThinkingTemperature はプロンプト拡張時のサンプリング温度です。
	ThinkingTemperature float32 = 0.8
)

// errNoImageData は応答のどのパーツにも画像が含まれていなかったことを示します。
var errNoImageData = errors.New("no image data in response")

// ImageOutput は Core の内部解析結果
type ImageOutput struct {
	Data     []byte
	MimeType string
}

// ImagenOptions は text-to-image 呼び出しのパラメータです。
type ImagenOptions struct {
	AspectRatio string
	ImageSize   string // 空ならプロバイダのデフォルト
}

// TextOptions はテキスト生成呼び出しのパラメータです。
type TextOptions struct {
	SystemPrompt   string
	ThinkingBudget int32
	Temperature    float32
}

// Models は各操作に使うモデル名の組です。
type Models struct {
	Image      string // text-to-image
	Multimodal string // 生成と編集の両方
	Thinking   string // プロンプト拡張
}

// DefaultModels は既定のモデル名です。
var DefaultModels = Models{
	Image:      "imagen-4.0-generate-001",
	Multimodal: "gemini-2.5-flash-image",
	Thinking:   "gemini-2.5-pro",
}

// responsePart は応答パーツの種別ごとの表現です。
type responsePart interface {
	isResponsePart()
}

type textPart struct{ text string }

type blobPart struct {
	data     []byte
	mimeType string
}

// otherPart は関数呼び出しなど、ここでは扱わないパーツです。
type otherPart struct{}

func (textPart) isResponsePart()  {}
func (blobPart) isResponsePart()  {}
func (otherPart) isResponsePart() {}

// classifyPart は genai.Part を種別ごとの表現に変換します。
func classifyPart(p *genai.Part) responsePart {
	switch {
	case p == nil:
		return otherPart{}
	case p.InlineData != nil && len(p.InlineData.Data) > 0:
		return blobPart{data: p.InlineData.Data, mimeType: p.InlineData.MIMEType}
	case p.Text != "":
		return textPart{text: p.Text}
	default:
		return otherPart{}
	}
}

// firstImage は最初のバイナリパーツを返します。
func firstImage(parts []responsePart) (blobPart, bool) {
	for _, p := range parts {
		if b, ok := p.(blobPart); ok {
			return b, true
		}
	}
	return blobPart{}, false
}
