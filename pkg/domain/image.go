package domain

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// ImageAsset は生成またはアップロードされた1枚のラスター画像です。
// Base64 はデータURIの接頭辞を含まない生のペイロードで、作成後は変更しません。
type ImageAsset struct {
	Base64   string `json:"base64"`
	MimeType string `json:"mimeType"`
}

// NewImageAsset はバイト列から ImageAsset を作成します。
func NewImageAsset(data []byte, mimeType string) ImageAsset {
	return ImageAsset{
		Base64:   base64.StdEncoding.EncodeToString(data),
		MimeType: mimeType,
	}
}

// Bytes はペイロードをデコードして返します。パディングの有無はどちらでも受け付けます。
func (a ImageAsset) Bytes() ([]byte, error) {
	data, err := base64.RawStdEncoding.DecodeString(strings.TrimRight(a.Base64, "="))
	if err != nil {
		return nil, fmt.Errorf("%w: base64のデコードに失敗しました: %v", ErrInvalidRequest, err)
	}
	return data, nil
}

// DataURI は表示用の data URI を組み立てます。
func (a ImageAsset) DataURI() string {
	return "data:" + a.MimeType + ";base64," + a.Base64
}

// IsZero は画像が未設定かどうかを返します。
func (a ImageAsset) IsZero() bool {
	return a.Base64 == "" && a.MimeType == ""
}
