package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrGenerationFailed はプロバイダが使える画像を返さなかったことを示します。
	ErrGenerationFailed = errors.New("image generation failed")
	// ErrEditFailed は編集結果に画像が含まれていなかったことを示します。
	ErrEditFailed = errors.New("image edit failed")
	// ErrEmptyResponse はプロバイダの応答自体が空だったことを示します。
	ErrEmptyResponse = errors.New("empty response from provider")
	// ErrInvalidRequest はリクエストの内容が不正なことを示します。
	ErrInvalidRequest = errors.New("invalid request")
)

// ValidationError は必須項目の欠落など、操作を試みる前に検出された入力エラーです。
type ValidationError struct {
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidRequest }
