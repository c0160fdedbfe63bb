package generator

import (
	"errors"
	"fmt"

	"github.com/shouni/illustration-studio/pkg/domain"
)

// imageSizeFor は解像度指定を text-to-image API の imageSize に変換します。
// standard は空文字を返し、プロバイダのデフォルトに任せます。
func imageSizeFor(r domain.Resolution) string {
	switch r {
	case domain.Resolution1K:
		return "1K"
	case domain.Resolution2K:
		return "2K"
	default:
		return ""
	}
}

// stylize は画風の前置きを付けたプロンプトを返します。
func stylize(prompt string) string {
	return StylePreamble + prompt
}

// thinkingPrompt はプロンプト拡張のユーザーメッセージを組み立てます。
func thinkingPrompt(query string) string {
	return fmt.Sprintf(thinkingUserTemplate, query)
}

// wrapFailure は画像が得られなかった場合だけ操作ごとの sentinel でラップします。
func wrapFailure(sentinel, err error) error {
	if errors.Is(err, errNoImageData) || errors.Is(err, domain.ErrEmptyResponse) {
		return fmt.Errorf("%w: %w", sentinel, err)
	}
	return err
}
