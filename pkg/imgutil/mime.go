package imgutil

import (
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// MimeTypeFor はファイル名の拡張子から宣言されたメディアタイプを求め、
// 分からなければ中身から推定します。
func MimeTypeFor(name string, data []byte) string {
	if ext := strings.ToLower(filepath.Ext(name)); ext != "" {
		if t := mime.TypeByExtension(ext); t != "" {
			if i := strings.IndexByte(t, ';'); i >= 0 {
				t = t[:i]
			}
			return t
		}
	}
	return http.DetectContentType(data)
}

// IsImage はメディアタイプが画像かどうかを返します。
func IsImage(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/")
}
