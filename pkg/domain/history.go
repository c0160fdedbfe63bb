package domain

// HistoryItem は成功した生成・編集1件の記録です。
// 永続化されるJSONの形はそのまま保存形式なので、タグを変えると既存データが読めなくなります。
type HistoryItem struct {
	ID          string      `json:"id"`
	Image       ImageAsset  `json:"image"`
	Prompt      string      `json:"prompt"`
	Model       Model       `json:"model"`
	AspectRatio AspectRatio `json:"aspectRatio"`
	Resolution  Resolution  `json:"resolution"`
	Timestamp   int64       `json:"timestamp"` // epoch ミリ秒
}

// UIの初期値です。
const (
	DefaultPrompt      = "masterpiece, best quality, 1girl, solo, beautiful detailed eyes, looking at viewer, detailed light, cinematic light, detailed background"
	DefaultAspectRatio = AspectPortrait
	DefaultModel       = ModelImagen
	DefaultResolution  = ResolutionStandard
)
