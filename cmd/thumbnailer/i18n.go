// Package main provides localization for the thumbnailer CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Root command
		"Extract a still thumbnail from a video file": "動画ファイルから静止画サムネイルを抽出",

		// Commands
		"Decode the frame at the seek position and save it as an image": "シーク位置のフレームをデコードし画像として保存",
		"List the streams of a video file as YAML":                      "動画ファイルのストリーム一覧をYAMLで表示",
		"Run the HTTP status endpoint":                                  "HTTPステータスエンドポイントを起動",
		"Show version information":                                      "バージョン情報を表示",
		"thumbnailer version %s":                                        "thumbnailer バージョン %s",

		// Global flags
		"YAML configuration file":              "YAML設定ファイル",
		"Log level (debug, info, warn, error)": "ログレベル（debug, info, warn, error）",
		"Log format (console, json)":           "ログ形式（console, json）",
		"Suppress all log output":              "全てのログ出力を抑制",

		// Extract flags
		"Output image path (.jpg, .png, .bmp, .tiff)":               "出力画像パス（.jpg, .png, .bmp, .tiff）",
		"Position of the thumbnail from the start of the video":     "動画の先頭からのサムネイル位置",
		"Use the first frame when the seek position is unreachable": "シーク位置に到達できない場合は最初のフレームを使用",
		"Output width (0 keeps the aspect ratio)":                   "出力幅（0でアスペクト比を維持）",
		"Output height (0 keeps the aspect ratio)":                  "出力高さ（0でアスペクト比を維持）",
		"JPEG quality (1-100)":                                      "JPEG品質（1-100）",
		"Quality preset (low, medium, high)":                        "品質プリセット（low, medium, high）",
		"Path to the ffmpeg executable":                             "ffmpeg実行ファイルのパス",
		"Output execution summary to file (Markdown format)":        "実行サマリーをファイルに出力（Markdown形式）",
		"Enable debug output":                                       "デバッグ出力を有効化",
		"Directory for debug output":                                "デバッグ出力のディレクトリ",

		// Serve flags
		"Listen address": "待ち受けアドレス",

		// Runtime messages
		"Summary saved to %s":         "サマリーを %s に保存しました",
		"Failed to write summary: %s": "サマリーの書き込みに失敗しました: %s",
		"Error: %v":                   "エラー: %v",

		// Error messages
		"input file argument is required": "入力ファイル引数が必要です",
		"unknown quality preset":          "不明な品質プリセット",

		// Summary content
		"Thumbnail Summary":      "サムネイルサマリー",
		"Generated":              "生成日時",
		"Run":                    "実行ID",
		"Input":                  "入力",
		"Seek":                   "シーク",
		"Output":                 "出力",
		"Item":                   "項目",
		"Value":                  "値",
		"Path":                   "パス",
		"Stream":                 "ストリーム",
		"Resolution":             "解像度",
		"Decoder":                "デコーダー",
		"Target":                 "目標位置",
		"Fallback":               "フォールバック",
		"Yes (restarted from 0)": "あり（先頭から再開）",
		"Frame PTS":              "フレームPTS",
		"Packets":                "パケット",
		"%d read, %d dropped":    "%d 読み込み、%d 破棄",
		"Format":                 "形式",
		"File Size":              "ファイルサイズ",
		"Size":                   "サイズ",
		"Source Pixels":          "元のピクセル形式",
	})
}
