package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Orchestration level messages (info)
		"Extracting thumbnail from %s":            "%s からサムネイルを抽出中",
		"Run %s started":                          "実行 %s を開始しました",
		"Selected stream #%d (%s, %dx%d)":         "ストリーム #%d を選択しました (%s, %dx%d)",
		"Decoder backend: %s":                     "デコーダーバックエンド: %s",
		"Frame found at %.3fs after %d packets":   "%.3f 秒のフレームを %d パケット後に取得しました",
		"Thumbnail saved to %s (%dx%d, %d bytes)": "サムネイルを %s に保存しました (%dx%d, %d バイト)",
		"Status server listening on %s":           "ステータスサーバーが %s で待機中",
		"Status server stopped":                   "ステータスサーバーを停止しました",
		"Interrupted, shutting down...":           "中断されました。シャットダウン中...",

		// Select stage
		"Considering %d streams":                "%d 個のストリームを検討中",
		"Stream #%d: %s %s %dx%d, decodable=%v": "ストリーム #%d: %s %s %dx%d, デコード可能=%v",

		// Seek stage
		"Seeking stream #%d to %dus":               "ストリーム #%d を %dus にシーク中",
		"Seek to %dus failed, retrying from start": "%dus へのシークに失敗しました。先頭から再試行します",

		// Decode stage
		"Decoder state %s -> %s": "デコーダー状態 %s -> %s",
		"Flushing decoder":       "デコーダーをフラッシュ中",

		// Convert stage
		"Converting %s %dx%d to rgb24 %dx%d": "%s %dx%d を rgb24 %dx%d に変換中",

		// Write stage
		"Writing %s image to %s": "%s 画像を %s に書き込み中",

		// Warnings
		"Debug output failed: %v": "デバッグ出力に失敗しました: %v",

		// Errors
		"Extraction failed: %v": "抽出に失敗しました: %v",
	})
}
