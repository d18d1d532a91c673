package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Orchestration (info)
		"Extracting frames from %s into %s":     "%s から %s へフレームを抽出中",
		"Done! Extracted %d frames.":            "完了しました。%d フレームを抽出しました。",
		"Skipped %d frames due to write errors": "書き込みエラーにより %d フレームをスキップしました",
		"Run ID: %s":                            "実行ID: %s",
		"Summary saved to %s":                   "サマリーを %s に保存しました",
		"Interrupted, shutting down...":         "中断されました。シャットダウン中...",

		// Extract stage (debug)
		"Output directory ready: %s":                "出力ディレクトリ準備完了: %s",
		"Opened %s with %s backend (%s, %dx%d)":     "%s を %s バックエンドで開きました (%s, %dx%d)",
		"Expecting %d frames, padding to %d digits": "%d フレームを想定、%d 桁でゼロ埋め",
		"Wrote frame %d to %s":                      "フレーム %d を %s に書き込みました",
		"Source closed":                             "ソースを閉じました",

		// Source selection (debug)
		"Detected Y4M stream":               "Y4M ストリームを検出しました",
		"Detected MP4 with %s video track":  "%s 映像トラックの MP4 を検出しました",
		"Using %s backend":                  "%s バックエンドを使用します",
		"GStreamer pipeline error: %s":      "GStreamer パイプラインエラー: %s",
		"Skipped sample %d without picture": "ピクチャを含まないサンプル %d をスキップしました",

		// Warnings
		"Failed to write frame %d: %s": "フレーム %d の書き込みに失敗しました: %s",
		"Failed to close source: %s":   "ソースのクローズに失敗しました: %s",
		"Stream ended early: %s":       "ストリームが途中で終了しました: %s",
		"Failed to write summary: %s":  "サマリーの書き込みに失敗しました: %s",

		// Errors
		"Failed to open source: %s": "ソースを開けませんでした: %s",
		"Extraction failed: %s":     "フレームの抽出に失敗しました: %s",
	})
}
