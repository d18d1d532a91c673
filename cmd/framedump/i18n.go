// Package main provides localization for the framedump CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Root command
		"Dump every frame of a video file as numbered images": "動画ファイルの全フレームを連番画像として書き出す",

		// Commands
		"Extract every frame of a video as numbered images.":    "動画の全フレームを連番画像として抽出",
		"Show what the decoding backend reports about a video.": "デコードバックエンドが報告する動画情報を表示",
		"Show version information.":                             "バージョン情報を表示",

		// Extract flags
		"Video file to extract frames from.":                                         "フレームを抽出する動画ファイル",
		"YAML config file; flags override its values.":                               "YAML設定ファイル（フラグが優先）",
		"Output directory (default: frames).":                                        "出力ディレクトリ（デフォルト: frames）",
		"Filename prefix (default: frame_).":                                         "ファイル名の接頭辞（デフォルト: frame_）",
		"Minimum zero-padded index width (default: 4).":                              "ゼロ埋め連番の最小桁数（デフォルト: 4）",
		"JPEG quality 1-100 (default: 90).":                                          "JPEG品質 1-100（デフォルト: 90）",
		"Fail instead of replacing existing frame files.":                            "既存のフレームファイルを上書きせずに失敗する",
		"Write a Markdown summary of the run to this path.":                          "実行サマリーをMarkdownでこのパスに書き出す",
		"Suppress all log output.":                                                   "ログ出力をすべて抑制",
		"Log level: debug, info, warn or error (default: info).":                     "ログレベル: debug, info, warn, error（デフォルト: info）",
		"Draw a progress bar on the terminal while extracting.":                      "抽出中に端末にプログレスバーを表示",
		"Image format: png, jpeg, bmp or tiff (default: png).":                       "画像形式: png, jpeg, bmp, tiff（デフォルト: png）",
		"Decoding backend: auto, vidio, gstreamer, av1 or y4m (default: auto).":      "デコードバックエンド: auto, vidio, gstreamer, av1, y4m（デフォルト: auto）",
		"What to do when a frame cannot be written: abort or skip (default: abort).": "フレームを書き込めない場合の動作: abort または skip（デフォルト: abort）",

		// Probe command
		"Log level (debug, info, warn, error).":                 "ログレベル（debug, info, warn, error）",
		"Video file to inspect.":                                "調査する動画ファイル",
		"Decoding backend: auto, vidio, gstreamer, av1 or y4m.": "デコードバックエンド: auto, vidio, gstreamer, av1, y4m",
		"Backend: %s":                                  "バックエンド: %s",
		"Codec: %s":                                    "コーデック: %s",
		"Resolution: %dx%d":                            "解像度: %dx%d",
		"Frames: %d":                                   "フレーム数: %d",
		"Frames: unknown":                              "フレーム数: 不明",
		"MP4 track %d: %s, %d samples, fragmented: %t": "MP4トラック %d: %s、%d サンプル、フラグメント: %t",

		// Progress bar
		"Extracting": "抽出中",

		// Version command
		"framedump version %s": "framedump バージョン %s",
	})
}
