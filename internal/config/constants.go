// internal/config/constants.go
package config

// アプリケーション情報
const (
	AppName    = "flashdeck"
	AppVersion = "0.3.0"
)

// デフォルト設定値
const (
	DefaultServerPort           = ":8080"
	DefaultDatabaseURL          = "flashdeck.db"
	DefaultLogLevel             = "info"
	DefaultLogFormat            = "json"
	DefaultSnapshotDebounceMS   = 1000
	DefaultSessionRetentionDays = 30
	DefaultPruneIntervalHours   = 24
)
