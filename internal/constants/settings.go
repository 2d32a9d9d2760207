package constants

const (
	// Config keys
	SettingStartHour       = "start_hour"
	SettingEndHour         = "end_hour"
	SettingSnapMinutes     = "snap_minutes"
	SettingDefaultDuration = "default_duration"
	SettingEndpoint        = "endpoint"
	SettingHTTPTimeout     = "http_timeout"
	SettingCacheBackend    = "cache.backend"
	SettingCachePath       = "cache.path"
	SettingNotifications   = "notifications"
	SettingDebug           = "debug"

	// Default values
	DefaultStartHour       = 5
	DefaultEndHour         = 24
	DefaultSnapMinutes     = 15
	DefaultDurationMinutes = 60
	DefaultHTTPTimeoutSec  = 15
	DefaultNotifications   = true
)
