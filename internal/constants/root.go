package constants

import "time"

const (
	AppName             = "weekgrid"
	DefaultKeyringUser  = "database-connection"
	EndpointKeyringUser = "sheet-endpoint"
	DefaultConfigDir    = "~/.config/weekgrid"
	DefaultCachePath    = "~/.config/weekgrid/weekgrid.db"
	DefaultConfigFile   = "~/.config/weekgrid/config.yaml"
	Version             = "v0.3.0"

	// Cache backends
	CacheBackendSQLite   = "sqlite"
	CacheBackendDiskv    = "diskv"
	CacheBackendPostgres = "postgres"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "weekgrid-"
	BackupFileSuffix = ".db"

	ExportFilePrefix = "weekgrid-"

	// Notify constants
	NotifierLockfileName   = "weekgrid-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.julianstephens.weekgrid"
	TrayExecutable         = "weekgrid-tray"
	TraySecretHeader       = "X-Weekgrid-Secret"

	// ReminderLead is how long before a slot starts its reminder fires.
	ReminderLead = 5 * time.Minute

	// ClickSuppressWindow is how long a click on a bar is ignored after a drag ends on it.
	ClickSuppressWindow = 250 * time.Millisecond

	// LoadingIndicatorDelay is how long a remote call runs before the loading indicator shows.
	LoadingIndicatorDelay = 150 * time.Millisecond

	// Sheet proxy defaults
	DefaultProxyAddr = "127.0.0.1:8787"
)
