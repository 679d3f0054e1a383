package constants

const (
	AppName            = "studyplan"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/studyplan/studyplan.db"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// TimestampFormat is how instants are persisted. Always written in UTC so that
	// lexical order matches chronological order.
	TimestampFormat = "2006-01-02T15:04:05Z07:00"

	// Environment variables
	EnvDBConnection = "STUDYPLAN_DB_CONNECTION"
	EnvConfigPath   = "STUDYPLAN_CONFIG"
	EnvDebug        = "STUDYPLAN_DEBUG"
	EnvTestPostgres = "STUDYPLAN_TEST_POSTGRES"
	EnvPort         = "STUDYPLAN_PORT"
	EnvLogDir       = "STUDYPLAN_LOG_DIR"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "studyplan-"
	BackupFileSuffix = ".db"

	// HTTP server defaults
	DefaultPort            = 8080
	DefaultRateLimitPerSec = 5.0
	DefaultRateLimitBurst  = 10
	DefaultCacheTTLSeconds = 30

	// Session listing
	DefaultSessionListLimit = 100
	MaxSessionListLimit     = 500

	// Check-in rating bounds
	MinCheckInLevel = 1
	MaxCheckInLevel = 5
)
