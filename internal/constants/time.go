package constants

const (
	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// SheetDateFormat is the week_start format the remote sheet stores (dd/MM/yyyy)
	SheetDateFormat = "02/01/2006"

	// BackupTimestampFormat names backup files
	BackupTimestampFormat = "20060102-1504"
)
