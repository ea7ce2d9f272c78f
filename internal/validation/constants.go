package validation

const (
	// bcrypt ignores input past 72 bytes
	MinPasswordLength = 8
	MaxPasswordLength = 72

	MaxNameLength      = 255
	MaxReferenceLength = 255
)
