package util

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const (
	MailProviderSendGrid = "sendgrid"
	MailProviderLog      = "log"
)

// DefaultPassingScore applies to quizzes created without one.
const DefaultPassingScore = 50.0

// MaxCoverSize caps course cover uploads (5 MiB).
const MaxCoverSize = 5 << 20

var AllowedImageExtensions = []string{".jpg", ".jpeg", ".png", ".webp", ".gif"}
