package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

const (
	ChannelWeb    = "web"
	ChannelMobile = "mobile"

	VideoTokenAudience = "video-playback"
	RefreshTokenType   = "refresh"
)

// CompletionThreshold is the watched percentage at which a module counts as completed.
const CompletionThreshold = 90.0

const SyncActionVideoProgress = "video_progress"

// RevokedReason 撤销授权时写入报名记录的拒绝原因
const RevokedReason = "access revoked"

// Mobile envelope codes
const (
	CodeMissingFields       = "MISSING_FIELDS"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeNoToken             = "NO_TOKEN"
	CodeInvalidToken        = "INVALID_TOKEN"
	CodeSessionExpired      = "SESSION_EXPIRED"
	CodeNoRefreshToken      = "NO_REFRESH_TOKEN"
	CodeInvalidRefreshToken = "INVALID_REFRESH_TOKEN"
	CodeLoginError          = "LOGIN_ERROR"
	CodeRefreshError        = "REFRESH_ERROR"
	CodeDashboardError      = "DASHBOARD_ERROR"
	CodeProgressError       = "PROGRESS_ERROR"
	CodeNotFound            = "NOT_FOUND"
	CodeInvalidSyncData     = "INVALID_SYNC_DATA"
	CodeSyncError           = "SYNC_ERROR"
	CodeOK                  = "OK"
)

var AllowedMaterialExtensions = []string{".pdf", ".ppt", ".pptx", ".doc", ".docx", ".zip", ".png", ".jpg"}
