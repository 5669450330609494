package util

import "errors"

var (
	ErrNotFound           = errors.New("resource not found")
	ErrStudentNotFound    = errors.New("user not found")
	ErrCourseNotFound     = errors.New("course not found")
	ErrModuleNotFound     = errors.New("module not found")
	ErrMaterialNotFound   = errors.New("material not found")
	ErrPendingNotFound    = errors.New("no pending registration found")
	ErrEmailRegistered    = errors.New("user with this email already exists")
	ErrEmailInUse         = errors.New("email is already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccessDenied       = errors.New("access denied")
	ErrEnrollmentPending  = errors.New("you already have a pending registration for this course")
	ErrEnrollmentApproved = errors.New("you are already enrolled in this course")
	ErrOTPNotFound        = errors.New("no OTP found for this email")
	ErrOTPExpired         = errors.New("OTP has expired")
	ErrOTPInvalid         = errors.New("invalid OTP")
	ErrOTPAttempts        = errors.New("too many incorrect attempts, please request a new OTP")
	ErrInvalidToken       = errors.New("invalid token")
	ErrSessionExpired     = errors.New("session expired")
	ErrUnknownSyncAction  = errors.New("unknown sync action")
	ErrInvalidVideoURL    = errors.New("invalid YouTube URL")
	ErrVideoNotFound      = errors.New("video not found")
)

// Denial reasons. They are logged, never sent to the caller.
const (
	ReasonUnknownPrincipal   = "unknown_principal"
	ReasonUnknownContentUnit = "unknown_content_unit"
	ReasonNoAccessGrant      = "no_access_grant"
	ReasonBadToken           = "bad_token"
	ReasonScopeMismatch      = "scope_mismatch"
	ReasonPrincipalMismatch  = "principal_mismatch"
)

// DenialError carries the internal reason for an access denial.
type DenialError struct {
	Reason string
	Err    error
}

func Deny(reason string, err error) *DenialError {
	return &DenialError{Reason: reason, Err: err}
}

func (e *DenialError) Error() string {
	if e.Err != nil {
		return "access denied (" + e.Reason + "): " + e.Err.Error()
	}
	return "access denied (" + e.Reason + ")"
}

func (e *DenialError) Unwrap() error { return e.Err }

func (e *DenialError) Is(target error) bool { return target == ErrAccessDenied }

// DenialReason returns the logged reason of a denial, or "" for other errors.
func DenialReason(err error) string {
	var d *DenialError
	if errors.As(err, &d) {
		return d.Reason
	}
	return ""
}

// ValidationError is a 400: the message is safe to return verbatim.
type ValidationError struct {
	Message string
}

func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}

func (e *ValidationError) Error() string { return e.Message }

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
