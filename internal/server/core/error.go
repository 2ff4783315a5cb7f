package core

// Error codes
const (
	ErrInstanceNotFound      = "INSTANCE_NOT_FOUND"
	ErrValidationFailed      = "VALIDATION_FAILED"
	ErrInvalidScheduleFormat = "INVALID_SCHEDULE_FORMAT"
	ErrNoSolution            = "NO_SOLUTION"
	ErrJobNotFound           = "JOB_NOT_FOUND"
	ErrRateLimitExceeded     = "RATE_LIMIT_EXCEEDED"
	ErrInvalidContent        = "INVALID_CONTENT_TYPE"
	ErrInvalidRequest        = "INVALID_REQUEST"
	ErrInternalError         = "INTERNAL_ERROR"
	ErrResourceLimit         = "RESOURCE_LIMIT"
)

// ErrorResponse is the body of every failed API call
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

// ValidationDetails carries a structural violation in an error response
type ValidationDetails struct {
	Kind    string         `json:"kind"`
	Details map[string]int `json:"details"`
}

// FormatDetails locates unparseable schedule text in an error response
type FormatDetails struct {
	Round int    `json:"round"`
	Group int    `json:"group"`
	Token string `json:"token"`
}
