package errors

// ErrorCode identifies an error category across the API surface
type ErrorCode int

const (
	ErrorCode_INTERNAL ErrorCode = iota
	ErrorCode_INVALID_ARGUMENT
	ErrorCode_NOT_FOUND
	ErrorCode_ALREADY_EXISTS
	ErrorCode_PERMISSION_DENIED
	ErrorCode_UNAUTHENTICATED
	ErrorCode_VALIDATION_FAILED
	ErrorCode_TRANSIENT_STORAGE
	ErrorCode_NOTIFICATION_DELIVERY_FAILED
	ErrorCode_MEETING_NOT_FOUND
	ErrorCode_TASK_NOT_FOUND
	ErrorCode_TEAM_NOT_FOUND
	ErrorCode_MEMBER_NOT_ACTIVE
	ErrorCode_SUMMARIZER_FAILED
)

var codeNames = map[ErrorCode]string{
	ErrorCode_INTERNAL:                     "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:             "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:                    "NOT_FOUND",
	ErrorCode_ALREADY_EXISTS:               "ALREADY_EXISTS",
	ErrorCode_PERMISSION_DENIED:            "PERMISSION_DENIED",
	ErrorCode_UNAUTHENTICATED:              "UNAUTHENTICATED",
	ErrorCode_VALIDATION_FAILED:            "VALIDATION_FAILED",
	ErrorCode_TRANSIENT_STORAGE:            "TRANSIENT_STORAGE",
	ErrorCode_NOTIFICATION_DELIVERY_FAILED: "NOTIFICATION_DELIVERY_FAILED",
	ErrorCode_MEETING_NOT_FOUND:            "MEETING_NOT_FOUND",
	ErrorCode_TASK_NOT_FOUND:               "TASK_NOT_FOUND",
	ErrorCode_TEAM_NOT_FOUND:               "TEAM_NOT_FOUND",
	ErrorCode_MEMBER_NOT_ACTIVE:            "MEMBER_NOT_ACTIVE",
	ErrorCode_SUMMARIZER_FAILED:            "SUMMARIZER_FAILED",
}

// String returns the canonical name of the error code
func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
