package errors

import "fmt"

var (
	ErrWorkerPanic           = fmt.Errorf("worker panic")
	ErrInvalidGroupSize      = fmt.Errorf("target group size must be at least 2")
	ErrNotEnoughUsers        = fmt.Errorf("not enough users to form a group")
	ErrMissingEmail          = fmt.Errorf("participant has no email address")
	ErrCalendarNotConfigured = fmt.Errorf("calendar service not configured")
)
