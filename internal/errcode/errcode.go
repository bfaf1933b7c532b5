package errcode

// Business error codes carried in export notifications:
// - 0: no error
// - 4xxx: recoverable/warning conditions (missing resources, export continued)
// - 5xxx: system errors (export aborted)
const (
	OK              = 0
	ResourceMissing = 4004
	SystemError     = 5000
)
