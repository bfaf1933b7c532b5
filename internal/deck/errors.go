package deck

import "fmt"

// ValidationError reports input that can never be stored, such as an
// out-of-range slide number or an unknown element type. The mutation it
// belongs to is not applied at all.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports an operation addressed at an entity id that does not
// exist. Deletes of unknown ids surface this rather than succeeding silently,
// so callers never keep dangling references around.
type NotFoundError struct {
	Kind string
	ID   uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

// UpstreamError wraps a failure from a collaborator (store, object storage,
// snapshot renderer). In-memory state is left untouched; the caller decides
// whether to retry or roll back.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// ExportError reports the slide whose capture failed. The whole export is
// aborted; a partial document with missing pages is never produced.
type ExportError struct {
	Slide int
	Err   error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export slide %d: %v", e.Slide, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }
