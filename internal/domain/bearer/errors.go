package bearer

import "errors"

var (
	ErrUnknownOperation = errors.New("unknown tool")
	ErrPathNotFound     = errors.New("path does not exist")
	ErrPathRequired     = errors.New("path parameter is required")
	ErrInvalidPath      = errors.New("invalid path")
	ErrInvalidArgument  = errors.New("invalid argument")
)

// NotFoundError reports a target path that is missing. It unwraps to
// ErrPathNotFound; Message is the text shown to tool callers.
type NotFoundError struct {
	Path string
	// Inaccessible is set when the path was checked with os.Stat and may
	// exist but cannot be read.
	Inaccessible bool
}

func (e *NotFoundError) Error() string {
	if e.Inaccessible {
		return "path does not exist or is not accessible: " + e.Path
	}
	return "path does not exist: " + e.Path
}

func (e *NotFoundError) Unwrap() error { return ErrPathNotFound }

func (e *NotFoundError) Message() string {
	if e.Inaccessible {
		return "Path does not exist or is not accessible: " + e.Path
	}
	return "Path does not exist: " + e.Path
}
