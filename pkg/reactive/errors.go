package reactive

import (
	"fmt"
	"os"

	verrors "github.com/vireo-ui/vireo/internal/errors"
)

// GlobalErrorHandler receives errors that no scope's error-capture hook
// suppressed. When nil, errors are formatted and written to stderr.
var GlobalErrorHandler func(err error, info string)

// errorSink, when set, additionally observes every reported error. Used by
// the server layer for metrics; tests use it to assert on reports.
var errorSink func(err error, info string)

// SetErrorSink installs an observer for all reported errors. Pass nil to
// remove it.
func SetErrorSink(fn func(err error, info string)) {
	errorSink = fn
}

// HandleError reports an error raised during watcher evaluation, a watch
// callback, or a flush.
//
// The error bubbles from scope up through its ancestors: each scope's
// error-capture hook may suppress it by returning true. Unsuppressed
// errors go to GlobalErrorHandler, or failing that are logged to stderr.
func HandleError(err error, scope *Scope, info string) {
	if err == nil {
		return
	}
	if errorSink != nil {
		errorSink(err, info)
	}

	for s := scope; s != nil; s = s.parent {
		if s.errCapture != nil && s.errCapture(err, info) {
			return
		}
	}

	if GlobalErrorHandler != nil {
		GlobalErrorHandler(err, info)
		return
	}
	logError(err, info)
}

// logError writes an error to stderr, using the structured formatter when
// the error carries a code.
func logError(err error, info string) {
	if re, ok := err.(*verrors.RuntimeError); ok {
		fmt.Fprintf(os.Stderr, "%s(in %s)\n", re.Format(), info)
		return
	}
	fmt.Fprintf(os.Stderr, "vireo: error in %s: %v\n", info, err)
}

// recoverToError converts a recovered panic value into an error.
func recoverToError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", r)
}
