// Package guard isolates faults in user-extensible hooks.
//
// Tool and tune implementations are third-party code: a panic or error in
// one must not cancel sibling hooks or the surrounding operation. Every
// extension call site wraps the hook with Run or Value, which recover
// panics, log the failure with its scope, and report absence instead of
// propagating.
package guard

import (
	"fmt"

	"github.com/dshills/stanza/internal/log"
)

// Run executes fn with panic recovery. A panic or returned error is logged
// against scope and reported as ok=false; it never propagates.
func Run(logger *log.Logger, scope string, fn func() error) (ok bool) {
	err := protect(fn)
	if err != nil {
		if logger == nil {
			logger = log.Null
		}
		logger.Warn("%s failed: %v", scope, err)
		return false
	}
	return true
}

// Value executes fn with panic recovery and returns its result. On panic or
// error the zero value is returned with ok=false and the failure is logged
// against scope.
func Value[T any](logger *log.Logger, scope string, fn func() (T, error)) (value T, ok bool) {
	var zero T
	err := protect(func() error {
		var innerErr error
		value, innerErr = fn()
		return innerErr
	})
	if err != nil {
		if logger == nil {
			logger = log.Null
		}
		logger.Warn("%s failed: %v", scope, err)
		return zero, false
	}
	return value, true
}

// protect runs fn converting panics into errors.
func protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
