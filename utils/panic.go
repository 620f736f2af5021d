package utils

import (
	"fmt"
	"runtime/debug"
)

// RecoverToError must be deferred directly. A panic in the calling
// function is turned into an error wrapping sentinel.
func RecoverToError(err *error, sentinel error) {
	r := recover()
	if r != nil {
		*err = fmt.Errorf("%w: PANIC %v\n%s", sentinel, r, debug.Stack())
	}
}
