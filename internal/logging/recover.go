package logging

import (
	"fmt"
	"runtime/debug"

	"github.com/ginjaninja78/sales-batch-processor/internal/errors"
)

// RecoverAndLog recovers from a panic and logs it with the stack trace.
// It must be called directly by a defer statement:
//
//	func() {
//	    defer logging.RecoverAndLog("aggregate", "index", i)
//	    // ...
//	}()
func RecoverAndLog(name string, keysAndValues ...interface{}) {
	if r := recover(); r != nil {
		logPanic(name, r, keysAndValues...)
	}
}

// RecoverToError recovers from a panic and stores it in *errp. It must be
// called directly by a defer statement.
func RecoverToError(name string, errp *error) {
	if r := recover(); r != nil {
		logPanic(name, r)
		if errp != nil {
			*errp = errors.Newf("panic in %s: %v", name, r)
		}
	}
}

func logPanic(name string, value interface{}, keysAndValues ...interface{}) {
	fields := append([]interface{}{
		"source", name,
		"panic", fmt.Sprint(value),
		"stack_trace", string(debug.Stack()),
	}, keysAndValues...)
	Errorw("panic recovered", fields...)
}
