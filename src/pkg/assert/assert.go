package assert

import (
	"fmt"
	"path/filepath"
	"runtime"
)

// Assert panics when condition is false. Use it for programmer errors only,
// never for conditions a caller can legitimately trigger.
func Assert(condition bool, args ...any) {
	if condition {
		return
	}

	_, file, line, ok := runtime.Caller(1)
	if !ok {
		file = "unknown"
		line = 0
	}

	filename := filepath.Base(file)

	if len(args) > 0 {
		format := args[0].(string)
		message := fmt.Sprintf(format, args[1:]...)
		panic(fmt.Sprintf("assertion failed: %s at %s:%d", message, filename, line))
	}

	panic(fmt.Sprintf("assertion failed at %s:%d", filename, line))
}

func NoError(err error) {
	Assert(err == nil, "expected no error, got: %v", err)
}
