package converge

import (
	"fmt"
	"runtime"
	"strings"
)

// RecoverHandler is installed with defer around externally supplied callbacks
// such as state observers, so a panicking subscriber cannot take the session
// machine down with it.
type RecoverHandler func(site string, fields ...map[string]any)

// MakeRecoverHandler builds a RecoverHandler that reports recovered panics
// through the given logger.
func MakeRecoverHandler(logger Logger) RecoverHandler {
	logger = NormalizeLogger(logger)
	return func(site string, fields ...map[string]any) {
		if err := recover(); err != nil {
			stack := make([]byte, 8096)
			n := runtime.Stack(stack, false)
			logger.Error("recovered from panic in %s: %v (%T)%s\n%s",
				site, err, err, formatRecoverFields(fields), cleanStackTrace(stack[:n]))
		}
	}
}

func formatRecoverFields(fields []map[string]any) string {
	if len(fields) == 0 || len(fields[0]) == 0 {
		return ""
	}
	return " " + formatLogFields(fields[0])
}

// cleanStackTrace drops the frames above the panic call so the log points at
// the offending callback, not the runtime.
func cleanStackTrace(stack []byte) []byte {
	lines := strings.Split(string(stack), "\n")
	for i, line := range lines {
		if strings.Contains(line, "panic(") {
			if i+2 < len(lines) {
				lines = lines[i+2:]
			}
			break
		}
	}
	return []byte(strings.Join(lines, "\n"))
}

// GoroutineID reports the current goroutine id for correlation in panic logs.
func GoroutineID() uint64 {
	buf := make([]byte, 64)
	buf = buf[:runtime.Stack(buf, false)]
	fields := strings.Fields(strings.TrimPrefix(string(buf), "goroutine "))
	if len(fields) == 0 {
		return 0
	}
	var id uint64
	fmt.Sscanf(fields[0], "%d", &id)
	return id
}
