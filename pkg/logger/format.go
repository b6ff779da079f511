package logger

import (
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
)

// callerPrefix renders "[file.go:line] " with the file name right-aligned
// and cut to 15 characters.
func callerPrefix(pc uintptr) string {
	file, line := "???", 0
	if pc != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{pc}).Next()
		if frame.File != "" {
			file, line = filepath.Base(frame.File), frame.Line
		}
	}
	return fmt.Sprintf("[%15.15s:%3d] ", file, line)
}

// millis renders a duration as "1,234.57 ms".
func millis(d time.Duration) string {
	return humanize.FormatFloat("#,###.##", float64(d.Microseconds())/1000) + " ms"
}

// signedBytes renders a memory delta as "+12 KiB" or "-3.1 MiB".
func signedBytes(delta int64) string {
	sign := "+"
	if delta < 0 {
		sign = "-"
		delta = -delta
	}
	return sign + humanize.IBytes(uint64(delta))
}
