package presence

import (
	"os"
	"syscall"
	"time"
)

// nowFunc is overridable in tests.
var nowFunc = time.Now

// IsProcessAlive probes pid with signal 0, the same liveness check
// internal/daemon/pidfile.go's isProcessRunning performs: FindProcess
// always succeeds on Unix, so the real test is whether Signal(0) returns
// ESRCH (dead) or succeeds/EPERM (alive).
var IsProcessAlive = func(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	if err == syscall.EPERM {
		return true
	}
	return false
}
