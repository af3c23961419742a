//go:build linux

package flywheel

import (
	"time"

	"golang.org/x/sys/unix"
)

// threadCPUTime reads the calling OS thread's CPU time via getrusage(2)
// with RUSAGE_THREAD. Accurate readings require the calling goroutine to be
// pinned with runtime.LockOSThread, which the round driver does for the
// lifetime of each worker's body invocation.
func threadCPUTime() time.Duration {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_THREAD, &ru); err != nil {
		return 0
	}
	return rusageCPU(ru)
}

func processCPUTime() time.Duration {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return 0
	}
	return rusageCPU(ru)
}

func rusageCPU(ru unix.Rusage) time.Duration {
	user := time.Duration(ru.Utime.Sec)*time.Second + time.Duration(ru.Utime.Usec)*time.Microsecond
	sys := time.Duration(ru.Stime.Sec)*time.Second + time.Duration(ru.Stime.Usec)*time.Microsecond
	return user + sys
}
