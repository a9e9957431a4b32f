//go:build linux

package threadid

import "golang.org/x/sys/unix"

// NativeTID returns the Linux kernel thread id (gettid) of the calling OS
// thread. Because goroutines migrate between OS threads, this value is
// only meaningful for the instant it's read — callers wanting a stable
// per-span identity should use Current, not this function. It exists for
// extensions (e.g. a stack-sampling profiler) that specifically need the
// kernel tid to correlate with /proc or perf data.
func NativeTID() int {
	return unix.Gettid()
}
