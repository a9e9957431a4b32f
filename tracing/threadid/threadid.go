// Package threadid obtains a stable per-task identity to stamp onto spans
// and events. Go has no portable OS thread id (the runtime schedules
// goroutines onto OS threads N:M), so the identity captured here is the
// calling goroutine's id, which is the closest stable per-task identity
// available without cgo. On Linux this is supplemented by the real kernel
// thread id where cheaply obtainable.
package threadid

import (
	"bytes"
	"runtime"
	"strconv"
)

// Current returns an identifier for the calling goroutine, stable for the
// lifetime of that goroutine. It parses runtime.Stack's header on every
// platform; the Linux kernel thread id is available separately through
// NativeTID (threadid_linux.go), which Current does not use.
func Current() uint64 {
	return goroutineID()
}

// goroutineID parses the numeric id out of runtime.Stack's header line
// ("goroutine 123 [running]:"). This is the same trick used by most
// goroutine-local-storage shims in the ecosystem; it is deliberately not
// exposed as a general-purpose API since the runtime does not guarantee
// the format, only that it is stable within a given Go release.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}
	id, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
