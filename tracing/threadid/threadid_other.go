//go:build !linux

package threadid

// NativeTID has no portable equivalent outside Linux; callers should treat
// it as advisory only. It returns the goroutine id as a stand-in.
func NativeTID() int {
	return int(Current())
}
