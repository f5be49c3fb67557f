//go:build !linux && !darwin

package internal

// DisableCoreDumps is a no-op on platforms without an RLIMIT_CORE
// equivalent reachable through golang.org/x/sys/unix.
func DisableCoreDumps() error {
	return nil
}
