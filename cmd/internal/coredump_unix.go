//go:build linux || darwin

package internal

import "golang.org/x/sys/unix"

// DisableCoreDumps sets RLIMIT_CORE to zero so a crash never leaves a
// process image containing whatever passphrase or key material was live
// in memory on disk. Called once at startup, before anything reads a
// passphrase.
func DisableCoreDumps() error {
	return unix.Setrlimit(unix.RLIMIT_CORE, &unix.Rlimit{Cur: 0, Max: 0})
}
