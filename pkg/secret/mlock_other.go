//go:build !linux && !darwin

package secret

import "errors"

func lockMemory(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return errors.New("secret: memory locking not supported on this platform")
}

func unlockMemory(b []byte) error {
	return nil
}
