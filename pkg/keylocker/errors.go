package keylocker

import "errors"

var (
	// ErrEmptyPassphrase is returned by Deriver when asked to derive a key
	// from a zero-length passphrase.
	ErrEmptyPassphrase = errors.New("keylocker: cannot use an empty passphrase")

	// ErrEntryTooLarge is returned by Put when the serialized entry
	// doesn't fit the per-slot payload capacity for the requested mode.
	ErrEntryTooLarge = errors.New("keylocker: entry too large for a slot of this size")

	// ErrRegionTooSmall is returned when a region can't hold even the
	// minimum viable number of slots.
	ErrRegionTooSmall = errors.New("keylocker: region too small to hold a KeyFile")

	// ErrInvalidMode is returned when a Mode's parameters are nonsensical
	// (e.g. threshold greater than share count).
	ErrInvalidMode = errors.New("keylocker: invalid mode parameters")

	// errInsufficientShares means fewer than the threshold number of
	// slots decoded to a plausible share. Internal: never distinguished
	// from errUnrecoverableEntry at the public boundary.
	errInsufficientShares = errors.New("keylocker: insufficient shares decoded")

	// errUnrecoverableEntry means enough shares decoded but no
	// combination reconstructed a checksum-valid entry. Internal, same
	// reason as errInsufficientShares.
	errUnrecoverableEntry = errors.New("keylocker: no share combination reconstructed a valid entry")

	// errCorruptEntry means a checksum mismatch inside an already-decoded
	// Entry. Reserved for diagnostic callers; never returned by Get in
	// normal operation.
	errCorruptEntry = errors.New("keylocker: entry checksum mismatch")

	// ErrNoEntry is the single public failure mode of Get: a wrong
	// password, a device id mismatch, salt tampering, and insufficient
	// surviving shares are all indistinguishable here, so a tool can't
	// leak "you had the right password but the data is corrupt" to an
	// attacker.
	ErrNoEntry = errors.New("keylocker: no entry recovered")
)
