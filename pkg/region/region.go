// Package region presents a uniform "addressable byte range" view over a
// regular file or a byte range of a raw block device. Every KeyFile
// operation goes through a Region; neither the slot codec nor the
// KeyFile engine ever sees an *os.File directly.
package region

import (
	"fmt"
	"os"
)

// IoError wraps an underlying I/O failure with the operation and position
// that triggered it, matching the struct-error shape of
// absfs-encryptfs/errors.go's IOError.
type IoError struct {
	Op  string
	Pos int64
	N   int
	Err error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("region: %s at %d (%d bytes): %v", e.Op, e.Pos, e.N, e.Err)
}

func (e *IoError) Unwrap() error { return e.Err }

// Region is a bounded byte range. All positions are relative to the start
// of the region, not the underlying file or device.
type Region interface {
	// Read returns exactly n bytes starting at pos, or an *IoError on a
	// short read or out-of-range access.
	Read(pos int64, n int) ([]byte, error)
	// Write writes data at pos. On a raw device target, unaligned edges
	// are resolved with read-modify-write against the device's sector
	// size; on a regular file every offset is "aligned".
	Write(pos int64, data []byte) error
	// Size returns the region's length in bytes.
	Size() int64
	// Close releases the underlying file handle.
	Close() error
}

// fileRegion is the common implementation shared by regular files and raw
// block devices; raw devices additionally carry a sectorSize greater than
// one (regular files carry 1) so Write can detect and round out unaligned
// edges.
type fileRegion struct {
	f          *os.File
	base       int64
	length     int64
	sectorSize int64
}

func (r *fileRegion) Size() int64 { return r.length }

func (r *fileRegion) Close() error { return r.f.Close() }

func (r *fileRegion) checkBounds(op string, pos int64, n int) error {
	if pos < 0 || int64(n) < 0 || pos+int64(n) > r.length {
		return &IoError{Op: op, Pos: pos, N: n, Err: fmt.Errorf("out of range (region length %d)", r.length)}
	}
	return nil
}

func (r *fileRegion) Read(pos int64, n int) ([]byte, error) {
	if err := r.checkBounds("read", pos, n); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	got, err := r.f.ReadAt(buf, r.base+pos)
	if err != nil || got != n {
		return nil, &IoError{Op: "read", Pos: pos, N: n, Err: shortReadErr(got, n, err)}
	}
	return buf, nil
}

func (r *fileRegion) Write(pos int64, data []byte) error {
	if err := r.checkBounds("write", pos, len(data)); err != nil {
		return err
	}
	if r.sectorSize <= 1 {
		n, err := r.f.WriteAt(data, r.base+pos)
		if err != nil || n != len(data) {
			return &IoError{Op: "write", Pos: pos, N: len(data), Err: shortReadErr(n, len(data), err)}
		}
		return nil
	}
	return r.writeAligned(pos, data)
}

// writeAligned performs read-modify-write against whole sectors so a raw
// device is never written to at a sub-sector granularity.
func (r *fileRegion) writeAligned(pos int64, data []byte) error {
	// Alignment is computed on absolute device offsets, since the region's
	// base need not itself fall on a sector boundary.
	ss := r.sectorSize
	abs := r.base + pos
	alignedStart := (abs / ss) * ss
	alignedEnd := ((abs + int64(len(data)) + ss - 1) / ss) * ss

	buf := make([]byte, alignedEnd-alignedStart)
	n, err := r.f.ReadAt(buf, alignedStart)
	if err != nil && n != len(buf) {
		return &IoError{Op: "write(read-modify)", Pos: pos, N: len(data), Err: err}
	}
	copy(buf[abs-alignedStart:], data)

	wn, err := r.f.WriteAt(buf, alignedStart)
	if err != nil || wn != len(buf) {
		return &IoError{Op: "write", Pos: pos, N: len(data), Err: shortReadErr(wn, len(buf), err)}
	}
	return nil
}

func shortReadErr(got, want int, err error) error {
	if err != nil {
		return err
	}
	return fmt.Errorf("short transfer: got %d, wanted %d", got, want)
}
