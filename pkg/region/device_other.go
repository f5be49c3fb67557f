//go:build !linux

package region

import (
	"io"
	"os"
)

// probeDevice falls back to a plain seek-to-end for device sizing and
// assumes the traditional 512-byte sector on platforms where the
// BLKSSZGET ioctl doesn't exist.
func probeDevice(f *os.File) (size, sectorSize int64, err error) {
	size, err = f.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, 0, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, 0, err
	}
	return size, 512, nil
}
