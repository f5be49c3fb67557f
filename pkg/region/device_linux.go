//go:build linux

package region

import (
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// probeDevice queries a raw block device's total size by seeking to its
// end (stat(2) reports 0 for block special files, so lseek is the portable
// way to learn device size) and its logical sector size via the
// BLKSSZGET ioctl, falling back to the traditional 512-byte sector if the
// ioctl isn't supported.
func probeDevice(f *os.File) (size, sectorSize int64, err error) {
	size, err = f.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, 0, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, 0, err
	}

	ss, err := unix.IoctlGetInt(int(f.Fd()), unix.BLKSSZGET)
	if err != nil || ss <= 0 {
		return size, 512, nil
	}
	return size, int64(ss), nil
}
