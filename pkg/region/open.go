package region

import (
	"fmt"
	"os"
)

// Open resolves offsetSpec and lengthSpec against target and returns a
// Region bounded to that byte range. target is opened read-write if
// writable, otherwise read-only; a raw block device additionally has its
// logical sector size probed so Write can align.
func Open(target, offsetSpec, lengthSpec string) (Region, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, &IoError{Op: "stat", Err: err}
	}

	flag := os.O_RDWR
	f, err := os.OpenFile(target, flag, 0)
	if err != nil {
		f, err = os.OpenFile(target, os.O_RDONLY, 0)
		if err != nil {
			return nil, &IoError{Op: "open", Err: err}
		}
	}

	isDevice := info.Mode()&os.ModeDevice != 0
	var deviceSize, sectorSize int64
	if isDevice {
		deviceSize, sectorSize, err = probeDevice(f)
		if err != nil {
			f.Close()
			return nil, &IoError{Op: "probe device", Err: err}
		}
	} else {
		deviceSize = info.Size()
		sectorSize = 1
	}

	offset := int64(0)
	if offsetSpec != "" {
		offset, err = ResolveOffset(offsetSpec, deviceSize)
		if err != nil {
			f.Close()
			return nil, err
		}
	}
	length := deviceSize - offset
	if lengthSpec != "" {
		length, err = ResolveLength(lengthSpec, offset, deviceSize)
		if err != nil {
			f.Close()
			return nil, err
		}
	}

	if offset < 0 || length < 0 || offset+length > deviceSize {
		f.Close()
		return nil, &IoError{Op: "open", Err: fmt.Errorf("range [%d,+%d) outside target of size %d", offset, length, deviceSize)}
	}

	return &fileRegion{f: f, base: offset, length: length, sectorSize: sectorSize}, nil
}

// OpenWhole is a convenience for "use the entire target as the region",
// the common case for a regular file KeyFile.
func OpenWhole(target string) (Region, error) {
	return Open(target, "", "")
}
