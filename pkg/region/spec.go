package region

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// UsageError signals a malformed offset/length spec from the CLI's
// offset/length grammar, as opposed to an IoError from an actual device
// access.
type UsageError struct {
	Spec string
	Err  error
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("region: invalid spec %q: %v", e.Spec, e.Err)
}

func (e *UsageError) Unwrap() error { return e.Err }

var partitionRelative = regexp.MustCompile(`^(.+)\+(-?\d+[KMG]?)$`)

// ParseSize parses an integer with an optional binary K/M/G suffix, e.g.
// "4K" == 4096, "2M" == 2*1024*1024. Matches
// original_source/system.py's ConvertDataSize(binary_prefix=True).
func ParseSize(spec string) (int64, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return 0, fmt.Errorf("empty size")
	}
	mult := int64(1)
	suffix := spec[len(spec)-1]
	numPart := spec
	switch suffix {
	case 'K', 'k':
		mult = 1024
		numPart = spec[:len(spec)-1]
	case 'M', 'm':
		mult = 1024 * 1024
		numPart = spec[:len(spec)-1]
	case 'G', 'g':
		mult = 1024 * 1024 * 1024
		numPart = spec[:len(spec)-1]
	}
	n, err := strconv.ParseInt(numPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("not an integer: %w", err)
	}
	return n * mult, nil
}

// ResolveOffset resolves an offset spec against a target of the given
// size. Negative values are measured from the end of the target. A
// "<device_partition>+<delta>" form resolves the named partition's start
// via sysfs and adds delta.
func ResolveOffset(spec string, targetSize int64) (int64, error) {
	if m := partitionRelative.FindStringSubmatch(spec); m != nil {
		partStart, _, err := PartitionBounds(m[1])
		if err != nil {
			return 0, &UsageError{Spec: spec, Err: err}
		}
		delta, err := ParseSize(m[2])
		if err != nil {
			return 0, &UsageError{Spec: spec, Err: err}
		}
		return partStart + delta, nil
	}
	n, err := ParseSize(spec)
	if err != nil {
		return 0, &UsageError{Spec: spec, Err: err}
	}
	if n < 0 {
		return targetSize + n, nil
	}
	return n, nil
}

// ResolveLength resolves a length_spec. A negative value means "everything
// up to that many bytes before the end of the target, measured from
// offset". Partition-relative deltas are accepted for symmetry with
// ResolveOffset.
func ResolveLength(spec string, offset, targetSize int64) (int64, error) {
	if m := partitionRelative.FindStringSubmatch(spec); m != nil {
		_, partSize, err := PartitionBounds(m[1])
		if err != nil {
			return 0, &UsageError{Spec: spec, Err: err}
		}
		delta, err := ParseSize(m[2])
		if err != nil {
			return 0, &UsageError{Spec: spec, Err: err}
		}
		return partSize + delta, nil
	}
	n, err := ParseSize(spec)
	if err != nil {
		return 0, &UsageError{Spec: spec, Err: err}
	}
	if n < 0 {
		return targetSize + n - offset, nil
	}
	return n, nil
}

// PartitionBounds returns the absolute byte start and length of a named
// partition device (e.g. "sda1") by reading the kernel's sysfs
// representation, the only partition-table view available without a
// third-party parser. It reads sysfs on every call; nothing in this
// package stores the resolved bounds.
func PartitionBounds(partition string) (start, length int64, err error) {
	partition = strings.TrimPrefix(partition, "/dev/")
	parent := strings.TrimRight(partition, "0123456789")
	base := filepath.Join("/sys/class/block", parent, partition)

	startBytes, err := readSysfsInt(filepath.Join(base, "start"))
	if err != nil {
		return 0, 0, fmt.Errorf("reading partition %q start: %w", partition, err)
	}
	sizeBytes, err := readSysfsInt(filepath.Join(base, "size"))
	if err != nil {
		return 0, 0, fmt.Errorf("reading partition %q size: %w", partition, err)
	}
	// sysfs reports both start and size in 512-byte sectors regardless of
	// the device's logical sector size.
	const sysfsSectorSize = 512
	return startBytes * sysfsSectorSize, sizeBytes * sysfsSectorSize, nil
}

func readSysfsInt(path string) (int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
}
