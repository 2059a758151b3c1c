//go:build !linux

package utils

// CountInstructions runs f and reports ErrPerfUnsupported alongside f's own
// error, since no instruction count is available on this platform.
func CountInstructions(f func() error) (uint64, error) {
	if err := f(); err != nil {
		return 0, err
	}
	return 0, ErrPerfUnsupported
}
