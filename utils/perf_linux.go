//go:build linux

package utils

import (
	"fmt"
	"runtime"

	perf "github.com/hodgesds/perf-utils"
)

// CountInstructions runs f once on a locked OS thread and returns the number
// of retired CPU instructions reported by the kernel perf counters. When the
// counters cannot be opened f still runs and the error wraps
// ErrPerfUnsupported.
func CountInstructions(f func() error) (uint64, error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	var (
		ran  bool
		fErr error
	)
	pv, err := perf.CPUInstructions(func() error {
		ran = true
		fErr = f()
		return fErr
	})
	if !ran {
		if fErr = f(); fErr != nil {
			return 0, fErr
		}
		return 0, fmt.Errorf("%w: %v", ErrPerfUnsupported, err)
	}
	if fErr != nil {
		return 0, fErr
	}
	if err != nil {
		return 0, err
	}
	return pv.Value, nil
}
