package InputParameters

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

var (
	ErrMissingKey       = errors.New("required input not found")
	ErrBadLength        = errors.New("wrong number of components")
	ErrBadValue         = errors.New("malformed value")
	ErrInvalidParameter = errors.New("parameter out of range")
)

// KeyError ties an input error to the key that caused it.
type KeyError struct {
	Key    string
	Err    error
	Detail string
}

func (e *KeyError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("input %q: %v", e.Key, e.Err)
	}
	return fmt.Sprintf("input %q: %v: %s", e.Key, e.Err, e.Detail)
}

func (e *KeyError) Unwrap() error { return e.Err }

// MissingKeys lists the keys of every ErrMissingKey contained in err, which
// may be a single error or an aggregate produced by Ingest.
func MissingKeys(err error) (keys []string) {
	for _, e := range multierr.Errors(err) {
		var ke *KeyError
		if errors.As(e, &ke) && errors.Is(ke.Err, ErrMissingKey) {
			keys = append(keys, ke.Key)
		}
	}
	return
}
