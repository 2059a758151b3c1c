package FerroX

import (
	"errors"
	"sync"

	"github.com/notargets/goferrox/InputParameters"
)

var ErrNoInputSource = errors.New("no FerroX input source set")

// InputSource supplies the reader the shared instance is built from.
type InputSource func() (*InputParameters.Reader, error)

var (
	instanceMu   sync.Mutex
	instance     *FerroX
	inputSource  InputSource
	instanceOpts []Option
)

// SetInputSource configures how GetInstance builds the shared instance. It
// does not affect an instance that already exists.
func SetInputSource(src InputSource, opts ...Option) {
	instanceMu.Lock()
	defer instanceMu.Unlock()
	inputSource = src
	instanceOpts = opts
}

// GetInstance returns the shared FerroX, constructing it on first use.
func GetInstance() (*FerroX, error) {
	instanceMu.Lock()
	defer instanceMu.Unlock()
	if instance != nil {
		return instance, nil
	}
	if inputSource == nil {
		return nil, ErrNoInputSource
	}
	r, err := inputSource()
	if err != nil {
		return nil, err
	}
	fx, err := NewFerroX(r, instanceOpts...)
	if err != nil {
		return nil, err
	}
	instance = fx
	return instance, nil
}

// ResetInstance destroys the shared instance; the next GetInstance ingests
// the input again.
func ResetInstance() {
	instanceMu.Lock()
	defer instanceMu.Unlock()
	if instance != nil {
		instance.Destroy()
		instance = nil
	}
}
