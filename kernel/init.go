package kernel

import (
	"sync"

	"github.com/wippyai/typeconv/errors"
	"github.com/wippyai/typeconv/host"
	"github.com/wippyai/typeconv/types"
)

var initOnce sync.Once

// Init performs process-wide setup: builtin type registration for type-valued
// slots. It is safe to call any number of times and is called by the
// instantiate functions.
func Init() {
	initOnce.Do(func() {
		types.Init()
		Logger().Debug("kernel initialized")
	})
}

func initHost(h host.Host) error {
	Init()
	if ini, ok := h.(host.Initializer); ok {
		if err := ini.Init(); err != nil {
			return errors.Wrap(errors.PhaseHost, errors.KindHostFailure, err, "host initialization failed")
		}
	}
	return nil
}
