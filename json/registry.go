package json

import (
	"sync"

	"github.com/Velocidex/json"
)

var (
	mu       sync.RWMutex
	encoders = []customEncoder{}
)

type customEncoder struct {
	sample interface{}
	cb     json.EncoderCallback
}

// RegisterCustomEncoder installs cb for all values of sample's
// type. Call it from an init() function.
func RegisterCustomEncoder(sample interface{}, cb json.EncoderCallback) {
	mu.Lock()
	defer mu.Unlock()

	encoders = append(encoders, customEncoder{sample: sample, cb: cb})
}

func NewEncOpts() *json.EncOpts {
	mu.RLock()
	defer mu.RUnlock()

	opts := json.NewEncOpts()
	for _, e := range encoders {
		opts.WithCallback(e.sample, e.cb)
	}
	return opts
}
