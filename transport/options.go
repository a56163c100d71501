package transport

import (
	"go.uber.org/zap"

	"github.com/luma/litecache/dispatch"
)

const (
	DefaultReadBufferSize = 4096
)

type Options struct {
	// Host to listen on
	Host string

	// Port to listen on
	Port int

	// Reuseport controls setting SO_REUSEPORT. Without it only a single
	// listener can bind the address.
	Reuseport bool

	// Trace will log every message and reply. This is only useful in local debugging
	Trace bool

	// NumListeners is the number of accept loops, it defaults to the number
	// of CPUs when Reuseport is set and 1 otherwise.
	NumListeners int

	// ReadBufferSize bounds the size of a single client message
	ReadBufferSize int

	Dispatcher *dispatch.Dispatcher

	Log *zap.Logger
}
