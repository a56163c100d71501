// Package dispatch turns one raw client message into one reply, executing the
// parsed command against the shared store.
package dispatch

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/luma/litecache/internal/metrics"
	"github.com/luma/litecache/protocol"
	"github.com/luma/litecache/storage"
)

const (
	replyPong = "PONG"
	replyOk   = "OK"

	verbUnknown = "unknown"
)

type Options struct {
	Store storage.Store

	Log *zap.Logger

	// Metrics is optional
	Metrics *metrics.Recorder
}

type Dispatcher struct {
	store   storage.Store
	log     *zap.Logger
	metrics *metrics.Recorder
}

func New(options Options) *Dispatcher {
	log := options.Log
	if log == nil {
		log = zap.NewNop()
	}

	return &Dispatcher{
		store:   options.Store,
		log:     log,
		metrics: options.Metrics,
	}
}

// Reply processes raw and always returns one complete reply line, rendering
// any failure as an error reply.
func (d *Dispatcher) Reply(ctx context.Context, raw string) string {
	reply, err := d.ProcessMessage(ctx, raw)
	if err != nil {
		return protocol.RenderError(err)
	}

	return reply
}

// ProcessMessage validates the framing of raw, parses the command it holds
// and executes it. Failures are returned as *protocol.RequestError, except
// for store faults which are returned as is.
func (d *Dispatcher) ProcessMessage(ctx context.Context, raw string) (reply string, err error) {
	start := time.Now()
	verb := verbUnknown

	defer func() {
		d.observe(verb, err, time.Since(start))
	}()

	if !strings.HasPrefix(raw, string(protocol.MarkerArray)) {
		return "", protocol.InvalidRequest(protocol.MsgInvalidFormat)
	}

	tokens := protocol.Split(raw)
	c := protocol.NewCursor(tokens)

	header, _ := c.Next()

	// Each element is a length header and a literal. The integer division
	// lets the empty token after a final delimiter through.
	if protocol.DecodeLength(header) != (len(tokens)-1)/2 {
		return "", protocol.InvalidRequest(protocol.MsgInvalidArrayLength)
	}

	cmd, err := protocol.ParseCommand(c)
	if err != nil {
		return "", err
	}

	verb = string(cmd.Verb())

	return d.execute(ctx, cmd)
}

func (d *Dispatcher) execute(ctx context.Context, cmd protocol.Command) (string, error) {
	switch c := cmd.(type) {
	case protocol.PingCommand:
		return protocol.EncodeSimple(replyPong), nil

	case *protocol.EchoCommand:
		return protocol.EncodeSimple(c.Message), nil

	case *protocol.SetCommand:
		if err := d.store.Set(ctx, c.Key, c.Value); err != nil {
			return "", err
		}

		d.log.Debug("Set key",
			zap.String("key", c.Key),
			zap.Bool("nx", c.NX),
			zap.Bool("xx", c.XX))

		return protocol.EncodeSimple(replyOk), nil

	case *protocol.GetCommand:
		value, ok, err := d.store.Get(ctx, c.Key)
		if err != nil {
			return "", err
		}

		if !ok {
			return "", protocol.KeyNotFound(c.Key)
		}

		return protocol.EncodeSimple(value), nil

	case protocol.CommandInfoCommand:
		return protocol.EncodeSimple(replyOk), nil

	default:
		return "", protocol.InvalidRequest("Command " + string(cmd.Verb()) + " not found")
	}
}

func (d *Dispatcher) observe(verb string, err error, took time.Duration) {
	outcome := metrics.OutcomeOK

	var reqErr *protocol.RequestError
	if errors.As(err, &reqErr) {
		outcome = reqErr.Kind.String()
	} else if err != nil {
		outcome = metrics.OutcomeError
	}

	d.metrics.Observe(verb, outcome, took)

	if err != nil {
		d.log.Debug("Request failed",
			zap.String("verb", verb),
			zap.String("outcome", outcome),
			zap.Error(err))
	}
}
