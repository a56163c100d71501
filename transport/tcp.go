package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"runtime"
	"strconv"
	"strings"
	"sync"

	reuseport "github.com/kavu/go_reuseport"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/luma/litecache/dispatch"
)

type TCP struct {
	cancel     context.CancelFunc
	stopWaiter sync.WaitGroup

	addr      string
	reuseport bool

	numListeners int
	listeners    []*TCPListener

	dispatcher     *dispatch.Dispatcher
	readBufferSize int

	log   *zap.Logger
	trace bool
}

func NewTCP(options Options) *TCP {
	numListeners := options.NumListeners

	if numListeners < 1 {
		numListeners = 1

		if options.Reuseport {
			numListeners = runtime.NumCPU()
		}
	}

	readBufferSize := options.ReadBufferSize
	if readBufferSize < 1 {
		readBufferSize = DefaultReadBufferSize
	}

	log := options.Log
	if log == nil {
		log = zap.NewNop()
	}

	return &TCP{
		addr:           net.JoinHostPort(options.Host, strconv.Itoa(options.Port)),
		reuseport:      options.Reuseport,
		numListeners:   numListeners,
		listeners:      make([]*TCPListener, 0, numListeners),
		dispatcher:     options.Dispatcher,
		readBufferSize: readBufferSize,
		trace:          options.Trace,
		log:            log,
	}
}

// Start binds every listener and then accepts connections in the
// background. When Start returns without error the server is reachable.
func (w *TCP) Start(parentCtx context.Context) error {
	ctx, cancel := context.WithCancel(parentCtx)
	w.cancel = cancel

	w.log.Info("Starting tcp listeners", zap.Int("count", w.numListeners))

	for i := 0; i < w.numListeners; i++ {
		if err := w.startListener(ctx, i); err != nil {
			return multierr.Append(err, w.Close())
		}
	}

	return nil
}

// Addr returns the address the first listener is bound to, or nil before
// Start.
func (w *TCP) Addr() net.Addr {
	if len(w.listeners) == 0 {
		return nil
	}

	return w.listeners[0].Addr()
}

func (w *TCP) startListener(ctx context.Context, n int) error {
	listener, err := NewTCPListener(ctx, ListenerOptions{
		Addr:           w.addr,
		Reuseport:      w.reuseport,
		Dispatcher:     w.dispatcher,
		ReadBufferSize: w.readBufferSize,
		Trace:          w.trace,
		Log:            w.log.Named("listener").With(zap.Int("listener", n)),
	})
	if err != nil {
		return err
	}

	w.listeners = append(w.listeners, listener)
	w.stopWaiter.Add(1)

	go func() {
		defer w.stopWaiter.Done()

		if err := listener.Serve(); err != nil {
			// TODO(rolly) as any of the listeners can fail, but we don't treat this as fatal,
			//             you can end up with less than the required amount of listeners running
			w.log.Error("Listener failed", zap.Error(err))
		}
	}()

	return nil
}

// Close immediately closes all listeners and active connections, and waits
// for their goroutines to exit.
func (w *TCP) Close() (err error) {
	w.log.Info("Stopping TCP server")

	if w.cancel != nil {
		w.cancel()
	}

	for _, listener := range w.listeners {
		err = multierr.Append(err, listener.Close())
	}

	w.stopWaiter.Wait()
	w.log.Info("TCP server stopped")

	return err
}

type ListenerOptions struct {
	Addr           string
	Reuseport      bool
	Dispatcher     *dispatch.Dispatcher
	ReadBufferSize int
	Trace          bool
	Log            *zap.Logger
}

type TCPListener struct {
	ctx context.Context

	listener net.Listener
	log      *zap.Logger

	mu          sync.Mutex
	activeConns map[*TCPConn]struct{}
	connWaiter  sync.WaitGroup
	closeOnce   sync.Once

	dispatcher     *dispatch.Dispatcher
	readBufferSize int
	trace          bool
}

func NewTCPListener(ctx context.Context, options ListenerOptions) (*TCPListener, error) {
	var (
		listener net.Listener
		err      error
	)

	if options.Reuseport {
		listener, err = reuseport.Listen("tcp", options.Addr)
	} else {
		listener, err = net.Listen("tcp", options.Addr)
	}

	if err != nil {
		return nil, err
	}

	return &TCPListener{
		ctx:            ctx,
		listener:       listener,
		activeConns:    make(map[*TCPConn]struct{}),
		dispatcher:     options.Dispatcher,
		readBufferSize: options.ReadBufferSize,
		trace:          options.Trace,
		log:            options.Log,
	}, nil
}

func (t *TCPListener) Addr() net.Addr {
	return t.listener.Addr()
}

// Close stops accepting and closes every active connection.
func (t *TCPListener) Close() (err error) {
	t.closeOnce.Do(func() {
		if cerr := t.listener.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) {
			err = cerr
		}

		t.mu.Lock()
		defer t.mu.Unlock()

		for conn := range t.activeConns {
			err = multierr.Append(err, conn.Close())
		}
	})

	return err
}

// Serve accepts connections until the listener is closed or its context is
// cancelled, then waits for every connection to finish.
func (t *TCPListener) Serve() error {
	go func() {
		<-t.ctx.Done()

		if err := t.Close(); err != nil {
			t.log.Warn("TCP Listener did not close cleanly", zap.Error(err))
		}
	}()

	defer func() {
		t.log.Info("Waiting for connections to stop")
		t.connWaiter.Wait()
		t.log.Info("Listener stopped")
	}()

	for {
		conn, err := t.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				// The listener was closed while we were waiting for new connections
				// that's fine.
				return nil
			}

			return err
		}

		tcpConn := NewTCPConn(t.ctx, conn, t.dispatcher, t.readBufferSize, t.trace,
			t.log.Named("conn").With(zap.String("remoteAddr", conn.RemoteAddr().String())))

		if !t.addConn(tcpConn) {
			conn.Close()
			return nil
		}

		t.connWaiter.Add(1)

		go func() {
			defer t.connWaiter.Done()
			defer t.removeConn(tcpConn)

			tcpConn.Start()
		}()
	}
}

// addConn tracks conn, unless the listener is already shutting down.
func (t *TCPListener) addConn(conn *TCPConn) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.ctx.Err() != nil {
		return false
	}

	t.activeConns[conn] = struct{}{}
	return true
}

func (t *TCPListener) removeConn(conn *TCPConn) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.activeConns, conn)
}

// TCPConn serves one client. Messages are handled strictly in order: each
// reply is fully written before the next read.
type TCPConn struct {
	ctx       context.Context
	conn      net.Conn
	closeOnce sync.Once

	dispatcher *dispatch.Dispatcher
	buf        []byte
	trace      bool

	log *zap.Logger
}

func NewTCPConn(
	ctx context.Context,
	conn net.Conn,
	dispatcher *dispatch.Dispatcher,
	readBufferSize int,
	trace bool,
	log *zap.Logger,
) *TCPConn {
	return &TCPConn{
		ctx:        ctx,
		conn:       conn,
		dispatcher: dispatcher,
		buf:        make([]byte, readBufferSize),
		trace:      trace,
		log:        log,
	}
}

func (t *TCPConn) Close() (err error) {
	t.closeOnce.Do(func() {
		err = t.conn.Close()
	})

	return err
}

// Start runs the read loop until the client goes away or the connection is
// closed.
func (t *TCPConn) Start() {
	t.log.Info("Accepted connection")

	defer func() {
		if err := t.Close(); err != nil {
			t.log.Warn("Failed to close connection cleanly", zap.Error(err))
		}
	}()

	t.ReadLoop()
}

func (t *TCPConn) ReadLoop() {
	for {
		n, err := t.conn.Read(t.buf)
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				t.log.Info("Connection closed by client")
			case errors.Is(err, net.ErrClosed):
				t.log.Debug("Connection closed")
			default:
				t.log.Warn("Failed to read from connection", zap.Error(err))
			}

			return
		}

		message := strings.ToValidUTF8(string(t.buf[:n]), "\uFFFD")
		reply := t.dispatcher.Reply(t.ctx, message)

		if t.trace {
			t.log.Info("Dispatched message",
				zap.String("message", message),
				zap.String("reply", reply))
		}

		if _, err := io.WriteString(t.conn, reply); err != nil {
			t.log.Warn("Failed to write reply", zap.Error(err))
			return
		}
	}
}
