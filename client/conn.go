package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/resp"
	"go.uber.org/zap"
)

var (
	ErrNotConnected    = errors.New("client is not connected")
	ErrUnexpectedReply = errors.New("unexpected reply")
	ErrKeyNotFound     = errors.New("key not found")
)

const keyNotFoundPrefix = "Error Key not found: "

// ReplyError is an error reply sent by the server.
type ReplyError struct {
	Message string
}

func (e *ReplyError) Error() string {
	return e.Message
}

// Conn is a connection to a litecache server. The server does not pipeline,
// so Conn only ever has one request in flight.
type Conn struct {
	mu   sync.Mutex
	conn net.Conn
	rd   *resp.Reader
	wr   *resp.Writer

	log *zap.Logger
}

func New(log *zap.Logger) *Conn {
	if log == nil {
		log = zap.NewNop()
	}

	return &Conn{log: log}
}

func (c *Conn) Connect(ctx context.Context, addr string) error {
	var dialer net.Dialer

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.conn = conn
	c.rd = resp.NewReader(conn)
	c.wr = resp.NewWriter(conn)

	c.log.Debug("Connected", zap.String("addr", addr))

	return nil
}

func (c *Conn) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}

	err := c.conn.Close()
	c.conn = nil

	return err
}

// Do sends one command and returns the payload of the reply. Error replies
// are returned as *ReplyError. If ctx is done before the reply arrives the
// connection is left in an unknown state and should be discarded.
func (c *Conn) Do(ctx context.Context, verb string, args ...string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return "", ErrNotConnected
	}

	conn := c.conn
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			// Unblock the pending write or read
			conn.SetDeadline(time.Now())

		case <-done:
		}
	}()

	bulkArgs := make([]interface{}, len(args))
	for i, arg := range args {
		bulkArgs[i] = arg
	}

	if err := c.wr.WriteMultiBulk(verb, bulkArgs...); err != nil {
		return "", c.ctxErrOr(ctx, err)
	}

	value, _, err := c.rd.ReadValue()
	if err != nil {
		return "", c.ctxErrOr(ctx, err)
	}

	switch value.Type() {
	case resp.SimpleString, resp.BulkString:
		return value.String(), nil

	case resp.Error:
		return "", &ReplyError{Message: value.String()}

	default:
		return "", fmt.Errorf("%w: type %c to %s", ErrUnexpectedReply, value.Type(), verb)
	}
}

func (c *Conn) Ping(ctx context.Context) error {
	reply, err := c.Do(ctx, "PING")
	if err != nil {
		return err
	}

	if reply != "PONG" {
		return fmt.Errorf("%w: %q to PING", ErrUnexpectedReply, reply)
	}

	return nil
}

func (c *Conn) Echo(ctx context.Context, message string) (string, error) {
	return c.Do(ctx, "ECHO", message)
}

// Set writes key. options are sent after the value, e.g. "NX".
func (c *Conn) Set(ctx context.Context, key, value string, options ...string) error {
	_, err := c.Do(ctx, "SET", append([]string{key, value}, options...)...)
	return err
}

// Get returns the value of key, or an error wrapping ErrKeyNotFound.
func (c *Conn) Get(ctx context.Context, key string) (string, error) {
	value, err := c.Do(ctx, "GET", key)

	var replyErr *ReplyError
	if errors.As(err, &replyErr) && strings.HasPrefix(replyErr.Message, keyNotFoundPrefix) {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}

	return value, err
}

func (c *Conn) Command(ctx context.Context) error {
	_, err := c.Do(ctx, "COMMAND")
	return err
}

func (c *Conn) ctxErrOr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	return err
}
