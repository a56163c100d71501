package client_test

import (
	"context"
	"errors"
	"net"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/luma/litecache/client"
	"github.com/luma/litecache/dispatch"
	"github.com/luma/litecache/storage"
	"github.com/luma/litecache/transport"
)

var _ = Describe("client / Conn", func() {
	var (
		ctx    context.Context
		cancel context.CancelFunc
		store  *storage.InmemoryStore
		tcp    *transport.TCP
		conn   *client.Conn
	)

	BeforeEach(func() {
		ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)

		store = storage.NewInmemoryStore()
		tcp = transport.NewTCP(transport.Options{
			Host:         "127.0.0.1",
			Port:         0,
			NumListeners: 1,
			Dispatcher:   dispatch.New(dispatch.Options{Store: store}),
			Log:          zap.NewNop(),
		})
		Expect(tcp.Start(ctx)).To(Succeed())

		conn = client.New(zap.NewNop())
		Expect(conn.Connect(ctx, tcp.Addr().String())).To(Succeed())
	})

	AfterEach(func() {
		Expect(conn.Disconnect()).To(Succeed())
		Expect(tcp.Close()).To(Succeed())
		Expect(store.Close()).To(Succeed())
		cancel()
	})

	It("pings", func() {
		Expect(conn.Ping(ctx)).To(Succeed())
	})

	It("echoes", func() {
		Expect(conn.Echo(ctx, "hello !@#$%^& world")).To(Equal("hello !@#$%^& world"))
	})

	It("sets and gets", func() {
		Expect(conn.Set(ctx, "testKey", "testValue")).To(Succeed())
		Expect(conn.Get(ctx, "testKey")).To(Equal("testValue"))

		value, ok, err := store.Get(ctx, "testKey")
		Expect(err).To(Succeed())
		Expect(ok).To(BeTrue())
		Expect(value).To(Equal("testValue"))
	})

	It("sends SET options", func() {
		Expect(conn.Set(ctx, "k", "v", "NX")).To(Succeed())
		Expect(conn.Get(ctx, "k")).To(Equal("v"))
	})

	It("reports missing keys", func() {
		_, err := conn.Get(ctx, "missing")
		Expect(errors.Is(err, client.ErrKeyNotFound)).To(BeTrue())
	})

	It("returns error replies", func() {
		_, err := conn.Do(ctx, "ZZZZ")

		var replyErr *client.ReplyError
		Expect(errors.As(err, &replyErr)).To(BeTrue())
		Expect(replyErr.Message).To(Equal("Command ZZZZ not found"))

		// The connection stays usable after a protocol error
		Expect(conn.Ping(ctx)).To(Succeed())
	})

	It("answers COMMAND", func() {
		Expect(conn.Command(ctx)).To(Succeed())
	})

	It("fails when not connected", func() {
		idle := client.New(nil)
		_, err := idle.Do(ctx, "PING")
		Expect(err).To(MatchError(client.ErrNotConnected))
	})

	It("gives up when the context is done", func() {
		// A server that accepts but never answers
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).To(Succeed())
		defer listener.Close()

		go func() {
			defer GinkgoRecover()
			c, err := listener.Accept()
			if err == nil {
				defer c.Close()
				time.Sleep(2 * time.Second)
			}
		}()

		silent := client.New(nil)
		Expect(silent.Connect(ctx, listener.Addr().String())).To(Succeed())
		defer silent.Disconnect()

		shortCtx, shortCancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer shortCancel()

		Expect(silent.Ping(shortCtx)).To(MatchError(context.DeadlineExceeded))
	})
})
