package cmd_test

import (
	"bytes"
	"context"
	"io/ioutil"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/luma/litecache/cmd"
	"github.com/luma/litecache/dispatch"
	"github.com/luma/litecache/storage"
	"github.com/luma/litecache/transport"
)

func run(args ...string) (string, error) {
	out := &bytes.Buffer{}
	cmd.RootCmd.SetOut(out)
	cmd.RootCmd.SetErr(out)
	cmd.RootCmd.SetArgs(args)

	err := cmd.RootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

var _ = Describe("cmd", func() {
	Describe("version", func() {
		It("prints the build info", func() {
			out, err := run("version")
			Expect(err).To(Succeed())
			Expect(out).To(HavePrefix("litecache dev"))
		})
	})

	Describe("call", func() {
		var (
			store *storage.InmemoryStore
			tcp   *transport.TCP
			addr  string
		)

		BeforeEach(func() {
			store = storage.NewInmemoryStore()
			tcp = transport.NewTCP(transport.Options{
				Host:         "127.0.0.1",
				NumListeners: 1,
				Dispatcher:   dispatch.New(dispatch.Options{Store: store}),
			})
			Expect(tcp.Start(context.Background())).To(Succeed())
			addr = tcp.Addr().String()
		})

		AfterEach(func() {
			Expect(tcp.Close()).To(Succeed())
			Expect(store.Close()).To(Succeed())
		})

		It("prints the reply", func() {
			out, err := run("call", "--addr", addr, "SET", "greeting", "hello")
			Expect(err).To(Succeed())
			Expect(out).To(Equal("OK\n"))

			out, err = run("call", "--addr", addr, "GET", "greeting")
			Expect(err).To(Succeed())
			Expect(out).To(Equal("hello\n"))
		})

		It("prints error replies", func() {
			out, err := run("call", "--addr", addr, "GET", "missing")
			Expect(err).To(Succeed())
			Expect(out).To(Equal("(error) Error Key not found: missing\n"))
		})

		It("fails when the server is unreachable", func() {
			Expect(tcp.Close()).To(Succeed())

			_, err := run("call", "--addr", addr, "PING")
			Expect(err).NotTo(Succeed())
		})
	})

	Describe("gen man", func() {
		It("writes man pages", func() {
			dir, err := ioutil.TempDir("", "litecache-man")
			Expect(err).To(Succeed())
			defer os.RemoveAll(dir)

			manDir := filepath.Join(dir, "man")
			_, err = run("gen", "man", "--dir", manDir)
			Expect(err).To(Succeed())

			Expect(filepath.Join(manDir, "litecache-start.1")).To(BeAnExistingFile())
			Expect(filepath.Join(manDir, "litecache-call.1")).To(BeAnExistingFile())
		})
	})
})
