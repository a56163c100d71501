package protocol_test

import (
	"errors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/luma/litecache/protocol"
)

var _ = Describe("Cursor", func() {
	Describe("Split()", func() {
		It("keeps the trailing empty token", func() {
			Expect(protocol.Split("*1\r\n$4\r\nping\r\n")).To(Equal([]string{"*1", "$4", "ping", ""}))
		})

		It("returns a single token when there is no delimiter", func() {
			Expect(protocol.Split("*1")).To(Equal([]string{"*1"}))
		})
	})

	Describe("Next()", func() {
		It("walks the tokens in order and then fails", func() {
			c := protocol.NewCursor([]string{"a", "b"})
			Expect(c.Remaining()).To(Equal(2))

			Expect(c.Next()).To(Equal("a"))
			Expect(c.Next()).To(Equal("b"))
			Expect(c.Remaining()).To(Equal(0))

			_, err := c.Next()
			Expect(errors.Is(err, protocol.ErrInsufficientInput)).To(BeTrue())
		})
	})

	Describe("SplitPair()", func() {
		It("returns the literal when the length matches", func() {
			c := protocol.NewCursor([]string{"$11", "hello world", ""})
			Expect(protocol.SplitPair(c)).To(Equal("hello world"))
			Expect(c.Remaining()).To(Equal(1))
		})

		It("counts bytes, not characters", func() {
			c := protocol.NewCursor([]string{"$2", "é"})
			Expect(protocol.SplitPair(c)).To(Equal("é"))
		})

		It("accepts an empty literal with a zero length", func() {
			c := protocol.NewCursor([]string{"$0", ""})
			Expect(protocol.SplitPair(c)).To(Equal(""))
		})

		It("fails when the length does not match", func() {
			c := protocol.NewCursor([]string{"$3", "echo"})
			_, err := protocol.SplitPair(c)
			Expect(err).To(MatchError(protocol.MsgInvalidBulkLength))
		})

		It("fails with insufficient input when a token is missing", func() {
			c := protocol.NewCursor([]string{"$4"})
			_, err := protocol.SplitPair(c)
			Expect(errors.Is(err, protocol.ErrInsufficientInput)).To(BeTrue())
			Expect(err).To(MatchError(protocol.MsgInsufficientInput))
		})
	})
})
