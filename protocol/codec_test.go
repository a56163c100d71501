package protocol_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/luma/litecache/protocol"
)

var _ = Describe("Codec", func() {
	Describe("EncodeSimple()", func() {
		It("prefixes with + and ends in \r\n", func() {
			Expect(protocol.EncodeSimple("OK")).To(Equal("+OK\r\n"))
			Expect(protocol.EncodeSimple("Hello World")).To(Equal("+Hello World\r\n"))
		})

		It("encodes the empty string", func() {
			Expect(protocol.EncodeSimple("")).To(Equal("+\r\n"))
		})
	})

	Describe("EncodeError()", func() {
		It("prefixes with - and ends in \r\n", func() {
			Expect(protocol.EncodeError("Error")).To(Equal("-Error\r\n"))
			Expect(protocol.EncodeError("Error message")).To(Equal("-Error message\r\n"))
		})
	})

	Describe("EncodeNull()", func() {
		It("is a lone _", func() {
			Expect(protocol.EncodeNull()).To(Equal("_\r\n"))
		})
	})

	Describe("DecodeLength()", func() {
		It("parses array lengths", func() {
			Expect(protocol.DecodeLength("*4")).To(Equal(4))
			Expect(protocol.DecodeLength("*15")).To(Equal(15))
			Expect(protocol.DecodeLength("*100")).To(Equal(100))
		})

		It("parses bulk string lengths", func() {
			Expect(protocol.DecodeLength("$0")).To(Equal(0))
			Expect(protocol.DecodeLength("$11")).To(Equal(11))
		})

		It("decodes negative lengths as 0", func() {
			Expect(protocol.DecodeLength("*-1")).To(Equal(0))
			Expect(protocol.DecodeLength("$-7")).To(Equal(0))
		})

		It("decodes garbage as 0", func() {
			Expect(protocol.DecodeLength("*abc")).To(Equal(0))
			Expect(protocol.DecodeLength("*4x")).To(Equal(0))
			Expect(protocol.DecodeLength("*")).To(Equal(0))
			Expect(protocol.DecodeLength("")).To(Equal(0))
		})
	})
})
