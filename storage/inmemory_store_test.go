package storage_test

import (
	"context"
	"fmt"
	"sync"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/tidwall/gjson"

	"github.com/luma/litecache/storage"
)

var _ = Describe("storage / InmemoryStore", func() {
	var (
		ctx   context.Context
		store *storage.InmemoryStore
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = storage.NewInmemoryStore()
	})

	AfterEach(func() {
		Expect(store.Close()).To(Succeed())
	})

	Describe("Close()", func() {
		It("does not panic when closed twice", func() {
			Expect(func() { store.Close() }).NotTo(Panic())
			Expect(func() { store.Close() }).NotTo(Panic())
		})

		It("closes update channels", func() {
			updates, _ := store.ListenToUpdates()
			Expect(store.Close()).To(Succeed())
			Eventually(updates).Should(BeClosed())
		})
	})

	Describe("Set() / Get()", func() {
		It("can read a key that is written", func() {
			Expect(store.Set(ctx, "foo", "bar")).To(Succeed())

			value, ok, err := store.Get(ctx, "foo")
			Expect(err).To(Succeed())
			Expect(ok).To(BeTrue())
			Expect(value).To(Equal("bar"))
		})

		It("reports keys that were never set", func() {
			_, ok, err := store.Get(ctx, "missing")
			Expect(err).To(Succeed())
			Expect(ok).To(BeFalse())
		})

		It("overwrites existing keys", func() {
			Expect(store.Set(ctx, "foo", "bar")).To(Succeed())
			Expect(store.Set(ctx, "foo", "baz")).To(Succeed())

			value, _, _ := store.Get(ctx, "foo")
			Expect(value).To(Equal("baz"))
			Expect(store.Len()).To(Equal(1))
		})

		It("stores the empty key", func() {
			Expect(store.Set(ctx, "", "empty")).To(Succeed())

			value, ok, _ := store.Get(ctx, "")
			Expect(ok).To(BeTrue())
			Expect(value).To(Equal("empty"))
		})

		It("is safe for concurrent writers and readers", func() {
			var wg sync.WaitGroup

			for w := 0; w < 16; w++ {
				wg.Add(1)
				go func(w int) {
					defer GinkgoRecover()
					defer wg.Done()

					for n := 0; n < 200; n++ {
						key := fmt.Sprintf("key-%d", n)
						Expect(store.Set(ctx, key, fmt.Sprintf("value-%d", w))).To(Succeed())

						value, ok, err := store.Get(ctx, key)
						Expect(err).To(Succeed())
						Expect(ok).To(BeTrue())
						Expect(value).To(HavePrefix("value-"))
					}
				}(w)
			}

			wg.Wait()
			Expect(store.Len()).To(Equal(200))
		})
	})

	Describe("Backup()", func() {
		It("an empty inmemory store equals {}", func() {
			value, err := store.Backup()
			Expect(err).To(Succeed())
			Expect(string(value)).To(Equal(`{}`))
		})

		It("includes every key", func() {
			Expect(store.Set(ctx, "foo", "bar")).To(Succeed())
			Expect(store.Set(ctx, "a.b", "dotted")).To(Succeed())

			value, err := store.Backup()
			Expect(err).To(Succeed())
			Expect(gjson.ValidBytes(value)).To(BeTrue())
			Expect(gjson.GetBytes(value, "foo").String()).To(Equal("bar"))
			Expect(gjson.GetBytes(value, `a\.b`).String()).To(Equal("dotted"))
		})
	})

	Describe("ListenToUpdates()", func() {
		It("sends on the update channel when values are set", func() {
			updates, stop := store.ListenToUpdates()
			defer stop()

			Expect(store.Set(ctx, "foo", "bar")).To(Succeed())

			var update *storage.Update
			Eventually(updates).Should(Receive(&update))
			Expect(update).To(Equal(&storage.Update{Key: "foo", Value: "bar"}))
		})

		It("stops delivering once stopped", func() {
			updates, stop := store.ListenToUpdates()
			stop()
			Expect(func() { stop() }).NotTo(Panic())

			Expect(store.Set(ctx, "foo", "bar")).To(Succeed())
			Eventually(updates).Should(BeClosed())
		})

		It("drops updates for a full listener instead of blocking", func() {
			_, stop := store.ListenToUpdates()
			defer stop()

			for n := 0; n < storage.UpdateBufferSize+10; n++ {
				Expect(store.Set(ctx, "foo", fmt.Sprint(n))).To(Succeed())
			}
		})
	})
})
