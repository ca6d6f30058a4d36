package paging_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nrfta/keyset-paging"
)

var _ = Describe("CompareValues", func() {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	DescribeTable("should order values of the same kind",
		func(a, b any, expected int) {
			c, err := paging.CompareValues(a, b)
			Expect(err).ToNot(HaveOccurred())
			Expect(c).To(Equal(expected))
		},
		Entry("strings", "alice", "bob", -1),
		Entry("equal strings", "bob", "bob", 0),
		Entry("times", t0.Add(time.Second), t0, 1),
		Entry("bools", false, true, -1),
		Entry("ints", 3, 7, -1),
		Entry("int and int64", 7, int64(7), 0),
		Entry("int64 and float64 from JSON", int64(2), float64(1.5), 1),
		Entry("large int64 stays exact", int64(1<<62+1), int64(1<<62), 1),
	)

	It("should reject mixed kinds", func() {
		_, err := paging.CompareValues("1", 1)
		Expect(err).To(MatchError(ContainSubstring("cannot compare string with int")))

		_, err = paging.CompareValues(t0, "2024-01-01")
		Expect(err).To(HaveOccurred())

		_, err = paging.CompareValues(nil, 1)
		Expect(err).To(HaveOccurred())
	})
})
