package extraction

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ScanAmounts", func() {
	var (
		raw  string
		scan AmountScan
	)

	JustBeforeEach(func() {
		scan = ScanAmounts(raw)
	})

	When("the text contains several amounts", func() {
		BeforeEach(func() {
			raw = "Milk $4.99\nBread 2.5\nTotal $70.00"
		})

		It("returns them in text order", func() {
			Expect(scan.Values).To(Equal([]float64{4.99, 2.5, 70}))
		})

		It("reports the largest", func() {
			Expect(scan.Max).To(Equal(70.0))
		})
	})

	When("an amount is glued to a hyphen", func() {
		BeforeEach(func() {
			raw = "Call 555-12.34\nRef 12.50-A\nTotal 8.00"
		})

		It("skips it", func() {
			Expect(scan.Values).To(Equal([]float64{8}))
		})
	})

	When("an amount is implausibly large", func() {
		BeforeEach(func() {
			raw = "Auth 1234567.89\nTotal 15.25"
		})

		It("discards it", func() {
			Expect(scan.Max).To(Equal(15.25))
		})
	})

	When("a value sits exactly on the ceiling", func() {
		BeforeEach(func() {
			raw = "999999.00"
		})

		It("discards it", func() {
			Expect(scan.Values).To(BeEmpty())
			Expect(scan.Max).To(BeZero())
		})
	})

	When("the text has no amounts", func() {
		BeforeEach(func() {
			raw = "Thank you for shopping"
		})

		It("reports zero", func() {
			Expect(scan.Values).To(BeEmpty())
			Expect(scan.Max).To(BeZero())
		})
	})

	When("a token has more than two decimals", func() {
		BeforeEach(func() {
			raw = "Qty 12.345"
		})

		It("keeps the first two", func() {
			Expect(scan.Values).To(Equal([]float64{12.34}))
		})
	})
})

var _ = DescribeTable("ReconcileTotal",
	func(hinted, scanned, wantTotal, wantBase float64) {
		total, base := ReconcileTotal(hinted, scanned)
		Expect(total).To(Equal(wantTotal))
		Expect(base).To(Equal(wantBase))
	},
	Entry("a much larger scanned amount overrides the hint", 40.0, 70.0, 70.0, 40.0),
	Entry("a slightly larger scanned amount keeps the hint", 40.0, 45.0, 40.0, 40.0),
	Entry("exactly half again keeps the hint", 40.0, 60.0, 40.0, 40.0),
	Entry("a smaller scanned amount keeps the hint", 40.0, 30.0, 40.0, 40.0),
	Entry("no hint falls back to the scan", 0.0, 23.5, 23.5, 0.0),
	Entry("nothing at all yields zero", 0.0, 0.0, 0.0, 0.0),
	Entry("a negative hint counts as absent", -5.0, 12.0, 12.0, 0.0),
	Entry("values are rounded to cents", 19.999, 0.0, 20.0, 20.0),
)
