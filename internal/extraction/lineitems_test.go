package extraction

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ExtractLineItems", func() {
	var (
		e        *Extractor
		raw      string
		items    []LineItem
		extraTax float64
	)

	BeforeEach(func() {
		e = New(nil)
	})

	JustBeforeEach(func() {
		items, extraTax = e.ExtractLineItems(raw)
	})

	When("parsing a typical receipt body", func() {
		BeforeEach(func() {
			raw = "Milk $4.99\n\nSubtotal $45.00\nHST 13% $5.85\nTotal $50.85\nVISA TENDER $50.85"
		})

		It("keeps only item lines", func() {
			Expect(items).To(Equal([]LineItem{{Description: "Milk", Price: 4.99}}))
		})

		It("collects the tax amount, not the rate", func() {
			Expect(extraTax).To(Equal(5.85))
		})
	})

	When("several tax lines are present", func() {
		BeforeEach(func() {
			raw = "HST 1.30\nTax 0.70"
		})

		It("sums them", func() {
			Expect(extraTax).To(BeNumerically("~", 2.0, 0.0001))
			Expect(items).To(BeEmpty())
		})
	})

	When("a tax line has no amount", func() {
		BeforeEach(func() {
			raw = "Tax included\nBread 2.49"
		})

		It("adds nothing", func() {
			Expect(extraTax).To(BeZero())
			Expect(items).To(Equal([]LineItem{{Description: "Bread", Price: 2.49}}))
		})
	})

	When("descriptions are missing or numeric", func() {
		BeforeEach(func() {
			raw = "2.50\n12345 6.00\n$3.00"
		})

		It("skips those lines", func() {
			Expect(items).To(BeEmpty())
		})
	})

	When("a price is implausibly large", func() {
		BeforeEach(func() {
			raw = "Boat 123456.00\nRope 99999.00\nAnchor 99998.99"
		})

		It("skips it", func() {
			Expect(items).To(Equal([]LineItem{{Description: "Anchor", Price: 99998.99}}))
		})
	})

	When("items appear in sequence", func() {
		BeforeEach(func() {
			raw = "Bread 2.49\n-----\nEggs 3.99\nApples $1.25"
		})

		It("preserves line order", func() {
			Expect(items).To(Equal([]LineItem{
				{Description: "Bread", Price: 2.49},
				{Description: "Eggs", Price: 3.99},
				{Description: "Apples", Price: 1.25},
			}))
		})
	})

	When("the text is empty", func() {
		BeforeEach(func() {
			raw = ""
		})

		It("returns an empty, non-nil list", func() {
			Expect(items).NotTo(BeNil())
			Expect(items).To(BeEmpty())
			Expect(extraTax).To(BeZero())
		})
	})
})
