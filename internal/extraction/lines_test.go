package extraction

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("SplitLines", func() {
	It("numbers every line, blank ones included", func() {
		lines := SplitLines("  Cafe Roma \r\n=====\n\nLatte $4.50")
		Expect(lines).To(Equal([]Line{
			{Number: 1, Text: "Cafe Roma", Lower: "cafe roma", Kind: Signal},
			{Number: 2, Text: "=====", Lower: "=====", Kind: Noise},
			{Number: 3, Text: "", Lower: "", Kind: Blank},
			{Number: 4, Text: "Latte $4.50", Lower: "latte $4.50", Kind: Signal},
		}))
	})

	It("returns nothing for empty text", func() {
		Expect(SplitLines("")).To(BeEmpty())
	})

	DescribeTable("kind names",
		func(kind LineKind, name string) {
			Expect(kind.String()).To(Equal(name))
		},
		Entry("blank", Blank, "blank"),
		Entry("noise", Noise, "noise"),
		Entry("signal", Signal, "signal"),
	)
})
