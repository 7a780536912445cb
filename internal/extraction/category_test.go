package extraction

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Classify", func() {
	var e *Extractor

	BeforeEach(func() {
		e = New(nil)
	})

	DescribeTable("scoring",
		func(raw, want string) {
			Expect(e.Classify(raw)).To(Equal(want))
		},
		Entry("grocery keywords", "COSTCO WHOLESALE\nMilk 4.99\nEggs 3.49", "Groceries"),
		Entry("food keywords", "Burger Bar & Restaurant", "Food"),
		Entry("travel keywords", "Uber trip", "Fuel/Travel"),
		Entry("fuel and travel keywords share one category", "Gas station\nTaxi voucher\nFood court", "Fuel/Travel"),
		Entry("the highest count wins over table order", "milk\ncafe dining meal", "Food"),
		Entry("a tie goes to the earlier category", "egg cafe", "Groceries"),
		Entry("a later tie still favours table order", "shell market", "Fuel/Travel"),
		Entry("nothing matches", "Parking 3.00", "Other"),
		Entry("empty text", "", "Other"),
	)

	It("counts each keyword once", func() {
		Expect(e.Classify("milk milk milk\nrestaurant cafe")).To(Equal("Food"))
	})

	It("evaluates categories in a fixed order", func() {
		Expect(DefaultTables().CategoryNames()).To(Equal([]string{
			"Groceries", "Food", "Fuel/Travel", "Shopping", "Other",
		}))
	})
})
