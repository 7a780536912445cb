package scanning

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("PlainText", func() {
	var scanner *PlainText

	BeforeEach(func() {
		scanner = NewPlainText()
	})

	It("returns the contents as the transcription", func() {
		doc, err := scanner.ScanReceipt([]byte("Milk $4.99\n"), "text/plain; charset=utf-8")
		Expect(err).NotTo(HaveOccurred())
		Expect(doc.Text).To(Equal("Milk $4.99\n"))
		Expect(doc.Hints).To(BeNil())
	})

	It("accepts a missing content type", func() {
		_, err := scanner.ScanReceipt([]byte("Milk"), "")
		Expect(err).NotTo(HaveOccurred())
	})

	It("rejects images", func() {
		_, err := scanner.ScanReceipt([]byte{0x89, 'P', 'N', 'G'}, "image/png")
		Expect(err).To(HaveOccurred())
	})

	It("rejects invalid UTF-8", func() {
		_, err := scanner.ScanReceipt([]byte{0xff, 0xfe}, "text/plain")
		Expect(err).To(HaveOccurred())
	})

	DescribeTable("IsPlainText",
		func(contentType string, expected bool) {
			Expect(IsPlainText(contentType)).To(Equal(expected))
		},
		Entry("plain", "text/plain", true),
		Entry("with charset", "text/plain; charset=utf-8", true),
		Entry("upper case", "TEXT/PLAIN", true),
		Entry("html", "text/html", false),
		Entry("pdf", "application/pdf", false),
		Entry("empty", "", false),
	)
})
