package receipt

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zombor/expense-ocr/internal/extraction"
	"github.com/zombor/expense-ocr/internal/scanning"
)

func ptr[T any](v T) *T {
	return &v
}

var _ = Describe("Service", func() {
	var (
		db      *mockDB
		storage *mockStorage
		scanner *mockScanner
		idGen   *mockIDGenerator
		timeSrc *mockTimeSource
		service *Service
	)

	BeforeEach(func() {
		db = newMockDB()
		storage = newMockStorage()
		scanner = newMockScanner()
		idGen = &mockIDGenerator{ids: []string{"test-id-123"}}
		timeSrc = &mockTimeSource{now: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)}
		service = NewServiceWithDeps(db, scanner, storage, idGen, timeSrc)
	})

	Describe("ProcessReceipt", func() {
		var (
			filename    string
			data        []byte
			contentType string
			receipt     *Receipt
			err         error
		)

		BeforeEach(func() {
			filename = "IMG_2024 (1).JPG"
			data = []byte("fake image data")
			contentType = "image/jpeg"
		})

		JustBeforeEach(func() {
			receipt, err = service.ProcessReceipt(filename, data, contentType)
		})

		When("processing succeeds", func() {
			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should set the receipt ID", func() {
				Expect(receipt.ID).To(Equal("test-id-123"))
			})

			It("should extract the scanned text", func() {
				Expect(receipt.Result.VendorName).To(Equal("CORNER PHARMACY"))
				Expect(receipt.Result.TotalAmount).To(Equal(20.91))
				Expect(receipt.Result.TaxAmount).To(Equal(2.41))
				Expect(receipt.Result.CardBrand).To(Equal("Mastercard"))
				Expect(receipt.Result.Last4).To(Equal("4242"))
				Expect(receipt.Result.LineItems).To(Equal([]extraction.LineItem{{Description: "Vitamins", Price: 18.5}}))
			})

			It("should set the sanitized filename with ID prefix", func() {
				Expect(receipt.Filename).To(Equal("test-id-123_IMG_2024 1.jpg"))
				Expect(storage.files).To(HaveKey("test-id-123_IMG_2024 1.jpg"))
			})

			It("should stamp the times", func() {
				Expect(receipt.CreatedAt).To(Equal(timeSrc.now))
				Expect(receipt.UpdatedAt).To(Equal(timeSrc.now))
			})

			It("should save the receipt to the database", func() {
				saved, getErr := db.GetReceipt("test-id-123")
				Expect(getErr).NotTo(HaveOccurred())
				Expect(saved).To(Equal(receipt))
			})
		})

		When("the scanner labels entities", func() {
			BeforeEach(func() {
				scanner.doc.Hints = []extraction.EntityHint{
					{Kind: extraction.MerchantName, Value: "Corner Pharmacy Ltd"},
					{Kind: extraction.TotalAmount, Value: "20.91"},
				}
			})

			It("should prefer them", func() {
				Expect(receipt.Result.VendorName).To(Equal("Corner Pharmacy Ltd"))
				Expect(receipt.Result.BaseDocAmount).To(Equal(20.91))
				Expect(receipt.Hints.MerchantName).To(HaveValue(Equal("Corner Pharmacy Ltd")))
			})
		})

		When("the upload is plain text", func() {
			BeforeEach(func() {
				filename = "receipt.txt"
				data = []byte("UBER\nTrip $12.40")
				contentType = "text/plain"
			})

			It("should not call the vision scanner", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(scanner.calls).To(BeZero())
				Expect(receipt.Result.Category).To(Equal("Fuel/Travel"))
				Expect(receipt.Result.TotalAmount).To(Equal(12.4))
			})
		})

		When("storage save fails", func() {
			var setupErr error

			BeforeEach(func() {
				setupErr = errors.New("storage error")
				storage.saveErr = setupErr
			})

			It("returns the error", func() {
				Expect(err).To(MatchError(setupErr))
			})

			It("does not scan", func() {
				Expect(scanner.calls).To(BeZero())
			})
		})

		When("scanner fails", func() {
			var setupErr error

			BeforeEach(func() {
				setupErr = errors.New("scan error")
				scanner.scanErr = setupErr
			})

			It("returns the error", func() {
				Expect(err).To(MatchError(setupErr))
			})

			It("cleans up the saved file", func() {
				Expect(storage.files).To(BeEmpty())
			})

			It("does not save a receipt", func() {
				Expect(db.receipts).To(BeEmpty())
			})
		})

		When("database save fails", func() {
			BeforeEach(func() {
				db.saveErr = errors.New("db error")
			})

			It("returns the error and cleans up the file", func() {
				Expect(err).To(MatchError(ContainSubstring("db error")))
				Expect(storage.files).To(BeEmpty())
			})
		})
	})

	Describe("CreateFromText", func() {
		var (
			input   TextInput
			receipt *Receipt
			err     error
		)

		BeforeEach(func() {
			input = TextInput{
				RawText: "Burger Barn\nBurger $11.00\nTax $1.43\nTotal $12.43",
				Hints:   extraction.Hints{TotalAmount: ptr(12.43)},
				Entities: []extraction.EntityHint{
					{Kind: extraction.TotalAmount, Value: "99.00"},
					{Kind: extraction.MerchantName, Value: "Burger Barn Inc"},
				},
			}
		})

		JustBeforeEach(func() {
			receipt, err = service.CreateFromText(input)
		})

		It("stores the text as a file", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(receipt.Filename).To(Equal("test-id-123_receipt.txt"))
			Expect(receipt.ContentType).To(Equal("text/plain; charset=utf-8"))
			Expect(string(storage.files[receipt.Filename])).To(Equal(input.RawText))
		})

		It("lets explicit hints win over entities", func() {
			Expect(receipt.Result.BaseDocAmount).To(Equal(12.43))
			Expect(receipt.Result.VendorName).To(Equal("Burger Barn Inc"))
		})

		It("extracts the record", func() {
			Expect(receipt.Result.Category).To(Equal("Food"))
			Expect(receipt.Result.TaxAmount).To(Equal(1.43))
		})

		When("the text is blank", func() {
			BeforeEach(func() {
				input = TextInput{RawText: "  \n "}
			})

			It("returns ErrEmptyText", func() {
				Expect(err).To(MatchError(ErrEmptyText))
				Expect(storage.files).To(BeEmpty())
			})
		})
	})

	Describe("ExtractText", func() {
		It("does not store anything", func() {
			result := service.ExtractText(TextInput{RawText: "Costco\nMilk 4.99"})
			Expect(result.VendorName).To(Equal("Costco"))
			Expect(result.Category).To(Equal("Groceries"))
			Expect(storage.files).To(BeEmpty())
			Expect(db.receipts).To(BeEmpty())
		})

		It("uses a configured extractor", func() {
			tables := *extraction.DefaultTables()
			tables.Categories = []extraction.KeywordGroup{{Name: "Pharmacy", Keywords: []string{"vitamin"}}}
			service = NewServiceWithDeps(db, scanner, storage, idGen, timeSrc, WithExtractor(extraction.New(&tables)))

			Expect(service.ExtractText(TextInput{RawText: "Vitamins 9.99"}).Category).To(Equal("Pharmacy"))
		})
	})

	Describe("GetReceipt", func() {
		It("returns ErrNotFound for unknown receipts", func() {
			_, err := service.GetReceipt("missing")
			Expect(err).To(MatchError(ErrNotFound))
		})
	})

	Describe("ListReceipts", func() {
		BeforeEach(func() {
			db.receipts["b"] = &Receipt{ID: "b", CreatedAt: timeSrc.now}
			db.receipts["a"] = &Receipt{ID: "a", CreatedAt: timeSrc.now}
			db.receipts["c"] = &Receipt{ID: "c", CreatedAt: timeSrc.now.Add(-time.Hour)}
		})

		It("orders by creation time then ID", func() {
			receipts, err := service.ListReceipts()
			Expect(err).NotTo(HaveOccurred())
			ids := []string{}
			for _, r := range receipts {
				ids = append(ids, r.ID)
			}
			Expect(ids).To(Equal([]string{"c", "a", "b"}))
		})

		It("returns database errors", func() {
			db.listErr = errors.New("list error")
			_, err := service.ListReceipts()
			Expect(err).To(MatchError(ContainSubstring("list error")))
		})
	})

	Describe("DeleteReceipt", func() {
		BeforeEach(func() {
			storage.files["f1"] = []byte("x")
			db.receipts["r1"] = &Receipt{ID: "r1", Filename: "f1"}
			db.receipts["r2"] = &Receipt{ID: "r2", Filename: "f2", BatchID: "b1"}
		})

		It("removes the receipt and its file", func() {
			Expect(service.DeleteReceipt("r1")).To(Succeed())
			Expect(db.receipts).NotTo(HaveKey("r1"))
			Expect(storage.files).NotTo(HaveKey("f1"))
		})

		It("refuses receipts in a batch", func() {
			err := service.DeleteReceipt("r2")
			Expect(err).To(MatchError(ErrInBatch))
			Expect(err).To(MatchError(ContainSubstring("in batch b1")))
			Expect(db.receipts).To(HaveKey("r2"))
		})

		It("returns ErrNotFound for unknown receipts", func() {
			Expect(service.DeleteReceipt("missing")).To(MatchError(ErrNotFound))
		})
	})

	Describe("GetReceiptFile", func() {
		BeforeEach(func() {
			storage.files["f1"] = []byte("png")
			db.receipts["r1"] = &Receipt{ID: "r1", Filename: "f1", ContentType: "image/png"}
		})

		It("returns the data and content type", func() {
			data, contentType, err := service.GetReceiptFile("r1")
			Expect(err).NotTo(HaveOccurred())
			Expect(data).To(Equal([]byte("png")))
			Expect(contentType).To(Equal("image/png"))
		})
	})

	Describe("CreateBatch", func() {
		var (
			ctx      context.Context
			inputs   []TextInput
			batch    *Batch
			receipts []*Receipt
			err      error
		)

		BeforeEach(func() {
			ctx = context.Background()
			idGen.ids = []string{"batch-1", "r-1", "r-2", "r-3"}
			service = NewServiceWithDeps(db, scanner, storage, idGen, timeSrc, WithBatchWorkers(2))
			inputs = []TextInput{
				{Filename: "a.txt", RawText: "Shell\nFuel $40.00\nTax $5.20"},
				{RawText: "Costco\nMilk $4.99\nEggs $3.49\nHST $0.10"},
				{RawText: "Uber\nTotal $10.01"},
			}
		})

		JustBeforeEach(func() {
			batch, receipts, err = service.CreateBatch(ctx, inputs)
		})

		It("keeps the input order", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(batch.ID).To(Equal("batch-1"))
			Expect(batch.ReceiptIDs).To(Equal([]string{"r-1", "r-2", "r-3"}))
			Expect(receipts).To(HaveLen(3))
			Expect(receipts[0].Result.VendorName).To(Equal("Shell"))
			Expect(receipts[1].Result.VendorName).To(Equal("Costco"))
			Expect(receipts[2].ID).To(Equal("r-3"))
		})

		It("sums the totals and taxes", func() {
			Expect(batch.TotalAmount).To(Equal(55.0))
			Expect(batch.TaxAmount).To(Equal(5.3))
			Expect(batch.ByCategory).To(Equal(map[string]float64{
				"Fuel/Travel": 50.01,
				"Groceries":   4.99,
			}))
		})

		It("links and saves every receipt", func() {
			for _, r := range receipts {
				Expect(r.BatchID).To(Equal("batch-1"))
				Expect(db.receipts).To(HaveKey(r.ID))
			}
			Expect(db.batches).To(HaveKey("batch-1"))
			Expect(storage.count()).To(Equal(3))
		})

		It("can be read back", func() {
			got, gotReceipts, getErr := service.GetBatch("batch-1")
			Expect(getErr).NotTo(HaveOccurred())
			Expect(got).To(Equal(batch))
			Expect(gotReceipts).To(Equal(receipts))
		})

		When("there are no inputs", func() {
			BeforeEach(func() {
				inputs = nil
			})

			It("returns ErrEmptyBatch", func() {
				Expect(err).To(MatchError(ErrEmptyBatch))
			})
		})

		When("one receipt is blank", func() {
			BeforeEach(func() {
				inputs[1].RawText = ""
			})

			It("saves nothing", func() {
				Expect(err).To(MatchError(ErrEmptyText))
				Expect(db.batches).To(BeEmpty())
				Expect(db.receipts).To(BeEmpty())
				Expect(storage.count()).To(BeZero())
			})
		})

		When("the batch cannot be saved", func() {
			BeforeEach(func() {
				db.saveBatchErr = errors.New("db error")
			})

			It("removes the stored files", func() {
				Expect(err).To(MatchError(ContainSubstring("db error")))
				Expect(storage.count()).To(BeZero())
			})
		})

		When("the context is cancelled", func() {
			BeforeEach(func() {
				var cancel context.CancelFunc
				ctx, cancel = context.WithCancel(context.Background())
				cancel()
			})

			It("stops", func() {
				Expect(err).To(MatchError(context.Canceled))
				Expect(storage.count()).To(BeZero())
			})
		})
	})

	Describe("ListBatches", func() {
		It("orders by creation time", func() {
			db.batches["late"] = &Batch{ID: "late", CreatedAt: timeSrc.now}
			db.batches["early"] = &Batch{ID: "early", CreatedAt: timeSrc.now.Add(-time.Minute)}
			batches, err := service.ListBatches()
			Expect(err).NotTo(HaveOccurred())
			Expect(batches[0].ID).To(Equal("early"))
			Expect(batches[1].ID).To(Equal("late"))
		})
	})

	Describe("GetBatch", func() {
		It("returns ErrNotFound for unknown batches", func() {
			_, _, err := service.GetBatch("missing")
			Expect(err).To(MatchError(ErrNotFound))
		})
	})
})

var _ = Describe("sanitizeFilename", func() {
	DescribeTable("cleans names",
		func(in, expected string) {
			Expect(sanitizeFilename(in)).To(Equal(expected))
		},
		Entry("plain", "receipt.pdf", "receipt.pdf"),
		Entry("phone name", "IMG_2024 (1).JPG", "IMG_2024 1.jpg"),
		Entry("path", "../../etc/passwd", "passwd"),
		Entry("windows path", `C:\Users\me\scan.png`, "scan.png"),
		Entry("empty base", "$$$.txt", "receipt.txt"),
		Entry("long", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa.jpg", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa.jpg"),
	)
})

var _ scanning.Scanner = (*mockScanner)(nil)
