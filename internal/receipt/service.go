package receipt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/zombor/expense-ocr/internal/extraction"
	"github.com/zombor/expense-ocr/internal/scanning"
)

var (
	// ErrEmptyText is returned when a text receipt has no text to extract from
	ErrEmptyText = errors.New("receipt text is empty")
	// ErrEmptyBatch is returned when a batch has no receipts
	ErrEmptyBatch = errors.New("at least one receipt is required")
	// ErrInBatch is returned when deleting a receipt that a batch still references
	ErrInBatch = errors.New("receipt belongs to a batch")

	reUnsafeFilename = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	reSpaces         = regexp.MustCompile(`\s+`)
)

const (
	maxFilenameLen  = 50
	textContentType = "text/plain; charset=utf-8"
	defaultTextName = "receipt.txt"
)

// IDGenerator generates unique IDs for receipts and batches
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

type uuidGenerator struct{}

func (g *uuidGenerator) Generate() string {
	return uuid.NewString()
}

type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now().UTC()
}

// Option configures a Service
type Option func(*Service)

// WithExtractor sets the extractor used for every receipt
func WithExtractor(e *extraction.Extractor) Option {
	return func(s *Service) {
		s.extractor = e
	}
}

// WithBatchWorkers bounds how many batch receipts are processed at once
func WithBatchWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchWorkers = n
		}
	}
}

// Service handles receipt operations
type Service struct {
	db           DB
	scanner      scanning.Scanner
	plainText    scanning.Scanner
	storage      Storage
	extractor    *extraction.Extractor
	idGenerator  IDGenerator
	timeSource   TimeSource
	batchWorkers int
}

// NewService creates a new Service with a UUID generator and the wall clock
func NewService(db DB, scanner scanning.Scanner, storage Storage, opts ...Option) *Service {
	return NewServiceWithDeps(db, scanner, storage, &uuidGenerator{}, &defaultTimeSource{}, opts...)
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, scanner scanning.Scanner, storage Storage, idGen IDGenerator, timeSrc TimeSource, opts ...Option) *Service {
	s := &Service{
		db:           db,
		scanner:      scanner,
		plainText:    scanning.NewPlainText(),
		storage:      storage,
		extractor:    extraction.New(nil),
		idGenerator:  idGen,
		timeSource:   timeSrc,
		batchWorkers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// sanitizeFilename cleans up a filename by removing special characters and truncating length
func sanitizeFilename(filename string) string {
	filename = filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	ext := strings.ToLower(filepath.Ext(filename))
	if reUnsafeFilename.MatchString(strings.TrimPrefix(ext, ".")) {
		ext = ""
	}
	base := strings.TrimSuffix(filename, filepath.Ext(filename))

	base = reUnsafeFilename.ReplaceAllString(base, "")
	base = strings.TrimSpace(reSpaces.ReplaceAllString(base, " "))

	if len(base) > maxFilenameLen {
		base = base[:maxFilenameLen]
	}
	if base == "" {
		base = "receipt"
	}

	return base + ext
}

// scannerFor picks the scanner for a content type. Text never goes to a
// vision model.
func (s *Service) scannerFor(contentType string) scanning.Scanner {
	if scanning.IsPlainText(contentType) || s.scanner == nil {
		return s.plainText
	}
	return s.scanner
}

// ExtractText runs extraction over text without storing anything
func (s *Service) ExtractText(input TextInput) extraction.NormalizedReceipt {
	result := s.extractor.Extract(input.RawText, input.hints())
	slog.Debug("Extracted receipt text", "vendor", result.VendorName, "total", result.TotalAmount)
	return result
}

// build stores the file, scans it and extracts the record. The receipt is
// not saved to the database; on error nothing is left in storage.
func (s *Service) build(id, filename string, data []byte, contentType string, hints *extraction.Hints) (*Receipt, error) {
	now := s.timeSource.Now()

	savedPath, err := s.storage.Save(fmt.Sprintf("%s_%s", id, sanitizeFilename(filename)), data)
	if err != nil {
		return nil, fmt.Errorf("saving file: %w", err)
	}

	doc, err := s.scannerFor(contentType).ScanReceipt(data, contentType)
	if err != nil {
		slog.Error("Failed to scan receipt",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		s.removeFile(savedPath)
		return nil, fmt.Errorf("scanning receipt: %w", err)
	}

	h := extraction.HintsFromEntities(doc.Hints)
	if hints != nil {
		h = hints.Merge(h)
	}
	result := s.extractor.Extract(doc.Text, h)
	slog.Debug("Extracted receipt",
		"id", id,
		"vendor", result.VendorName,
		"total", result.TotalAmount,
		"category", result.Category,
	)

	return &Receipt{
		ID:          id,
		Result:      result,
		Hints:       h,
		Filename:    savedPath,
		ContentType: contentType,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (s *Service) save(receipt *Receipt) (*Receipt, error) {
	if err := s.db.SaveReceipt(receipt); err != nil {
		s.removeFile(receipt.Filename)
		return nil, fmt.Errorf("saving receipt to database: %w", err)
	}
	return receipt, nil
}

func (s *Service) removeFile(name string) {
	if err := s.storage.Delete(name); err != nil {
		slog.Warn("Failed to delete file", "filename", name, "error", err)
	}
}

// ProcessReceipt uploads a receipt, scans it, extracts it and saves it
func (s *Service) ProcessReceipt(filename string, data []byte, contentType string) (*Receipt, error) {
	receipt, err := s.build(s.idGenerator.Generate(), filename, data, contentType, nil)
	if err != nil {
		return nil, err
	}
	return s.save(receipt)
}

func (s *Service) buildText(id string, input TextInput) (*Receipt, error) {
	if strings.TrimSpace(input.RawText) == "" {
		return nil, ErrEmptyText
	}
	filename := input.Filename
	if filename == "" {
		filename = defaultTextName
	}
	hints := input.hints()
	return s.build(id, filename, []byte(input.RawText), textContentType, &hints)
}

// CreateFromText stores text that was already read from a receipt,
// extracts it and saves it
func (s *Service) CreateFromText(input TextInput) (*Receipt, error) {
	receipt, err := s.buildText(s.idGenerator.Generate(), input)
	if err != nil {
		return nil, err
	}
	return s.save(receipt)
}

// GetReceipt retrieves a receipt by ID
func (s *Service) GetReceipt(id string) (*Receipt, error) {
	receipt, err := s.db.GetReceipt(id)
	if err != nil {
		return nil, fmt.Errorf("getting receipt: %w", err)
	}
	return receipt, nil
}

// ListReceipts returns all receipts, oldest first
func (s *Service) ListReceipts() ([]*Receipt, error) {
	receipts, err := s.db.ListReceipts()
	if err != nil {
		return nil, fmt.Errorf("listing receipts: %w", err)
	}
	sort.SliceStable(receipts, func(i, j int) bool {
		if receipts[i].CreatedAt.Equal(receipts[j].CreatedAt) {
			return receipts[i].ID < receipts[j].ID
		}
		return receipts[i].CreatedAt.Before(receipts[j].CreatedAt)
	})
	return receipts, nil
}

// DeleteReceipt removes a receipt and its file. Receipts that belong to a
// batch cannot be deleted.
func (s *Service) DeleteReceipt(id string) error {
	receipt, err := s.db.GetReceipt(id)
	if err != nil {
		return fmt.Errorf("getting receipt for deletion: %w", err)
	}
	if receipt.BatchID != "" {
		return fmt.Errorf("receipt %s in batch %s: %w", id, receipt.BatchID, ErrInBatch)
	}

	s.removeFile(receipt.Filename)

	if err := s.db.DeleteReceipt(id); err != nil {
		return fmt.Errorf("deleting receipt from database: %w", err)
	}
	return nil
}

// GetReceiptFile retrieves the file data for a receipt
func (s *Service) GetReceiptFile(id string) ([]byte, string, error) {
	receipt, err := s.db.GetReceipt(id)
	if err != nil {
		return nil, "", fmt.Errorf("getting receipt: %w", err)
	}

	data, err := s.storage.Get(receipt.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("getting receipt file: %w", err)
	}

	return data, receipt.ContentType, nil
}

// CreateBatch extracts many text receipts concurrently and saves them with
// a batch summing their totals. Either every receipt is saved or none is.
func (s *Service) CreateBatch(ctx context.Context, inputs []TextInput) (*Batch, []*Receipt, error) {
	if len(inputs) == 0 {
		return nil, nil, ErrEmptyBatch
	}

	now := s.timeSource.Now()
	batchID := s.idGenerator.Generate()
	ids := make([]string, len(inputs))
	for i := range ids {
		ids[i] = s.idGenerator.Generate()
	}

	receipts := make([]*Receipt, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchWorkers)
	for i, input := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			receipt, err := s.buildText(ids[i], input)
			if err != nil {
				return fmt.Errorf("receipt %d: %w", i, err)
			}
			receipt.BatchID = batchID
			receipts[i] = receipt
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.discard(receipts)
		return nil, nil, fmt.Errorf("processing batch: %w", err)
	}

	batch := &Batch{
		ID:         batchID,
		ReceiptIDs: ids,
		ByCategory: make(map[string]float64),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	totals := make([]float64, 0, len(receipts))
	taxes := make([]float64, 0, len(receipts))
	for _, r := range receipts {
		totals = append(totals, r.Result.TotalAmount)
		taxes = append(taxes, r.Result.TaxAmount)
		batch.ByCategory[r.Result.Category] = extraction.SumAmounts(batch.ByCategory[r.Result.Category], r.Result.TotalAmount)
	}
	batch.TotalAmount = extraction.SumAmounts(totals...)
	batch.TaxAmount = extraction.SumAmounts(taxes...)

	if err := s.db.SaveBatch(batch, receipts); err != nil {
		s.discard(receipts)
		return nil, nil, fmt.Errorf("saving batch: %w", err)
	}

	slog.Info("Created batch", "id", batchID, "receipts", len(receipts), "total", batch.TotalAmount)
	return batch, receipts, nil
}

func (s *Service) discard(receipts []*Receipt) {
	for _, r := range receipts {
		if r != nil {
			s.removeFile(r.Filename)
		}
	}
}

// GetBatch retrieves a batch with its receipts
func (s *Service) GetBatch(id string) (*Batch, []*Receipt, error) {
	batch, err := s.db.GetBatch(id)
	if err != nil {
		return nil, nil, fmt.Errorf("getting batch: %w", err)
	}

	receipts := make([]*Receipt, 0, len(batch.ReceiptIDs))
	for _, receiptID := range batch.ReceiptIDs {
		receipt, err := s.db.GetReceipt(receiptID)
		if err != nil {
			return nil, nil, fmt.Errorf("getting receipt %s: %w", receiptID, err)
		}
		receipts = append(receipts, receipt)
	}

	return batch, receipts, nil
}

// ListBatches returns all batches, oldest first
func (s *Service) ListBatches() ([]*Batch, error) {
	batches, err := s.db.ListBatches()
	if err != nil {
		return nil, fmt.Errorf("listing batches: %w", err)
	}
	sort.SliceStable(batches, func(i, j int) bool {
		return batches[i].CreatedAt.Before(batches[j].CreatedAt)
	})
	return batches, nil
}
