package receipt

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const (
	receiptBucketName = "receipts"
	batchBucketName   = "batches"
)

// ErrNotFound is returned when a receipt or batch does not exist
var ErrNotFound = errors.New("not found")

// DB defines the interface for database operations
type DB interface {
	// SaveReceipt saves a receipt to the database
	SaveReceipt(receipt *Receipt) error

	// GetReceipt retrieves a receipt by ID
	GetReceipt(id string) (*Receipt, error)

	// ListReceipts returns all receipts
	ListReceipts() ([]*Receipt, error)

	// DeleteReceipt removes a receipt from the database
	DeleteReceipt(id string) error

	// SaveBatch saves a batch and its receipts in one transaction
	SaveBatch(batch *Batch, receipts []*Receipt) error

	// GetBatch retrieves a batch by ID
	GetBatch(id string) (*Batch, error)

	// ListBatches returns all batches
	ListBatches() ([]*Batch, error)

	// Close closes the database connection
	Close() error
}

// BoltDB implements the DB interface using BoltDB
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB creates a new BoltDB instance
func NewBoltDB(path string) (*BoltDB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{receiptBucketName, batchBucketName} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltDB{db: db}, nil
}

func put(tx *bbolt.Tx, bucket, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", bucket, err)
	}
	return tx.Bucket([]byte(bucket)).Put([]byte(id), data)
}

func get[T any](db *bbolt.DB, bucket, id string) (*T, error) {
	var v *T
	err := db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(bucket)).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%s %s: %w", bucket, id, ErrNotFound)
		}
		return json.Unmarshal(data, &v)
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

func list[T any](db *bbolt.DB, bucket string) ([]*T, error) {
	items := make([]*T, 0)
	err := db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucket)).ForEach(func(k, v []byte) error {
			var item T
			if err := json.Unmarshal(v, &item); err != nil {
				return fmt.Errorf("unmarshaling %s %s: %w", bucket, k, err)
			}
			items = append(items, &item)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// SaveReceipt saves a receipt to the database
func (b *BoltDB) SaveReceipt(receipt *Receipt) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return put(tx, receiptBucketName, receipt.ID, receipt)
	})
}

// GetReceipt retrieves a receipt by ID
func (b *BoltDB) GetReceipt(id string) (*Receipt, error) {
	return get[Receipt](b.db, receiptBucketName, id)
}

// ListReceipts returns all receipts
func (b *BoltDB) ListReceipts() ([]*Receipt, error) {
	return list[Receipt](b.db, receiptBucketName)
}

// DeleteReceipt removes a receipt from the database
func (b *BoltDB) DeleteReceipt(id string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(receiptBucketName))
		if bucket.Get([]byte(id)) == nil {
			return fmt.Errorf("%s %s: %w", receiptBucketName, id, ErrNotFound)
		}
		return bucket.Delete([]byte(id))
	})
}

// SaveBatch saves a batch and its receipts in one transaction
func (b *BoltDB) SaveBatch(batch *Batch, receipts []*Receipt) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		for _, receipt := range receipts {
			if err := put(tx, receiptBucketName, receipt.ID, receipt); err != nil {
				return err
			}
		}
		return put(tx, batchBucketName, batch.ID, batch)
	})
}

// GetBatch retrieves a batch by ID
func (b *BoltDB) GetBatch(id string) (*Batch, error) {
	return get[Batch](b.db, batchBucketName, id)
}

// ListBatches returns all batches
func (b *BoltDB) ListBatches() ([]*Batch, error) {
	return list[Batch](b.db, batchBucketName)
}

// Close closes the database connection
func (b *BoltDB) Close() error {
	return b.db.Close()
}
