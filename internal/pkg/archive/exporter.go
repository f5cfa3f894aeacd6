package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/klauspost/compress/gzip"

	"github.com/ManuelReschke/PremiumHook/app/models"
)

const (
	contentTypeJSONLGzip = "application/gzip"
	defaultBatchSize     = 500
)

// ErrObjectExists is returned when an archive for the range is already stored
// and overwriting was not requested.
var ErrObjectExists = errors.New("archive object already exists")

// LedgerSource streams ledger rows created in [from, to).
type LedgerSource interface {
	EachCreatedBetween(from, to time.Time, batchSize int, fn func(batch []models.PaymentOrder) error) error
}

// ObjectStore receives finished archive files.
type ObjectStore interface {
	ObjectExists(ctx context.Context, objectKey string) (bool, error)
	UploadFile(ctx context.Context, localFilePath, objectKey, contentType string) (*UploadResult, error)
}

// Exporter writes ledger ranges as gzip-compressed JSON lines.
type Exporter struct {
	source    LedgerSource
	store     ObjectStore
	config    *Config
	BatchSize int
	Overwrite bool
}

// Result summarizes one export.
type Result struct {
	ObjectKey string
	Rows      int
	Bytes     int64
}

// NewExporter creates an exporter.
func NewExporter(source LedgerSource, store ObjectStore, cfg *Config) *Exporter {
	return &Exporter{source: source, store: store, config: cfg, BatchSize: defaultBatchSize}
}

// Export archives rows with from <= created_at < to. The ledger is only read.
func (e *Exporter) Export(ctx context.Context, from, to time.Time) (*Result, error) {
	if !to.After(from) {
		return nil, fmt.Errorf("invalid range: %s is not before %s", from.Format(dateLayout), to.Format(dateLayout))
	}

	key := e.config.ObjectKey(from, to)
	if !e.Overwrite {
		exists, err := e.store.ObjectExists(ctx, key)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("%w: %s", ErrObjectExists, key)
		}
	}

	tmp, err := os.CreateTemp("", "payment-orders-*.jsonl.gz")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	rows, err := e.writeRange(ctx, tmp, from, to)
	if err != nil {
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	uploaded, err := e.store.UploadFile(ctx, tmp.Name(), key, contentTypeJSONLGzip)
	if err != nil {
		return nil, err
	}

	log.Infof("[LedgerArchive] Exported %d ledger rows to %s", rows, key)
	return &Result{ObjectKey: key, Rows: rows, Bytes: uploaded.Size}, nil
}

func (e *Exporter) writeRange(ctx context.Context, f *os.File, from, to time.Time) (int, error) {
	zw, err := gzip.NewWriterLevel(f, gzip.BestCompression)
	if err != nil {
		return 0, err
	}
	zw.Name = fmt.Sprintf("payment-orders-%s_%s.jsonl", from.UTC().Format(dateLayout), to.UTC().Format(dateLayout))
	zw.ModTime = time.Now().UTC()

	enc := json.NewEncoder(zw)
	enc.SetEscapeHTML(false)

	rows := 0
	err = e.source.EachCreatedBetween(from, to, e.BatchSize, func(batch []models.PaymentOrder) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		for i := range batch {
			if err := enc.Encode(&batch[i]); err != nil {
				return fmt.Errorf("encode order %s: %w", batch[i].OrderID, err)
			}
			rows++
		}
		return nil
	})
	if err != nil {
		_ = zw.Close()
		return rows, fmt.Errorf("read ledger: %w", err)
	}
	if err := zw.Close(); err != nil {
		return rows, fmt.Errorf("finish gzip stream: %w", err)
	}
	return rows, nil
}
