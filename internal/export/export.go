// Package export writes a JSONL snapshot of the stored configuration and
// ships it to backup destinations.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/alfredjeanlab/platformsetup/internal/model"
	"github.com/alfredjeanlab/platformsetup/internal/store"
)

// FormatVersion identifies the layout of the JSONL snapshot.
const FormatVersion = "1"

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version         string    `json:"version"`
	Type            string    `json:"type"`
	PlatformVersion string    `json:"platform_version"`
	Timestamp       time.Time `json:"timestamp"`
	RecordCount     int       `json:"record_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string               `json:"type"`
	Data *model.Configuration `json:"data"`
}

// ExportJSONL writes the platform version and every stored record as JSONL
// to w. Everything is read in one transaction; records follow the category
// processing order, then name order.
func ExportJSONL(ctx context.Context, s store.Store, w io.Writer) error {
	var (
		platformVersion string
		records         []*model.Configuration
	)
	err := s.RunInTransaction(ctx, func(tx store.Store) error {
		v, err := tx.PlatformVersion(ctx)
		if err != nil {
			return fmt.Errorf("read platform version: %w", err)
		}
		platformVersion = v
		records, err = store.ReadSnapshot(ctx, tx)
		return err
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:         FormatVersion,
		Type:            "header",
		PlatformVersion: platformVersion,
		Timestamp:       time.Now().UTC(),
		RecordCount:     len(records),
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	for _, c := range records {
		if err := enc.Encode(record{Type: "configuration", Data: c}); err != nil {
			return fmt.Errorf("encode %s: %w", c, err)
		}
	}
	return nil
}

// Destination is the interface for an export target (S3, git, etc.).
type Destination interface {
	// Name identifies the destination in log lines.
	Name() string
	// Write sends the JSONL payload to the destination.
	Write(ctx context.Context, data []byte) error
}

// Run exports once and writes the snapshot to w, when non-nil, and to every
// destination. Destination failures are logged and the first one is
// returned after all destinations were tried.
func Run(ctx context.Context, s store.Store, w io.Writer, destinations []Destination, logger *slog.Logger) error {
	var buf bytes.Buffer
	if err := ExportJSONL(ctx, s, &buf); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	data := buf.Bytes()

	if w != nil {
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
	}

	var firstErr error
	for _, dest := range destinations {
		if err := dest.Write(ctx, data); err != nil {
			logger.Error("export destination write failed", "destination", dest.Name(), "err", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", dest.Name(), err)
			}
			continue
		}
		logger.Debug("export destination written", "destination", dest.Name())
	}

	logger.Info("export completed", "destinations", len(destinations), "bytes", len(data))
	return firstErr
}
