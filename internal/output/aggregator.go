// Package output collects finished notices and serializes them as one JSON
// document.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/JakeFAU/notice-scraper/internal/board"
)

// Aggregator is an append-only, ordered collection of notices. It is owned
// by the control loop and is not safe for concurrent use.
type Aggregator struct {
	records []board.Notice
}

// NewAggregator returns an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{records: make([]board.Notice, 0)}
}

// Add appends a notice. A nil attachments slice is normalized to empty so
// it serializes as [].
func (a *Aggregator) Add(notice board.Notice) {
	if notice.Attachments == nil {
		notice.Attachments = []board.Attachment{}
	}
	a.records = append(a.records, notice)
}

// Len reports how many notices were added.
func (a *Aggregator) Len() int {
	return len(a.records)
}

// Records returns a copy of the notices in insertion order.
func (a *Aggregator) Records() []board.Notice {
	return append([]board.Notice(nil), a.records...)
}

// Encode renders the notices as an indented JSON array. Non-ASCII text and
// HTML are written verbatim.
func (a *Aggregator) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(a.records); err != nil {
		return nil, fmt.Errorf("encode notices: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteJSON writes the document to path, creating the parent directory. The
// file is written next to the target and renamed into place.
func (a *Aggregator) WriteJSON(path string) error {
	data, err := a.Encode()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close output: %w", err)
	}
	// #nosec G302 -- the document is meant to be read by other tooling.
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("chmod output: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename output: %w", err)
	}
	return nil
}
