// Package transcript exports the merged per-player action logs of a
// finished game as zstd-compressed JSONL, one record per line, for later
// narrative reconstruction.
package transcript

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/espoir/limitedjanken/internal/game"
)

// Writer streams transcript records into a single .jsonl.zst file.
type Writer struct {
	path string
	f    *os.File
	enc  *zstd.Encoder
	w    *bufio.Writer
}

// NewWriter creates the transcript file for a game under baseDir. The file
// name embeds the game ID and a UTC timestamp.
func NewWriter(baseDir, gameID string) (*Writer, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create transcript dir: %w", err)
	}
	name := fmt.Sprintf("game-%s-%s.jsonl.zst", gameID, time.Now().UTC().Format("20060102T150405Z"))
	path := filepath.Join(baseDir, name)
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create transcript file: %w", err)
	}
	enc, err := zstd.NewWriter(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	return &Writer{path: path, f: f, enc: enc, w: bufio.NewWriter(enc)}, nil
}

// Path returns the location of the transcript file.
func (w *Writer) Path() string { return w.path }

// Write appends one record as a JSON line.
func (w *Writer) Write(record game.TranscriptRecord) error {
	b, err := json.Marshal(record)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

// WriteAll appends every record in order.
func (w *Writer) WriteAll(records []game.TranscriptRecord) error {
	for _, r := range records {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes and closes the stream. Must be called for the file to be
// readable.
func (w *Writer) Close() error {
	if err := w.w.Flush(); err != nil {
		w.enc.Close()
		w.f.Close()
		return err
	}
	if err := w.enc.Close(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}

// Read loads every record from a transcript file written by Writer.
func Read(path string) ([]game.TranscriptRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	defer dec.Close()

	var records []game.TranscriptRecord
	scanner := bufio.NewScanner(dec)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var r game.TranscriptRecord
		if err := json.Unmarshal(line, &r); err != nil {
			return nil, fmt.Errorf("parse transcript line: %w", err)
		}
		records = append(records, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan transcript: %w", err)
	}
	return records, nil
}
