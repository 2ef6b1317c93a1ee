// Package corpus handles the bibliographic record store: JSONL as the
// git-versionable source of truth, an ephemeral SQLite cache for lookups,
// and the best-effort write side that accepts proposed records.
package corpus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/matsen/refmark/internal/reference"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines
// (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// ReadAll reads a snapshot of all records from a JSONL file, in file order.
// File order is the snapshot iteration order every downstream tie-break
// depends on.
func ReadAll(path string) ([]reference.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // Empty corpus returns empty slice
		}
		return nil, fmt.Errorf("opening records file: %w", err)
	}
	defer f.Close()

	var records []reference.Record
	scanner := bufio.NewScanner(f)

	// Increase buffer size for long lines
	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue // Skip empty lines
		}

		var rec reference.Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading records file: %w", err)
	}

	return records, nil
}

// Append adds a record to the end of a JSONL file.
func Append(path string, rec reference.Record) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening records file for append: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("writing record: %w", err)
	}
	if _, err := f.WriteString("\n"); err != nil {
		return fmt.Errorf("writing newline: %w", err)
	}

	return nil
}

// WriteAll writes all records to a JSONL file, replacing existing content.
func WriteAll(path string, records []reference.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating records file: %w", err)
	}
	defer f.Close()

	for i, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encoding record %d: %w", i, err)
		}

		if _, err := f.Write(data); err != nil {
			return fmt.Errorf("writing record %d: %w", i, err)
		}
		if _, err := f.WriteString("\n"); err != nil {
			return fmt.Errorf("writing newline: %w", err)
		}
	}

	return nil
}

// FindByKey searches for a record by its corpus key.
func FindByKey(records []reference.Record, key string) (int, bool) {
	for i, rec := range records {
		if rec.Key == key {
			return i, true
		}
	}
	return -1, false
}
