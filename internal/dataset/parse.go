package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

const utf8BOM = "\uFEFF"

// Parse reads a comma separated export. The first non-empty record is the header.
func Parse(name string, r io.Reader) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return ParseBytes(name, data)
}

// ParseBytes parses an in-memory export.
func ParseBytes(name string, data []byte) (*Dataset, error) {
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte(utf8BOM))))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var records [][]string
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: failed to parse csv: %w", ErrUnreadable, err)
		}
		rec = trimRecord(rec)
		if isBlank(rec) {
			continue
		}
		records = append(records, rec)
	}
	return build(name, data, records)
}

// ParseWorkbook reads the first sheet of an xlsx workbook.
func ParseWorkbook(name string, r io.Reader) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open workbook: %w", ErrUnreadable, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoHeader
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read sheet %q: %w", ErrUnreadable, sheets[0], err)
	}

	var records [][]string
	for _, rec := range rows {
		rec = trimRecord(rec)
		if isBlank(rec) {
			continue
		}
		records = append(records, rec)
	}
	return build(name, data, records)
}

func build(name string, raw []byte, records [][]string) (*Dataset, error) {
	if len(records) == 0 {
		return nil, ErrNoHeader
	}
	headers := records[0]
	headers[0] = strings.TrimSpace(strings.TrimPrefix(headers[0], utf8BOM))

	ds, err := New(name, headers, records[1:])
	if err != nil {
		return nil, err
	}
	ds.fingerprint = Fingerprint(raw)
	return ds, nil
}

func trimRecord(rec []string) []string {
	for i := range rec {
		rec[i] = strings.TrimSpace(rec[i])
	}
	return rec
}

func isBlank(rec []string) bool {
	for _, c := range rec {
		if c != "" {
			return false
		}
	}
	return true
}
