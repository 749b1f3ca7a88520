// Package csvfile reads integration exports from disk into string-keyed rows.
package csvfile

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/ledger_sync/internal/apperrors"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// Encoding names a supported input character set.
type Encoding string

const (
	UTF8     Encoding = "utf-8"
	ShiftJIS Encoding = "shift_jis"
)

// ParseEncoding accepts the aliases allowed in configuration.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(s) {
	case "", "utf-8", "utf8":
		return UTF8, nil
	case "shift_jis", "sjis":
		return ShiftJIS, nil
	}
	return "", fmt.Errorf("%w: unsupported encoding %q", apperrors.ErrValidation, s)
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadFile parses a headed CSV file into rows keyed by column name.
// A missing file returns apperrors.ErrMissingFile.
func ReadFile(path string, enc Encoding) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrMissingFile, path)
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := Read(f, enc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return rows, nil
}

// Read parses headed CSV content. A UTF-8 byte order mark is stripped and
// blank lines are skipped.
func Read(r io.Reader, enc Encoding) ([]map[string]string, error) {
	if enc == ShiftJIS {
		r = transform.NewReader(r, japanese.ShiftJIS.NewDecoder())
	}
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []map[string]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}
		if isBlank(record) {
			continue
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// MonthlyFiles returns the paths of the YYYY-MM.csv files for the months
// ending with now's month, newest first. Files are not checked for existence.
func MonthlyFiles(dir string, months int, now time.Time) []string {
	paths := make([]string, 0, months)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	for i := 0; i < months; i++ {
		month := first.AddDate(0, -i, 0)
		paths = append(paths, filepath.Join(dir, month.Format("2006-01")+".csv"))
	}
	return paths
}

// GlobFiles returns the files in dir matching pattern, sorted by name.
func GlobFiles(dir, pattern string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	sort.Strings(matches)
	return matches, nil
}
