package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/zappabad/stockhelper/internal/news"
)

var ErrBadHeader = errors.New("unexpected csv header")

var header = []string{"title", "url"}

// WriteCSV writes items to path as UTF-8 with a byte-order mark, which is what
// spreadsheet apps need to detect non-ASCII text. The file is replaced
// atomically.
func WriteCSV(path string, items []news.NewsItem) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".export-*.csv")
	if err != nil {
		return fmt.Errorf("create temp export: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	bw := transform.NewWriter(tmp, unicode.UTF8BOM.NewEncoder())
	cw := csv.NewWriter(bw)

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, it := range items {
		if err := cw.Write([]string{it.Title, it.URL}); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	if err := bw.Close(); err != nil {
		return fmt.Errorf("flush encoder: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("chmod export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close export: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename export: %w", err)
	}
	return nil
}

// ReadCSV reads a file written by WriteCSV. A leading byte-order mark is optional.
func ReadCSV(path string) ([]news.NewsItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open export: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(transform.NewReader(f, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	r.FieldsPerRecord = len(header)

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 || records[0][0] != header[0] || records[0][1] != header[1] {
		return nil, ErrBadHeader
	}

	items := make([]news.NewsItem, 0, len(records)-1)
	for _, rec := range records[1:] {
		items = append(items, news.NewsItem{Title: rec[0], URL: rec[1]})
	}
	return items, nil
}
