package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spacesedan/impactwatch/internal/models"
)

const (
	TEXT_COLUMN  = "text"
	LABEL_COLUMN = "label"
)

var (
	ErrEmptyDataset  = errors.New("dataset is empty")
	ErrMissingColumn = errors.New("dataset is missing a required column")
)

func WriteCSV(w io.Writer, rows models.Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{TEXT_COLUMN, LABEL_COLUMN}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range rows {
		label, err := row.Label.MarshalText()
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		if err := cw.Write([]string{row.Text, string(label)}); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func WriteFile(path string, rows models.Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create dataset file %s: %w", path, err)
	}

	if err := WriteCSV(f, rows); err != nil {
		f.Close()
		return fmt.Errorf("failed to write dataset file %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close dataset file %s: %w", path, err)
	}

	slog.Info("[Dataset] Wrote dataset",
		slog.String("path", path),
		slog.Int("rows", len(rows)))
	return nil
}

// ReadCSV parses a header-led table. Columns are located by name so extra
// columns are tolerated; a missing text or label column, an empty table or
// an unknown label is an error.
func ReadCSV(r io.Reader) (models.Dataset, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyDataset
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	textIdx, labelIdx := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")) {
		case TEXT_COLUMN:
			textIdx = i
		case LABEL_COLUMN:
			labelIdx = i
		}
	}
	if textIdx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, TEXT_COLUMN)
	}
	if labelIdx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, LABEL_COLUMN)
	}

	var rows models.Dataset
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read line %d: %w", line, err)
		}

		label, err := models.ParseLabel(record[labelIdx])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, models.LabeledExample{Text: record[textIdx], Label: label})
	}

	if len(rows) == 0 {
		return nil, ErrEmptyDataset
	}
	return rows, nil
}

func ReadFile(path string) (models.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file %s: %w", path, err)
	}
	defer f.Close()

	rows, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse dataset file %s: %w", path, err)
	}
	return rows, nil
}

// LogPreview logs the first n rows, the way the generator and preprocessor
// report what they produced.
func LogPreview(rows models.Dataset, n int, cleaned []string) {
	if n > len(rows) {
		n = len(rows)
	}
	for i := 0; i < n; i++ {
		attrs := []any{
			slog.Int("row", i),
			slog.String("text", rows[i].Text),
			slog.String("label", rows[i].Label.String()),
		}
		if i < len(cleaned) {
			attrs = append(attrs, slog.String("cleaned_text", cleaned[i]))
		}
		slog.Info("[Dataset] Preview", attrs...)
	}
}
