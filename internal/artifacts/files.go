package artifacts

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spacesedan/impactwatch/internal/classifiers"
	"github.com/spacesedan/impactwatch/internal/features"
	"github.com/spacesedan/impactwatch/internal/models"
)

// File is one artifact waiting to be written.
type File struct {
	Path string
	Data []byte
}

// WriteFile writes data next to path and renames it into place, so a reader
// never sees a half-written artifact.
func WriteFile(path string, data []byte) error {
	return WriteFiles([]File{{Path: path, Data: data}})
}

// WriteFiles stages every file as a temp file beside its target and only
// starts renaming once all of them are staged. A failed write leaves the
// previous set untouched.
func WriteFiles(files []File) error {
	staged := make([]string, 0, len(files))
	defer func() {
		for _, tmp := range staged {
			os.Remove(tmp)
		}
	}()

	for _, f := range files {
		tmp, err := stage(f)
		if err != nil {
			return err
		}
		staged = append(staged, tmp)
	}

	for i, f := range files {
		if err := os.Rename(staged[i], f.Path); err != nil {
			return fmt.Errorf("failed to move %s into place: %w", f.Path, err)
		}
		slog.Info("[Artifacts] Saved artifact",
			slog.String("path", f.Path),
			slog.Int("bytes", len(f.Data)))
	}
	return nil
}

func stage(f File) (string, error) {
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create artifact dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.Path)+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file for %s: %w", f.Path, err)
	}

	if _, err := tmp.Write(f.Data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write %s: %w", f.Path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to close %s: %w", f.Path, err)
	}
	return tmp.Name(), nil
}

func SaveVectorizer(path string, v *features.Vectorizer) error {
	data, err := EncodeVectorizer(v)
	if err != nil {
		return fmt.Errorf("failed to encode vectorizer: %w", err)
	}
	return WriteFile(path, data)
}

func SaveNaiveBayes(path string, nb *classifiers.NaiveBayes) error {
	data, err := EncodeNaiveBayes(nb)
	if err != nil {
		return fmt.Errorf("failed to encode naive bayes model: %w", err)
	}
	return WriteFile(path, data)
}

func SaveLogisticRegression(path string, lr *classifiers.LogisticRegression) error {
	data, err := EncodeLogisticRegression(lr)
	if err != nil {
		return fmt.Errorf("failed to encode logistic regression model: %w", err)
	}
	return WriteFile(path, data)
}

func LoadVectorizer(path string) (*features.Vectorizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vectorizer %s: %w", path, err)
	}
	v, err := DecodeVectorizer(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode vectorizer %s: %w", path, err)
	}
	return v, nil
}

func LoadNaiveBayes(path string) (*classifiers.NaiveBayes, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read naive bayes model %s: %w", path, err)
	}
	nb, err := DecodeNaiveBayes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode naive bayes model %s: %w", path, err)
	}
	return nb, nil
}

func LoadLogisticRegression(path string) (*classifiers.LogisticRegression, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read logistic regression model %s: %w", path, err)
	}
	lr, err := DecodeLogisticRegression(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode logistic regression model %s: %w", path, err)
	}
	return lr, nil
}

// EncodeResults renders the accuracy comparison table with columns
// Model,Accuracy.
func EncodeResults(results []models.ModelAccuracy) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	records := [][]string{{"Model", "Accuracy"}}
	for _, r := range results {
		records = append(records, []string{r.Model, strconv.FormatFloat(r.Accuracy, 'f', -1, 64)})
	}
	if err := w.WriteAll(records); err != nil {
		return nil, fmt.Errorf("failed to encode results table: %w", err)
	}
	return buf.Bytes(), nil
}

func WriteResults(path string, results []models.ModelAccuracy) error {
	data, err := EncodeResults(results)
	if err != nil {
		return err
	}
	return WriteFile(path, data)
}

func ReadResults(path string) ([]models.ModelAccuracy, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open results file %s: %w", path, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read results file %s: %w", path, err)
	}
	if len(records) == 0 || len(records[0]) != 2 || records[0][0] != "Model" || records[0][1] != "Accuracy" {
		return nil, fmt.Errorf("%w: results file %s has no Model,Accuracy header", ErrCorruptArtifact, path)
	}

	results := make([]models.ModelAccuracy, 0, len(records)-1)
	for _, rec := range records[1:] {
		acc, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: accuracy %q: %w", ErrCorruptArtifact, rec[1], err)
		}
		results = append(results, models.ModelAccuracy{Model: rec[0], Accuracy: acc})
	}
	return results, nil
}
