package classifiers

import (
	"errors"
	"fmt"
	"math"

	"github.com/spacesedan/impactwatch/internal/models"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// NumClasses is the number of sentiment categories every model scores.
const NumClasses = models.NumLabels

var ErrNotFitted = errors.New("classifier is not fitted")

// Classifier scores a TF-IDF feature vector against every label. Fitted
// classifiers are read-only and safe for concurrent use.
type Classifier interface {
	Name() string
	NumFeatures() int
	PredictProba(x []float64) ([]float64, error)
}

// Trainable is a classifier that can be fitted on a design matrix.
type Trainable interface {
	Classifier
	Fit(x mat.Matrix, y []models.Label) error
}

// Predict returns the most probable label and the per-class probabilities.
// Ties go to the label that comes first in models.Labels.
func Predict(c Classifier, x []float64) (models.Label, []float64, error) {
	probs, err := c.PredictProba(x)
	if err != nil {
		return 0, nil, err
	}
	label, err := models.LabelFromIndex(floats.MaxIdx(probs))
	if err != nil {
		return 0, nil, err
	}
	return label, probs, nil
}

// PredictAll labels every row of x.
func PredictAll(c Classifier, x mat.Matrix) ([]models.Label, error) {
	r, cols := x.Dims()
	if cols != c.NumFeatures() {
		return nil, fmt.Errorf("%s: expected %d features, got %d", c.Name(), c.NumFeatures(), cols)
	}
	labels := make([]models.Label, r)
	row := make([]float64, c.NumFeatures())
	for i := 0; i < r; i++ {
		mat.Row(row, i, x)
		label, _, err := Predict(c, row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		labels[i] = label
	}
	return labels, nil
}

func checkInput(c Classifier, x []float64) error {
	if len(x) != c.NumFeatures() {
		return fmt.Errorf("%s: expected %d features, got %d", c.Name(), c.NumFeatures(), len(x))
	}
	return nil
}

func checkTrainingSet(x mat.Matrix, y []models.Label) (int, int, error) {
	r, c := x.Dims()
	if r != len(y) {
		return 0, 0, fmt.Errorf("%d rows but %d labels", r, len(y))
	}
	for i, l := range y {
		if !l.Valid() {
			return 0, 0, fmt.Errorf("row %d: %w: %d", i, models.ErrUnknownLabel, int(l))
		}
	}
	return r, c, nil
}

// softmaxInPlace turns joint log scores into probabilities.
func softmaxInPlace(scores []float64) {
	top := floats.Max(scores)
	if math.IsInf(top, -1) {
		floats.Scale(0, scores)
		return
	}
	for i, s := range scores {
		scores[i] = math.Exp(s - top)
	}
	floats.Scale(1/floats.Sum(scores), scores)
}
