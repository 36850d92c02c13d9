package classifiers

import (
	"fmt"
	"math"

	"github.com/spacesedan/impactwatch/internal/models"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	NAIVE_BAYES_NAME    = "Naive Bayes"
	DEFAULT_NAIVE_ALPHA = 1.0
)

// NaiveBayes is a multinomial Naive Bayes model over TF-IDF weights.
type NaiveBayes struct {
	Alpha float64

	// ClassLogPrior has one entry per label; a label absent from training
	// has a prior of -Inf.
	ClassLogPrior []float64
	// FeatureLogProb is NumClasses x NumFeatures.
	FeatureLogProb *mat.Dense
}

func NewNaiveBayes(alpha float64) *NaiveBayes {
	if alpha <= 0 {
		alpha = DEFAULT_NAIVE_ALPHA
	}
	return &NaiveBayes{Alpha: alpha}
}

func (nb *NaiveBayes) Name() string { return NAIVE_BAYES_NAME }

func (nb *NaiveBayes) NumFeatures() int {
	if nb.FeatureLogProb == nil {
		return 0
	}
	_, c := nb.FeatureLogProb.Dims()
	return c
}

func (nb *NaiveBayes) Fit(x mat.Matrix, y []models.Label) error {
	n, d, err := checkTrainingSet(x, y)
	if err != nil {
		return fmt.Errorf("naive bayes: %w", err)
	}

	classCount := make([]float64, NumClasses)
	featureCount := mat.NewDense(NumClasses, d, nil)
	row := make([]float64, d)
	for i := 0; i < n; i++ {
		k := int(y[i])
		classCount[k]++
		mat.Row(row, i, x)
		floats.Add(featureCount.RawRowView(k), row)
	}

	prior := make([]float64, NumClasses)
	for k, count := range classCount {
		prior[k] = math.Log(count / float64(n))
	}

	logProb := mat.NewDense(NumClasses, d, nil)
	for k := 0; k < NumClasses; k++ {
		counts := featureCount.RawRowView(k)
		denom := math.Log(floats.Sum(counts) + nb.Alpha*float64(d))
		dst := logProb.RawRowView(k)
		for j, c := range counts {
			dst[j] = math.Log(c+nb.Alpha) - denom
		}
	}

	nb.ClassLogPrior = prior
	nb.FeatureLogProb = logProb
	return nil
}

func (nb *NaiveBayes) PredictProba(x []float64) ([]float64, error) {
	if nb.FeatureLogProb == nil {
		return nil, ErrNotFitted
	}
	if err := checkInput(nb, x); err != nil {
		return nil, err
	}

	var jll mat.VecDense
	jll.MulVec(nb.FeatureLogProb, mat.NewVecDense(len(x), x))

	scores := make([]float64, NumClasses)
	for k := range scores {
		scores[k] = jll.AtVec(k) + nb.ClassLogPrior[k]
	}
	softmaxInPlace(scores)
	return scores, nil
}
