package classifiers

import (
	"fmt"

	"github.com/spacesedan/impactwatch/internal/models"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	LOGISTIC_REGRESSION_NAME = "Logistic Regression"
	DEFAULT_LR_C             = 1.0
	DEFAULT_LR_ITERATIONS    = 500
	DEFAULT_LR_LEARNING_RATE = 1.0
)

// LogisticRegression is a multinomial (softmax) logistic regression with an
// L2 penalty on the weights. Smaller C means stronger regularization.
type LogisticRegression struct {
	C            float64
	Iterations   int
	LearningRate float64

	// Weights is NumClasses x NumFeatures.
	Weights   *mat.Dense
	Intercept []float64
}

func NewLogisticRegression(c float64, iterations int, learningRate float64) *LogisticRegression {
	if c <= 0 {
		c = DEFAULT_LR_C
	}
	if iterations <= 0 {
		iterations = DEFAULT_LR_ITERATIONS
	}
	if learningRate <= 0 {
		learningRate = DEFAULT_LR_LEARNING_RATE
	}
	return &LogisticRegression{C: c, Iterations: iterations, LearningRate: learningRate}
}

func (lr *LogisticRegression) Name() string { return LOGISTIC_REGRESSION_NAME }

func (lr *LogisticRegression) NumFeatures() int {
	if lr.Weights == nil {
		return 0
	}
	_, c := lr.Weights.Dims()
	return c
}

// Fit runs full-batch gradient descent on the mean cross-entropy plus
// ||W||^2 / (2 C n). Weights start at zero, so the result is deterministic.
func (lr *LogisticRegression) Fit(x mat.Matrix, y []models.Label) error {
	n, d, err := checkTrainingSet(x, y)
	if err != nil {
		return fmt.Errorf("logistic regression: %w", err)
	}

	onehot := mat.NewDense(n, NumClasses, nil)
	for i, l := range y {
		onehot.Set(i, int(l), 1)
	}

	weights := mat.NewDense(NumClasses, d, nil)
	intercept := make([]float64, NumClasses)
	penalty := 1 / (lr.C * float64(n))
	step := lr.LearningRate

	var probs, gradW mat.Dense
	for iter := 0; iter < lr.Iterations; iter++ {
		// probs = softmax(X W^T + b) - Y
		probs.Mul(x, weights.T())
		for i := 0; i < n; i++ {
			row := probs.RawRowView(i)
			floats.Add(row, intercept)
			softmaxInPlace(row)
		}
		probs.Sub(&probs, onehot)

		// gradW = (P - Y)^T X / n + W / (C n)
		gradW.Mul(probs.T(), x)
		gradW.Scale(1/float64(n), &gradW)
		gradW.Add(&gradW, scaled(penalty, weights))

		for k := 0; k < NumClasses; k++ {
			intercept[k] -= step * floats.Sum(mat.Col(nil, k, &probs)) / float64(n)
		}
		weights.Sub(weights, scaled(step, &gradW))
	}

	lr.Weights = weights
	lr.Intercept = intercept
	return nil
}

func scaled(f float64, m mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Scale(f, m)
	return &out
}

func (lr *LogisticRegression) PredictProba(x []float64) ([]float64, error) {
	if lr.Weights == nil {
		return nil, ErrNotFitted
	}
	if err := checkInput(lr, x); err != nil {
		return nil, err
	}

	var logits mat.VecDense
	logits.MulVec(lr.Weights, mat.NewVecDense(len(x), x))

	scores := make([]float64, NumClasses)
	for k := range scores {
		scores[k] = logits.AtVec(k) + lr.Intercept[k]
	}
	softmaxInPlace(scores)
	return scores, nil
}
