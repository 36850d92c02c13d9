package training

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/spacesedan/impactwatch/config"
	"github.com/spacesedan/impactwatch/internal/artifacts"
	"github.com/spacesedan/impactwatch/internal/classifiers"
	"github.com/spacesedan/impactwatch/internal/dataset"
	"github.com/spacesedan/impactwatch/internal/features"
	"github.com/spacesedan/impactwatch/internal/models"
	"github.com/spacesedan/impactwatch/internal/sentiment"
	"gonum.org/v1/gonum/mat"
)

// RunStore records training run summaries. It is optional.
type RunStore interface {
	StoreTrainingRun(ctx context.Context, run models.TrainingRun) error
}

type Trainer struct {
	paths config.PathsConfig
	cfg   config.TrainingConfig
	store RunStore
	now   func() time.Time
}

func NewTrainer(paths config.PathsConfig, cfg config.TrainingConfig, store RunStore) *Trainer {
	return &Trainer{
		paths: paths,
		cfg:   cfg,
		store: store,
		now:   time.Now,
	}
}

// Result is everything one training run produced.
type Result struct {
	Run                models.TrainingRun
	Vectorizer         *features.Vectorizer
	NaiveBayes         *classifiers.NaiveBayes
	LogisticRegression *classifiers.LogisticRegression
	Reports            map[string][]classifiers.LabelScore
}

// Run loads the dataset, fits the vectorizer and both classifiers, evaluates
// them on the held-out split and writes every artifact. Any failure aborts
// the run; artifacts are only written once both models are evaluated.
func (t *Trainer) Run(ctx context.Context) (*Result, error) {
	slog.Info("[Trainer] Loading dataset", slog.String("path", t.paths.Dataset))
	rows, err := dataset.ReadFile(t.paths.Dataset)
	if err != nil {
		return nil, err
	}

	res, err := t.Fit(rows)
	if err != nil {
		return nil, err
	}

	if err := t.save(res); err != nil {
		return nil, err
	}

	if t.store != nil {
		if err := t.store.StoreTrainingRun(ctx, res.Run); err != nil {
			return nil, fmt.Errorf("failed to store training run: %w", err)
		}
	}

	slog.Info("[Trainer] Training complete, artifacts saved",
		slog.String("run_id", res.Run.RunID),
		slog.String("artifacts_dir", t.paths.ArtifactsDir))
	return res, nil
}

// Fit trains and evaluates in memory without touching the filesystem.
func (t *Trainer) Fit(rows models.Dataset) (*Result, error) {
	if len(rows) == 0 {
		return nil, dataset.ErrEmptyDataset
	}

	slog.Info("[Trainer] Cleaning text", slog.Int("rows", len(rows)))
	cleaned := sentiment.NormalizeAll(rows.Texts())

	slog.Info("[Trainer] Vectorizing text", slog.Int("max_features", t.cfg.MaxFeatures))
	vectorizer := features.NewVectorizer(t.cfg.MaxFeatures)
	x, err := vectorizer.FitTransform(cleaned)
	if err != nil {
		return nil, fmt.Errorf("failed to fit vectorizer: %w", err)
	}

	train, test, err := Split(len(rows), t.cfg.TestRatio, t.cfg.Seed)
	if err != nil {
		return nil, err
	}

	xTrain, yTrain := subset(x, rows, train)
	xTest, yTest := subset(x, rows, test)
	logDistribution("train", yTrain)
	logDistribution("test", yTest)

	nb := classifiers.NewNaiveBayes(t.cfg.NBAlpha)
	lr := classifiers.NewLogisticRegression(t.cfg.LRC, t.cfg.LRIterations, t.cfg.LRLearningRate)

	res := &Result{
		Run: models.TrainingRun{
			RunID:          uuid.New().String(),
			CreatedAt:      t.now().UTC(),
			Rows:           len(rows),
			TrainRows:      len(train),
			TestRows:       len(test),
			VocabularySize: vectorizer.NumFeatures(),
		},
		Vectorizer:         vectorizer,
		NaiveBayes:         nb,
		LogisticRegression: lr,
		Reports:            make(map[string][]classifiers.LabelScore),
	}

	for _, m := range []classifiers.Trainable{nb, lr} {
		slog.Info("[Trainer] Training model", slog.String("model", m.Name()))
		if err := m.Fit(xTrain, yTrain); err != nil {
			return nil, fmt.Errorf("failed to train %s: %w", m.Name(), err)
		}

		acc, report, err := evaluate(m, xTest, yTest)
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate %s: %w", m.Name(), err)
		}
		res.Run.Results = append(res.Run.Results, models.ModelAccuracy{Model: m.Name(), Accuracy: acc})
		res.Reports[m.Name()] = report

		slog.Info("[Trainer] Model evaluated",
			slog.String("model", m.Name()),
			slog.String("accuracy", fmt.Sprintf("%.2f%%", acc*100)))
		logReport(m.Name(), report)
	}

	return res, nil
}

// save encodes every artifact first and then commits them together, so a
// failure never leaves models from two different runs side by side.
func (t *Trainer) save(res *Result) error {
	slog.Info("[Trainer] Saving models to disk")
	nb, err := artifacts.EncodeNaiveBayes(res.NaiveBayes)
	if err != nil {
		return fmt.Errorf("failed to encode naive bayes model: %w", err)
	}
	lr, err := artifacts.EncodeLogisticRegression(res.LogisticRegression)
	if err != nil {
		return fmt.Errorf("failed to encode logistic regression model: %w", err)
	}
	vectorizer, err := artifacts.EncodeVectorizer(res.Vectorizer)
	if err != nil {
		return fmt.Errorf("failed to encode vectorizer: %w", err)
	}
	results, err := artifacts.EncodeResults(res.Run.Results)
	if err != nil {
		return err
	}

	return artifacts.WriteFiles([]artifacts.File{
		{Path: t.paths.NaiveBayes(), Data: nb},
		{Path: t.paths.LogReg(), Data: lr},
		{Path: t.paths.Vectorizer(), Data: vectorizer},
		{Path: t.paths.Results(), Data: results},
	})
}

// Split returns a seeded permutation of row indices cut into train and test
// partitions; the test partition holds ceil(n * testRatio) rows.
func Split(n int, testRatio float64, seed uint64) (train, test []int, err error) {
	if testRatio <= 0 || testRatio >= 1 {
		return nil, nil, fmt.Errorf("test ratio must be in (0, 1), got %v", testRatio)
	}

	nTest := int(math.Ceil(float64(n) * testRatio))
	nTrain := n - nTest
	if nTest < 1 || nTrain < 1 {
		return nil, nil, errors.New("not enough rows for a train/test split")
	}

	perm := dataset.NewRand(seed).Perm(n)
	return perm[nTest:], perm[:nTest], nil
}

func subset(x *mat.Dense, rows models.Dataset, idx []int) (*mat.Dense, []models.Label) {
	_, cols := x.Dims()
	out := mat.NewDense(len(idx), cols, nil)
	labels := make([]models.Label, len(idx))
	for i, j := range idx {
		out.SetRow(i, x.RawRowView(j))
		labels[i] = rows[j].Label
	}
	return out, labels
}

func evaluate(c classifiers.Classifier, x mat.Matrix, want []models.Label) (float64, []classifiers.LabelScore, error) {
	got, err := classifiers.PredictAll(c, x)
	if err != nil {
		return 0, nil, err
	}
	acc, err := classifiers.Accuracy(want, got)
	if err != nil {
		return 0, nil, err
	}
	report, err := classifiers.Report(want, got)
	if err != nil {
		return 0, nil, err
	}
	return acc, report, nil
}

func logDistribution(partition string, labels []models.Label) {
	dist := make(map[models.Label]int, models.NumLabels)
	for _, l := range labels {
		dist[l]++
	}
	attrs := []any{slog.String("partition", partition), slog.Int("rows", len(labels))}
	for _, l := range models.Labels {
		attrs = append(attrs, slog.Int(l.String(), dist[l]))
	}
	slog.Info("[Trainer] Label distribution", attrs...)
}

func logReport(model string, report []classifiers.LabelScore) {
	for _, s := range report {
		slog.Info("[Trainer] Classification report",
			slog.String("model", model),
			slog.String("label", s.Label.String()),
			slog.Float64("precision", s.Precision),
			slog.Float64("recall", s.Recall),
			slog.Float64("f1", s.F1),
			slog.Int("support", s.Support))
	}
}
