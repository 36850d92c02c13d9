package inference

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/spacesedan/impactwatch/config"
	"github.com/spacesedan/impactwatch/internal/artifacts"
	"github.com/spacesedan/impactwatch/internal/classifiers"
	"github.com/spacesedan/impactwatch/internal/features"
	"github.com/spacesedan/impactwatch/internal/models"
	"github.com/spacesedan/impactwatch/internal/sentiment"
	"gonum.org/v1/gonum/floats"
)

// PredictionCache stores finished predictions. Keys combine the model
// fingerprint with the cleaned text. A miss is reported with ok == false and
// a nil error.
type PredictionCache interface {
	GetPrediction(ctx context.Context, key string) (res models.PredictionResult, ok bool, err error)
	SetPrediction(ctx context.Context, key string, res models.PredictionResult) error
}

// Service holds the loaded vectorizer and classifiers. It is built once at
// startup and never mutated afterwards, so one instance serves every request.
type Service struct {
	vectorizer *features.Vectorizer
	nb         *classifiers.NaiveBayes
	lr         *classifiers.LogisticRegression
	cache      PredictionCache

	fingerprint string
}

type Option func(*Service)

// WithCache puts a prediction cache in front of the models.
func WithCache(c PredictionCache) Option {
	return func(s *Service) { s.cache = c }
}

// Load reads the three model artifacts. Any missing or corrupt artifact is an
// error and the caller should not start serving.
func Load(paths config.PathsConfig, opts ...Option) (*Service, error) {
	slog.Info("[Inference] Loading artifacts", slog.String("artifacts_dir", paths.ArtifactsDir))

	vectorizer, err := artifacts.LoadVectorizer(paths.Vectorizer())
	if err != nil {
		return nil, err
	}
	nb, err := artifacts.LoadNaiveBayes(paths.NaiveBayes())
	if err != nil {
		return nil, err
	}
	lr, err := artifacts.LoadLogisticRegression(paths.LogReg())
	if err != nil {
		return nil, err
	}

	s, err := New(vectorizer, nb, lr, opts...)
	if err != nil {
		return nil, err
	}

	slog.Info("[Inference] Models loaded",
		slog.String("fingerprint", s.fingerprint),
		slog.Int("vocabulary_size", vectorizer.NumFeatures()),
		slog.Bool("cache_enabled", s.CacheEnabled()))
	return s, nil
}

// New checks that both classifiers were trained against the vectorizer's
// feature space.
func New(v *features.Vectorizer, nb *classifiers.NaiveBayes, lr *classifiers.LogisticRegression, opts ...Option) (*Service, error) {
	if !v.Fitted() {
		return nil, features.ErrNotFitted
	}
	for _, c := range []classifiers.Classifier{nb, lr} {
		if c.NumFeatures() != v.NumFeatures() {
			return nil, fmt.Errorf("%s expects %d features but the vectorizer has %d",
				c.Name(), c.NumFeatures(), v.NumFeatures())
		}
	}

	fingerprint, err := artifacts.Fingerprint(v, nb, lr)
	if err != nil {
		return nil, fmt.Errorf("failed to fingerprint models: %w", err)
	}

	s := &Service{vectorizer: v, nb: nb, lr: lr, fingerprint: fingerprint}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Service) VocabularySize() int { return s.vectorizer.NumFeatures() }

func (s *Service) CacheEnabled() bool { return s.cache != nil }

// Fingerprint identifies the loaded model set; retraining changes it.
func (s *Service) Fingerprint() string { return s.fingerprint }

func (s *Service) cacheKey(cleaned string) string {
	return s.fingerprint + ":" + cleaned
}

// Analyze classifies text, consulting the cache when one is configured. Cache
// failures are logged and the prediction is computed directly.
func (s *Service) Analyze(ctx context.Context, text string) (models.PredictionResult, error) {
	cleaned := sentiment.Normalize(text)
	key := s.cacheKey(cleaned)

	if s.cache != nil {
		res, ok, err := s.cache.GetPrediction(ctx, key)
		if err != nil {
			slog.Warn("[Inference] Cache lookup failed", slog.String("error", err.Error()))
		} else if ok {
			res.Text = text
			return res, nil
		}
	}

	res, err := s.predictCleaned(text, cleaned)
	if err != nil {
		return models.PredictionResult{}, err
	}

	if s.cache != nil {
		if err := s.cache.SetPrediction(ctx, key, res); err != nil {
			slog.Warn("[Inference] Cache store failed", slog.String("error", err.Error()))
		}
	}
	return res, nil
}

// Predict classifies text without touching the cache.
func (s *Service) Predict(text string) (models.PredictionResult, error) {
	return s.predictCleaned(text, sentiment.Normalize(text))
}

func (s *Service) predictCleaned(text, cleaned string) (models.PredictionResult, error) {
	// Transform allocates a fresh vector per call
	x, err := s.vectorizer.Transform(cleaned)
	if err != nil {
		return models.PredictionResult{}, err
	}

	nbLabel, probs, err := classifiers.Predict(s.nb, x)
	if err != nil {
		return models.PredictionResult{}, err
	}
	lrLabel, _, err := classifiers.Predict(s.lr, x)
	if err != nil {
		return models.PredictionResult{}, err
	}

	return models.PredictionResult{
		Text:       text,
		Sentiment:  nbLabel,
		Confidence: RoundConfidence(floats.Max(probs)),
		ModelComparison: models.ModelComparison{
			NaiveBayes:         nbLabel,
			LogisticRegression: lrLabel,
		},
	}, nil
}

// RoundConfidence rounds a probability to two decimal places.
func RoundConfidence(p float64) float64 {
	return math.Round(p*100) / 100
}
