package artifacts

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/spacesedan/impactwatch/internal/classifiers"
	"github.com/spacesedan/impactwatch/internal/features"
	"github.com/spacesedan/impactwatch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

var docs = []string{
	"afraid ai replace job next year",
	"deepfakes going ruin election",
	"love ai handles boring tasks",
	"economy crashing automation",
}

var labels = []models.Label{
	models.EconomicAnxiety, models.EthicalConcern, models.Optimism, models.EconomicAnxiety,
}

func fit(t *testing.T) (*features.Vectorizer, *classifiers.NaiveBayes, *classifiers.LogisticRegression) {
	t.Helper()
	v := features.NewVectorizer(features.DEFAULT_MAX_FEATURES)
	x, err := v.FitTransform(docs)
	require.NoError(t, err)

	nb := classifiers.NewNaiveBayes(1)
	require.NoError(t, nb.Fit(x, labels))

	lr := classifiers.NewLogisticRegression(1, 200, 1)
	require.NoError(t, lr.Fit(x, labels))
	return v, nb, lr
}

func TestRoundTrip_BitForBit(t *testing.T) {
	v, nb, lr := fit(t)
	dir := t.TempDir()

	require.NoError(t, SaveVectorizer(filepath.Join(dir, "v.pb"), v))
	require.NoError(t, SaveNaiveBayes(filepath.Join(dir, "nb.pb"), nb))
	require.NoError(t, SaveLogisticRegression(filepath.Join(dir, "lr.pb"), lr))

	v2, err := LoadVectorizer(filepath.Join(dir, "v.pb"))
	require.NoError(t, err)
	nb2, err := LoadNaiveBayes(filepath.Join(dir, "nb.pb"))
	require.NoError(t, err)
	lr2, err := LoadLogisticRegression(filepath.Join(dir, "lr.pb"))
	require.NoError(t, err)

	assert.Equal(t, v.Terms, v2.Terms)
	assert.Equal(t, v.IDF, v2.IDF)
	assert.Equal(t, v.MaxFeatures, v2.MaxFeatures)
	assert.Equal(t, nb.ClassLogPrior, nb2.ClassLogPrior)
	assert.Equal(t, nb.FeatureLogProb.RawMatrix().Data, nb2.FeatureLogProb.RawMatrix().Data)
	assert.Equal(t, lr.Weights.RawMatrix().Data, lr2.Weights.RawMatrix().Data)
	assert.Equal(t, lr.Intercept, lr2.Intercept)
	assert.Equal(t, lr.Iterations, lr2.Iterations)

	for _, text := range append(docs, "ai job", "") {
		x1, err := v.Transform(text)
		require.NoError(t, err)
		x2, err := v2.Transform(text)
		require.NoError(t, err)
		assert.Equal(t, x1, x2)

		p1, err := nb.PredictProba(x1)
		require.NoError(t, err)
		p2, err := nb2.PredictProba(x2)
		require.NoError(t, err)
		assert.Equal(t, p1, p2)

		q1, err := lr.PredictProba(x1)
		require.NoError(t, err)
		q2, err := lr2.PredictProba(x2)
		require.NoError(t, err)
		assert.Equal(t, q1, q2)
	}
}

func TestEncode_Deterministic(t *testing.T) {
	v, nb, _ := fit(t)

	a, err := EncodeVectorizer(v)
	require.NoError(t, err)
	b, err := EncodeVectorizer(v)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := EncodeNaiveBayes(nb)
	require.NoError(t, err)
	d, err := EncodeNaiveBayes(nb)
	require.NoError(t, err)
	assert.Equal(t, c, d)
}

func TestNaiveBayes_InfinitePriorSurvives(t *testing.T) {
	nb := &classifiers.NaiveBayes{
		Alpha:          1,
		ClassLogPrior:  []float64{math.Inf(-1), math.Log(0.5), math.Log(0.5)},
		FeatureLogProb: mat.NewDense(classifiers.NumClasses, 1, []float64{-1, -2, -3}),
	}
	data, err := EncodeNaiveBayes(nb)
	require.NoError(t, err)

	got, err := DecodeNaiveBayes(data)
	require.NoError(t, err)
	assert.True(t, math.IsInf(got.ClassLogPrior[0], -1))
}

func TestDecode_WrongKind(t *testing.T) {
	v, _, _ := fit(t)
	data, err := EncodeVectorizer(v)
	require.NoError(t, err)

	_, err = DecodeNaiveBayes(data)
	assert.ErrorIs(t, err, ErrArtifactKind)
}

func TestDecode_WrongVersion(t *testing.T) {
	data, err := proto.Marshal(&structpb.Struct{Fields: map[string]*structpb.Value{
		"format_version": structpb.NewNumberValue(FORMAT_VERSION + 1),
		"kind":           structpb.NewStringValue(KindVectorizer),
	}})
	require.NoError(t, err)

	_, err = DecodeVectorizer(data)
	assert.ErrorIs(t, err, ErrArtifactVersion)
}

func TestDecode_Corrupt(t *testing.T) {
	_, err := DecodeLogisticRegression([]byte("definitely not protobuf \xff\xff\xff"))
	assert.ErrorIs(t, err, ErrCorruptArtifact)

	_, err = DecodeVectorizer(nil)
	assert.ErrorIs(t, err, ErrCorruptArtifact)

	data, err := proto.Marshal(&structpb.Struct{Fields: map[string]*structpb.Value{
		"format_version": structpb.NewNumberValue(FORMAT_VERSION),
		"kind":           structpb.NewStringValue(KindLogisticRegression),
		"c":              structpb.NewNumberValue(1),
	}})
	require.NoError(t, err)
	_, err = DecodeLogisticRegression(data)
	assert.ErrorIs(t, err, ErrCorruptArtifact)
}

func TestEncode_Unfitted(t *testing.T) {
	_, err := EncodeVectorizer(features.NewVectorizer(10))
	assert.ErrorIs(t, err, features.ErrNotFitted)

	_, err = EncodeNaiveBayes(classifiers.NewNaiveBayes(1))
	assert.ErrorIs(t, err, classifiers.ErrNotFitted)

	_, err = EncodeLogisticRegression(classifiers.NewLogisticRegression(1, 1, 1))
	assert.ErrorIs(t, err, classifiers.ErrNotFitted)
}

func TestLoad_Missing(t *testing.T) {
	_, err := LoadVectorizer(filepath.Join(t.TempDir(), "missing.pb"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestResults_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	results := []models.ModelAccuracy{
		{Model: classifiers.NAIVE_BAYES_NAME, Accuracy: 1},
		{Model: classifiers.LOGISTIC_REGRESSION_NAME, Accuracy: 0.9866666666666667},
	}
	require.NoError(t, WriteResults(path, results))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Model,Accuracy\nNaive Bayes,1\nLogistic Regression,0.9866666666666667\n", string(raw))

	got, err := ReadResults(path)
	require.NoError(t, err)
	assert.Equal(t, results, got)
}

func TestWriteFile_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteFile(filepath.Join(dir, "a.pb"), []byte("x")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.pb", entries[0].Name())
}

func TestWriteFiles_FailedStageKeepsPreviousSet(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.pb")
	require.NoError(t, os.WriteFile(first, []byte("old"), 0644))

	// a regular file where the second target's directory should be
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	err := WriteFiles([]File{
		{Path: first, Data: []byte("new")},
		{Path: filepath.Join(blocker, "b.pb"), Data: []byte("new")},
	})
	require.Error(t, err)

	data, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "staged temp files must be cleaned up")
}

func TestWriteFiles_ReplacesAll(t *testing.T) {
	dir := t.TempDir()
	files := []File{
		{Path: filepath.Join(dir, "a.pb"), Data: []byte("a")},
		{Path: filepath.Join(dir, "b.pb"), Data: []byte("b")},
	}
	require.NoError(t, WriteFiles(files))

	for _, f := range files {
		data, err := os.ReadFile(f.Path)
		require.NoError(t, err)
		assert.Equal(t, f.Data, data)
	}
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestFingerprint(t *testing.T) {
	v, nb, lr := fit(t)

	a, err := Fingerprint(v, nb, lr)
	require.NoError(t, err)
	assert.Len(t, a, 16)

	dir := t.TempDir()
	require.NoError(t, SaveNaiveBayes(filepath.Join(dir, "nb.pb"), nb))
	nb2, err := LoadNaiveBayes(filepath.Join(dir, "nb.pb"))
	require.NoError(t, err)
	b, err := Fingerprint(v, nb2, lr)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	other := classifiers.NewNaiveBayes(5)
	x, err := v.TransformAll(docs)
	require.NoError(t, err)
	require.NoError(t, other.Fit(x, labels))
	c, err := Fingerprint(v, other, lr)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)

	_, err = Fingerprint(v, classifiers.NewNaiveBayes(1), lr)
	assert.ErrorIs(t, err, classifiers.ErrNotFitted)
}
