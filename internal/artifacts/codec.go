package artifacts

import (
	"errors"
	"fmt"

	"github.com/spacesedan/impactwatch/internal/classifiers"
	"github.com/spacesedan/impactwatch/internal/features"
	"gonum.org/v1/gonum/mat"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// FORMAT_VERSION is bumped whenever the field layout below changes.
const FORMAT_VERSION = 1

const (
	KindVectorizer         = "tfidf_vectorizer"
	KindNaiveBayes         = "naive_bayes"
	KindLogisticRegression = "logistic_regression"
)

var (
	ErrArtifactVersion = errors.New("unsupported artifact format version")
	ErrArtifactKind    = errors.New("unexpected artifact kind")
	ErrCorruptArtifact = errors.New("corrupt artifact")
)

var marshalOpts = proto.MarshalOptions{Deterministic: true}

func EncodeVectorizer(v *features.Vectorizer) ([]byte, error) {
	if !v.Fitted() {
		return nil, features.ErrNotFitted
	}
	return encode(KindVectorizer, map[string]*structpb.Value{
		"max_features": structpb.NewNumberValue(float64(v.MaxFeatures)),
		"terms":        stringList(v.Terms),
		"idf":          numberList(v.IDF),
	})
}

func DecodeVectorizer(data []byte) (*features.Vectorizer, error) {
	fields, err := decode(data, KindVectorizer)
	if err != nil {
		return nil, err
	}

	maxFeatures, err := number(fields, "max_features")
	if err != nil {
		return nil, err
	}
	terms, err := texts(fields, "terms")
	if err != nil {
		return nil, err
	}
	idf, err := numbers(fields, "idf")
	if err != nil {
		return nil, err
	}

	v, err := features.NewFittedVectorizer(int(maxFeatures), terms, idf)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptArtifact, err)
	}
	return v, nil
}

func EncodeNaiveBayes(nb *classifiers.NaiveBayes) ([]byte, error) {
	if nb.FeatureLogProb == nil {
		return nil, classifiers.ErrNotFitted
	}
	return encode(KindNaiveBayes, map[string]*structpb.Value{
		"alpha":            structpb.NewNumberValue(nb.Alpha),
		"class_log_prior":  numberList(nb.ClassLogPrior),
		"feature_log_prob": matrix(nb.FeatureLogProb),
	})
}

func DecodeNaiveBayes(data []byte) (*classifiers.NaiveBayes, error) {
	fields, err := decode(data, KindNaiveBayes)
	if err != nil {
		return nil, err
	}

	alpha, err := number(fields, "alpha")
	if err != nil {
		return nil, err
	}
	prior, err := numbers(fields, "class_log_prior")
	if err != nil {
		return nil, err
	}
	logProb, err := readMatrix(fields, "feature_log_prob")
	if err != nil {
		return nil, err
	}
	if len(prior) != classifiers.NumClasses {
		return nil, fmt.Errorf("%w: %d class priors", ErrCorruptArtifact, len(prior))
	}

	return &classifiers.NaiveBayes{
		Alpha:          alpha,
		ClassLogPrior:  prior,
		FeatureLogProb: logProb,
	}, nil
}

func EncodeLogisticRegression(lr *classifiers.LogisticRegression) ([]byte, error) {
	if lr.Weights == nil {
		return nil, classifiers.ErrNotFitted
	}
	return encode(KindLogisticRegression, map[string]*structpb.Value{
		"c":             structpb.NewNumberValue(lr.C),
		"iterations":    structpb.NewNumberValue(float64(lr.Iterations)),
		"learning_rate": structpb.NewNumberValue(lr.LearningRate),
		"weights":       matrix(lr.Weights),
		"intercept":     numberList(lr.Intercept),
	})
}

func DecodeLogisticRegression(data []byte) (*classifiers.LogisticRegression, error) {
	fields, err := decode(data, KindLogisticRegression)
	if err != nil {
		return nil, err
	}

	c, err := number(fields, "c")
	if err != nil {
		return nil, err
	}
	iterations, err := number(fields, "iterations")
	if err != nil {
		return nil, err
	}
	learningRate, err := number(fields, "learning_rate")
	if err != nil {
		return nil, err
	}
	weights, err := readMatrix(fields, "weights")
	if err != nil {
		return nil, err
	}
	intercept, err := numbers(fields, "intercept")
	if err != nil {
		return nil, err
	}
	if len(intercept) != classifiers.NumClasses {
		return nil, fmt.Errorf("%w: %d intercepts", ErrCorruptArtifact, len(intercept))
	}

	return &classifiers.LogisticRegression{
		C:            c,
		Iterations:   int(iterations),
		LearningRate: learningRate,
		Weights:      weights,
		Intercept:    intercept,
	}, nil
}

func encode(kind string, payload map[string]*structpb.Value) ([]byte, error) {
	payload["format_version"] = structpb.NewNumberValue(FORMAT_VERSION)
	payload["kind"] = structpb.NewStringValue(kind)

	data, err := marshalOpts.Marshal(&structpb.Struct{Fields: payload})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", kind, err)
	}
	return data, nil
}

func decode(data []byte, kind string) (map[string]*structpb.Value, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptArtifact, err)
	}
	fields := s.GetFields()

	version, err := number(fields, "format_version")
	if err != nil {
		return nil, err
	}
	if version != FORMAT_VERSION {
		return nil, fmt.Errorf("%w: %v", ErrArtifactVersion, version)
	}

	got := fields["kind"].GetStringValue()
	if got != kind {
		return nil, fmt.Errorf("%w: want %q, got %q", ErrArtifactKind, kind, got)
	}
	return fields, nil
}

func numberList(xs []float64) *structpb.Value {
	values := make([]*structpb.Value, len(xs))
	for i, x := range xs {
		values[i] = structpb.NewNumberValue(x)
	}
	return structpb.NewListValue(&structpb.ListValue{Values: values})
}

func stringList(xs []string) *structpb.Value {
	values := make([]*structpb.Value, len(xs))
	for i, x := range xs {
		values[i] = structpb.NewStringValue(x)
	}
	return structpb.NewListValue(&structpb.ListValue{Values: values})
}

// matrix stores a dense matrix as {rows, cols, data} with row-major data.
func matrix(m *mat.Dense) *structpb.Value {
	r, c := m.Dims()
	data := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		data = append(data, m.RawRowView(i)...)
	}
	return structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
		"rows": structpb.NewNumberValue(float64(r)),
		"cols": structpb.NewNumberValue(float64(c)),
		"data": numberList(data),
	}})
}

func readMatrix(fields map[string]*structpb.Value, key string) (*mat.Dense, error) {
	s := fields[key].GetStructValue()
	if s == nil {
		return nil, fmt.Errorf("%w: missing matrix %q", ErrCorruptArtifact, key)
	}
	inner := s.GetFields()

	rows, err := number(inner, "rows")
	if err != nil {
		return nil, err
	}
	cols, err := number(inner, "cols")
	if err != nil {
		return nil, err
	}
	data, err := numbers(inner, "data")
	if err != nil {
		return nil, err
	}

	r, c := int(rows), int(cols)
	if r != classifiers.NumClasses || c <= 0 || r*c != len(data) {
		return nil, fmt.Errorf("%w: matrix %q is %vx%v with %d values", ErrCorruptArtifact, key, rows, cols, len(data))
	}
	return mat.NewDense(r, c, data), nil
}

func number(fields map[string]*structpb.Value, key string) (float64, error) {
	v, ok := fields[key].GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("%w: missing number %q", ErrCorruptArtifact, key)
	}
	return v.NumberValue, nil
}

func numbers(fields map[string]*structpb.Value, key string) ([]float64, error) {
	list := fields[key].GetListValue()
	if list == nil {
		return nil, fmt.Errorf("%w: missing list %q", ErrCorruptArtifact, key)
	}

	out := make([]float64, len(list.GetValues()))
	for i, v := range list.GetValues() {
		n, ok := v.GetKind().(*structpb.Value_NumberValue)
		if !ok {
			return nil, fmt.Errorf("%w: %q[%d] is not a number", ErrCorruptArtifact, key, i)
		}
		out[i] = n.NumberValue
	}
	return out, nil
}

func texts(fields map[string]*structpb.Value, key string) ([]string, error) {
	list := fields[key].GetListValue()
	if list == nil {
		return nil, fmt.Errorf("%w: missing list %q", ErrCorruptArtifact, key)
	}

	out := make([]string, len(list.GetValues()))
	for i, v := range list.GetValues() {
		s, ok := v.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return nil, fmt.Errorf("%w: %q[%d] is not a string", ErrCorruptArtifact, key, i)
		}
		out[i] = s.StringValue
	}
	return out, nil
}
