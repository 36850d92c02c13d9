package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLabel_RoundTrip(t *testing.T) {
	for _, l := range Labels {
		parsed, err := ParseLabel(l.String())
		require.NoError(t, err)
		assert.Equal(t, l, parsed)
	}
}

func TestParseLabel_Unknown(t *testing.T) {
	_, err := ParseLabel("Neutral")
	assert.ErrorIs(t, err, ErrUnknownLabel)

	_, err = ParseLabel("optimism")
	assert.ErrorIs(t, err, ErrUnknownLabel)
}

func TestLabelFromIndex(t *testing.T) {
	l, err := LabelFromIndex(1)
	require.NoError(t, err)
	assert.Equal(t, EthicalConcern, l)

	_, err = LabelFromIndex(3)
	assert.ErrorIs(t, err, ErrUnknownLabel)
}

func TestPredictionResult_JSON(t *testing.T) {
	res := PredictionResult{
		Text:       "hello",
		Sentiment:  Optimism,
		Confidence: 0.87,
		ModelComparison: ModelComparison{
			NaiveBayes:         Optimism,
			LogisticRegression: EconomicAnxiety,
		},
	}

	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"text": "hello",
		"sentiment": "Optimism",
		"confidence": 0.87,
		"model_comparison": {"naive_bayes": "Optimism", "logistic_regression": "Economic Anxiety"}
	}`, string(data))
}

func TestLabel_MarshalInvalid(t *testing.T) {
	_, err := json.Marshal(Label(7))
	assert.Error(t, err)
}

func TestDataset_Distribution(t *testing.T) {
	d := Dataset{
		{Text: "a", Label: Optimism},
		{Text: "b", Label: Optimism},
		{Text: "c", Label: EthicalConcern},
	}
	dist := d.Distribution()
	assert.Equal(t, 2, dist[Optimism])
	assert.Equal(t, 1, dist[EthicalConcern])
	assert.Equal(t, 0, dist[EconomicAnxiety])
	assert.Equal(t, []string{"a", "b", "c"}, d.Texts())
}
