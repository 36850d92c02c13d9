package clients

import (
	"context"
	"errors"
	"testing"

	"github.com/spacesedan/impactwatch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredictionCodec(t *testing.T) {
	in := models.PredictionResult{
		Text:       "raw text is not cached",
		Sentiment:  models.EthicalConcern,
		Confidence: 0.71,
		ModelComparison: models.ModelComparison{
			NaiveBayes:         models.EthicalConcern,
			LogisticRegression: models.Optimism,
		},
	}

	data, err := EncodePrediction(in)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "raw text")
	assert.Contains(t, string(data), `"sentiment":"Ethical Concern"`)

	out, err := DecodePrediction(data)
	require.NoError(t, err)
	in.Text = ""
	assert.Equal(t, in, out)
}

func TestDecodePrediction_Invalid(t *testing.T) {
	_, err := DecodePrediction([]byte("{"))
	assert.Error(t, err)

	_, err = DecodePrediction([]byte(`{"sentiment":"Joy"}`))
	assert.ErrorIs(t, err, models.ErrUnknownLabel)
}

func TestPredictionKey(t *testing.T) {
	assert.Equal(t, "impactwatch:prediction:3f2a9c1d0b7e4a55:ai jobs", PredictionKey("3f2a9c1d0b7e4a55:ai jobs"))
	assert.Equal(t, VALKEY_PREDICTION_PREFIX, PredictionKey(""))
}

func TestValkeyClient_UnhealthySkipsValkey(t *testing.T) {
	// Client is nil: any call through to valkey would panic
	vc := &ValkeyClient{}

	_, ok, err := vc.GetPrediction(context.Background(), "ai jobs")
	assert.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, vc.SetPrediction(context.Background(), "ai jobs", models.PredictionResult{}))
}

func TestIsConnectionError(t *testing.T) {
	assert.False(t, isConnectionError(nil))
	assert.True(t, isConnectionError(errors.New("dial tcp: connection refused")))
	assert.True(t, isConnectionError(errors.New("read: i/o timeout")))
	assert.False(t, isConnectionError(errors.New("WRONGTYPE")))
}
