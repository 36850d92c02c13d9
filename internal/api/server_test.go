package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spacesedan/impactwatch/config"
	"github.com/spacesedan/impactwatch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnalyzer struct {
	mu      sync.Mutex
	texts   []string
	started chan struct{}
	release chan struct{}
}

func (f *fakeAnalyzer) Analyze(_ context.Context, text string) (models.PredictionResult, error) {
	f.mu.Lock()
	f.texts = append(f.texts, text)
	f.mu.Unlock()

	if f.started != nil {
		f.started <- struct{}{}
		<-f.release
	}
	return models.PredictionResult{
		Text:       text,
		Sentiment:  models.EconomicAnxiety,
		Confidence: 0.87,
		ModelComparison: models.ModelComparison{
			NaiveBayes:         models.EconomicAnxiety,
			LogisticRegression: models.EthicalConcern,
		},
	}, nil
}

func (f *fakeAnalyzer) VocabularySize() int { return 61 }
func (f *fakeAnalyzer) CacheEnabled() bool  { return false }

func newTestServer(a Analyzer) *Server {
	return NewServer(a, config.Default().Server)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestStatus(t *testing.T) {
	rec := do(t, newTestServer(&fakeAnalyzer{}), http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ImpactWatch AI is Online"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(&fakeAnalyzer{}), http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","models_loaded":true,"vocabulary_size":61,"cache_enabled":false}`, rec.Body.String())
}

func TestAnalyze(t *testing.T) {
	fake := &fakeAnalyzer{}
	rec := do(t, newTestServer(fake), http.MethodPost, "/analyze", `{"text": "ChatGPT is making writers obsolete, this is sad."}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"text": "ChatGPT is making writers obsolete, this is sad.",
		"sentiment": "Economic Anxiety",
		"confidence": 0.87,
		"model_comparison": {"naive_bayes": "Economic Anxiety", "logistic_regression": "Ethical Concern"}
	}`, rec.Body.String())
}

func TestAnalyze_AcceptsAnyString(t *testing.T) {
	fake := &fakeAnalyzer{}
	s := newTestServer(fake)

	for _, body := range []string{`{"text": ""}`, `{"text": "!!!"}`, `{"text": "x", "extra": 1}`, "{\"text\": \"y\"}\n  "} {
		rec := do(t, s, http.MethodPost, "/analyze", body)
		assert.Equal(t, http.StatusOK, rec.Code, body)
	}
	assert.Equal(t, []string{"", "!!!", "x", "y"}, fake.texts)
}

func TestAnalyze_BadRequests(t *testing.T) {
	fake := &fakeAnalyzer{}
	s := newTestServer(fake)

	bodies := []string{
		``, `{`, `not json`, `{}`, `null`, `[]`,
		`{"text": null}`, `{"text": 42}`, `{"text": ["a"]}`,
		`{"TEXT": "x"}`, `{"Text": "x"}`,
		`{"text":"a"} trailing-garbage`, `{"text":"a"}{"text":"b"}`, `{"text":"a"} 1`,
	}
	for _, body := range bodies {
		rec := do(t, s, http.MethodPost, "/analyze", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)

		var resp models.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), body)
		assert.NotEmpty(t, resp.Error, body)
	}
	assert.Empty(t, fake.texts)
}

func TestAnalyze_BodyTooLarge(t *testing.T) {
	body := `{"text": "` + strings.Repeat("a", 2<<20) + `"}`
	rec := do(t, newTestServer(&fakeAnalyzer{}), http.MethodPost, "/analyze", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestPolarity(t *testing.T) {
	rec := do(t, newTestServer(&fakeAnalyzer{}), http.MethodPost, "/polarity", `{"text": "I love how AI handles the boring tasks for me."}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.PolarityResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "positive", resp.Label)
	assert.Greater(t, resp.Compound, 0.2)

	rec = do(t, newTestServer(&fakeAnalyzer{}), http.MethodPost, "/polarity", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotFoundIsJSON(t *testing.T) {
	rec := do(t, newTestServer(&fakeAnalyzer{}), http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)
}

func TestCORSAllowsAnyOrigin(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/analyze", nil)
	req.Header.Set(echo.HeaderOrigin, "https://example.org")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec := httptest.NewRecorder()
	newTestServer(&fakeAnalyzer{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestConcurrencyLimit(t *testing.T) {
	fake := &fakeAnalyzer{started: make(chan struct{}), release: make(chan struct{})}
	cfg := config.Default().Server
	cfg.MaxConcurrent = 1
	cfg.RequestTimeout = 50 * time.Millisecond
	s := NewServer(fake, cfg)

	first := make(chan int)
	go func() {
		first <- do(t, s, http.MethodPost, "/analyze", `{"text": "one"}`).Code
	}()
	<-fake.started

	rec := do(t, s, http.MethodPost, "/analyze", `{"text": "two"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	close(fake.release)
	assert.Equal(t, http.StatusOK, <-first)
}
