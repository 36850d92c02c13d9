package models

type AnalysisRequest struct {
	Text *string `json:"text"`
}

type ModelComparison struct {
	NaiveBayes         Label `json:"naive_bayes"`
	LogisticRegression Label `json:"logistic_regression"`
}

// PredictionResult is built per request and never persisted.
type PredictionResult struct {
	Text            string          `json:"text"`
	Sentiment       Label           `json:"sentiment"`
	Confidence      float64         `json:"confidence"`
	ModelComparison ModelComparison `json:"model_comparison"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type HealthResponse struct {
	Status         string `json:"status"`
	ModelsLoaded   bool   `json:"models_loaded"`
	VocabularySize int    `json:"vocabulary_size"`
	CacheEnabled   bool   `json:"cache_enabled"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type PolarityResult struct {
	Text     string  `json:"text"`
	Compound float64 `json:"compound"`
	Label    string  `json:"label"`
}
