package models

import "time"

type ModelAccuracy struct {
	Model    string  `json:"model" dynamodbav:"model"`
	Accuracy float64 `json:"accuracy" dynamodbav:"accuracy"`
}

// TrainingRun summarises one batch training run.
type TrainingRun struct {
	RunID          string          `json:"run_id" dynamodbav:"run_id"`
	CreatedAt      time.Time       `json:"created_at" dynamodbav:"created_at"`
	Rows           int             `json:"rows" dynamodbav:"rows"`
	TrainRows      int             `json:"train_rows" dynamodbav:"train_rows"`
	TestRows       int             `json:"test_rows" dynamodbav:"test_rows"`
	VocabularySize int             `json:"vocabulary_size" dynamodbav:"vocabulary_size"`
	Results        []ModelAccuracy `json:"results" dynamodbav:"results"`
}
