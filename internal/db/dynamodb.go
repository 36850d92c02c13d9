package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/spacesedan/impactwatch/internal/models"
)

const TRAINING_RUNS_TABLE_NAME = "TrainingRuns"

// PutItemAPI is the part of the DynamoDB client the store uses.
type PutItemAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// TrainingRunStore writes one item per training run, keyed by run_id.
type TrainingRunStore struct {
	client PutItemAPI
	table  string
}

func NewTrainingRunStore(client PutItemAPI, table string) *TrainingRunStore {
	if table == "" {
		table = TRAINING_RUNS_TABLE_NAME
	}
	return &TrainingRunStore{client: client, table: table}
}

func (s *TrainingRunStore) StoreTrainingRun(ctx context.Context, run models.TrainingRun) error {
	item, err := attributevalue.MarshalMap(run)
	if err != nil {
		return fmt.Errorf("[DynamoDB] Failed to marshal training run: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(run_id)"),
	})
	if err != nil {
		return fmt.Errorf("[DynamoDB] Failed to store training run %s: %w", run.RunID, err)
	}

	slog.Info("[DynamoDB] Stored training run",
		slog.String("table", s.table),
		slog.String("run_id", run.RunID))
	return nil
}
