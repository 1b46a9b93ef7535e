package adapters

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/projectsmartedu/SmartEducation/config"
	"github.com/projectsmartedu/SmartEducation/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDynamo struct {
	dynamodbiface.DynamoDBAPI
	inputs []*dynamodb.PutItemInput
	err    error
}

func (f *fakeDynamo) PutItemWithContext(ctx aws.Context, input *dynamodb.PutItemInput, opts ...request.Option) (*dynamodb.PutItemOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.inputs = append(f.inputs, input)
	return &dynamodb.PutItemOutput{}, nil
}

func TestDynamoJobJournalRecordsFailure(t *testing.T) {
	svc := &fakeDynamo{}
	journal := NewDynamoJobJournal(newTestLogger(), svc, &config.DynamoConfig{TableName: "jobs", TtlMinutes: 60}).(*dynamoJobJournal)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	journal.now = func() time.Time { return fixed }

	err := journal.Record(context.Background(), domain.JobRecord{
		JobID:   "job-1",
		Concept: "Gravity",
		Status:  domain.ResultFailed,
		Stage:   domain.StageRendering,
		Kind:    "RenderFailed",
		Message: "scene rendering failed: exit code 2",
	})
	require.NoError(t, err)
	require.Len(t, svc.inputs, 1)
	assert.Equal(t, "jobs", aws.StringValue(svc.inputs[0].TableName))

	var item dynamoJobItem
	require.NoError(t, dynamodbattribute.UnmarshalMap(svc.inputs[0].Item, &item))
	assert.Equal(t, "job-1", item.JobId)
	assert.Equal(t, "failed", item.Status)
	assert.Equal(t, "Rendering", item.Stage)
	assert.Equal(t, "RenderFailed", item.Kind)
	assert.Equal(t, fixed.Unix(), item.FinishedAt)
	assert.Equal(t, fixed.Add(time.Hour).Unix(), item.TTL)
	assert.NotContains(t, svc.inputs[0].Item, "video_path")
}

func TestDynamoJobJournalPutError(t *testing.T) {
	throttled := errors.New("ProvisionedThroughputExceededException")
	journal := NewDynamoJobJournal(newTestLogger(), &fakeDynamo{err: throttled}, &config.DynamoConfig{TableName: "jobs", TtlMinutes: 60})

	err := journal.Record(context.Background(), domain.JobRecord{JobID: "job-1", Status: domain.ResultSucceeded, Stage: domain.StageSucceeded})
	require.ErrorIs(t, err, throttled)
}
