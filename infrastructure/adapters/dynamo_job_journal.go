package adapters

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/projectsmartedu/SmartEducation/application/ports/outbound"
	"github.com/projectsmartedu/SmartEducation/config"
	"github.com/projectsmartedu/SmartEducation/domain"
)

type dynamoJobItem struct {
	JobId      string `dynamodbav:"job_id"`
	Concept    string `dynamodbav:"concept"`
	Status     string `dynamodbav:"status"`
	Stage      string `dynamodbav:"stage"`
	Kind       string `dynamodbav:"kind,omitempty"`
	Message    string `dynamodbav:"message,omitempty"`
	VideoPath  string `dynamodbav:"video_path,omitempty"`
	ArchiveKey string `dynamodbav:"archive_key,omitempty"`
	FinishedAt int64  `dynamodbav:"finished_at"`
	TTL        int64  `dynamodbav:"ttl"`
}

type dynamoJobJournal struct {
	logger       outbound.LoggerPort
	dynamoSvc    dynamodbiface.DynamoDBAPI
	dynamoConfig *config.DynamoConfig
	now          func() time.Time
}

func NewDynamoJobJournal(logger outbound.LoggerPort, dynamoSvc dynamodbiface.DynamoDBAPI, dynamoConfig *config.DynamoConfig) outbound.JobJournalPort {
	return &dynamoJobJournal{
		logger:       logger,
		dynamoSvc:    dynamoSvc,
		dynamoConfig: dynamoConfig,
		now:          time.Now,
	}
}

func (j *dynamoJobJournal) Record(ctx context.Context, record domain.JobRecord) error {
	now := j.now()
	item := dynamoJobItem{
		JobId:      record.JobID,
		Concept:    record.Concept,
		Status:     string(record.Status),
		Stage:      string(record.Stage),
		Kind:       record.Kind,
		Message:    record.Message,
		VideoPath:  record.VideoPath,
		ArchiveKey: record.ArchiveKey,
		FinishedAt: now.Unix(),
		TTL:        now.Add(time.Duration(j.dynamoConfig.TtlMinutes) * time.Minute).Unix(),
	}
	av, err := dynamodbattribute.MarshalMap(item)
	if err != nil {
		j.logger.ErrorWithFields(err, "Failed to marshal job item", map[string]interface{}{
			"job_id": record.JobID,
		})
		return err
	}

	input := &dynamodb.PutItemInput{
		Item:      av,
		TableName: aws.String(j.dynamoConfig.TableName),
	}

	_, err = j.dynamoSvc.PutItemWithContext(ctx, input)
	if err != nil {
		j.logger.ErrorWithFields(err, "Failed to save job item", map[string]interface{}{
			"job_id": record.JobID,
			"table":  j.dynamoConfig.TableName,
		})
		return err
	}

	return nil
}

type loggingJobJournal struct {
	logger outbound.LoggerPort
}

// NewLoggingJobJournal writes terminal job records to the log only.
func NewLoggingJobJournal(logger outbound.LoggerPort) outbound.JobJournalPort {
	return &loggingJobJournal{logger: logger}
}

func (j *loggingJobJournal) Record(_ context.Context, record domain.JobRecord) error {
	j.logger.InfoWithFields("Job finished", map[string]interface{}{
		"job_id":     record.JobID,
		"status":     record.Status,
		"stage":      record.Stage,
		"kind":       record.Kind,
		"message":    record.Message,
		"video_path": record.VideoPath,
	})
	return nil
}
