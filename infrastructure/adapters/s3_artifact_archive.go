package adapters

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/projectsmartedu/SmartEducation/application/ports/outbound"
	"github.com/projectsmartedu/SmartEducation/config"
	"github.com/projectsmartedu/SmartEducation/domain"
)

type s3ArtifactArchive struct {
	logger   outbound.LoggerPort
	s3Svc    s3iface.S3API
	s3Config *config.S3Config
}

func NewS3ArtifactArchive(logger outbound.LoggerPort, s3Svc s3iface.S3API, s3Config *config.S3Config) outbound.ArtifactArchivePort {
	return &s3ArtifactArchive{
		logger:   logger,
		s3Svc:    s3Svc,
		s3Config: s3Config,
	}
}

func (s *s3ArtifactArchive) Enabled() bool {
	return s.s3Config.Enabled()
}

func (s *s3ArtifactArchive) Archive(ctx context.Context, artifact domain.Artifact) (*outbound.ArchiveArtifactResponse, error) {
	itemPath := getS3ItemPath(artifact)

	file, err := os.Open(artifact.Path)
	if err != nil {
		s.logger.ErrorWithFields(err, "Failed to open artifact file", map[string]interface{}{
			"path": artifact.Path,
		})
		return nil, err
	}
	defer func(file *os.File) {
		if err := file.Close(); err != nil {
			s.logger.Error(err, "Failed to close artifact file")
		}
	}(file)

	putInput := &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(itemPath),
		Body:        file,
		ContentType: aws.String(contentTypeFor(artifact.Kind)),
	}

	_, err = s.s3Svc.PutObjectWithContext(ctx, putInput)
	if err != nil {
		s.logger.ErrorWithFields(err, "Failed to upload object to S3", map[string]interface{}{
			"bucket": s.s3Config.BucketName,
			"key":    itemPath,
		})
		return nil, err
	}

	return &outbound.ArchiveArtifactResponse{
		Key:      itemPath,
		Region:   s.s3Config.Region,
		Location: fmt.Sprintf("s3://%s/%s", s.s3Config.BucketName, itemPath),
	}, nil
}

func getS3ItemPath(artifact domain.Artifact) string {
	return fmt.Sprintf("explainers/%s/%s", artifact.JobID, filepath.Base(artifact.Path))
}

func contentTypeFor(kind domain.ArtifactKind) string {
	switch kind {
	case domain.VideoArtifactKind, domain.FinalArtifactKind:
		return "video/mp4"
	case domain.AudioArtifactKind:
		return "audio/mpeg"
	case domain.SceneArtifactKind:
		return "application/json"
	default:
		return "text/plain; charset=utf-8"
	}
}

type noopArtifactArchive struct{}

// NewNoopArtifactArchive is used when no bucket is configured.
func NewNoopArtifactArchive() outbound.ArtifactArchivePort {
	return noopArtifactArchive{}
}

func (noopArtifactArchive) Enabled() bool {
	return false
}

func (noopArtifactArchive) Archive(context.Context, domain.Artifact) (*outbound.ArchiveArtifactResponse, error) {
	return nil, nil
}
