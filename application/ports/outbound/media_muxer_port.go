package outbound

import (
	"context"

	"github.com/projectsmartedu/SmartEducation/domain"
)

type MediaMuxerPort interface {
	Merge(ctx context.Context, job domain.Job, video domain.Artifact, audio domain.Artifact) (domain.Artifact, error)
}
