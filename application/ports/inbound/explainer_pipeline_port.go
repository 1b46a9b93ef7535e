package inbound

import (
	"context"

	"github.com/projectsmartedu/SmartEducation/domain"
)

type ExplainerPipelinePort interface {
	Run(ctx context.Context, request domain.JobRequest) domain.PipelineResult
}
