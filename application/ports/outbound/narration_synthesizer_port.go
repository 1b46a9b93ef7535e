package outbound

import (
	"context"

	"github.com/projectsmartedu/SmartEducation/domain"
)

type NarrationSynthesizerPort interface {
	Synthesize(ctx context.Context, job domain.Job, narration string) (domain.Artifact, error)
}
