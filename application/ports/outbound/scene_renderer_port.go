package outbound

import (
	"context"

	"github.com/projectsmartedu/SmartEducation/domain"
)

type SceneRendererPort interface {
	Render(ctx context.Context, job domain.Job, scene domain.SceneSpec) (domain.Artifact, error)
}
