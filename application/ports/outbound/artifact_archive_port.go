package outbound

import (
	"context"

	"github.com/projectsmartedu/SmartEducation/domain"
)

type ArchiveArtifactResponse struct {
	Key      string
	Region   string
	Location string
}

type ArtifactArchivePort interface {
	Enabled() bool
	Archive(ctx context.Context, artifact domain.Artifact) (*ArchiveArtifactResponse, error)
}
