package outbound

import (
	"io"

	"github.com/projectsmartedu/SmartEducation/domain"
)

// ArtifactStorePort owns the per-job working directories. Allocation is
// idempotent per (jobID, kind) so retries overwrite instead of accumulating.
type ArtifactStorePort interface {
	Prepare(jobID string) (string, error)
	Allocate(jobID string, kind domain.ArtifactKind) (domain.Artifact, error)
	Exists(path string) bool
	Save(jobID string, kind domain.ArtifactKind, content io.Reader) (domain.Artifact, error)
	Discard(artifact domain.Artifact)
	Release(jobID string) error
}
