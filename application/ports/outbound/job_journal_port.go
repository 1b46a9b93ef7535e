package outbound

import (
	"context"

	"github.com/projectsmartedu/SmartEducation/domain"
)

type JobJournalPort interface {
	Record(ctx context.Context, record domain.JobRecord) error
}
