package inbound

import "github.com/projectsmartedu/SmartEducation/domain"

type JobTrackerPort interface {
	Begin(jobID string) error
	Enter(jobID string, stage domain.Stage) error
	Finish(jobID string, result domain.PipelineResult) error
	Get(jobID string) (domain.JobSnapshot, bool)
}
