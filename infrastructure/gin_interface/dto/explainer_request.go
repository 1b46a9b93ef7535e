package dto

import (
	"time"

	"github.com/projectsmartedu/SmartEducation/domain"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

type CreateExplainerRequest struct {
	DocumentPath string `json:"documentPath" binding:"required"`
	Concept      string `json:"concept" binding:"required"`
	JobID        string `json:"jobId"`
}

func (r CreateExplainerRequest) ToJobRequest() domain.JobRequest {
	return domain.JobRequest{
		JobID:        r.JobID,
		DocumentPath: r.DocumentPath,
		Concept:      r.Concept,
	}
}

type ExplainerSuccessResponse struct {
	Status     string `json:"status"`
	JobID      string `json:"jobId"`
	VideoPath  string `json:"videoPath"`
	ArchiveKey string `json:"archiveKey,omitempty"`
}

type ExplainerErrorResponse struct {
	Status  string `json:"status"`
	JobID   string `json:"jobId,omitempty"`
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// NewExplainerResponse renders a terminal result as the success or error payload.
func NewExplainerResponse(result domain.PipelineResult) interface{} {
	if result.IsSuccess() {
		return ExplainerSuccessResponse{
			Status:     StatusSuccess,
			JobID:      result.JobID,
			VideoPath:  result.Final.Path,
			ArchiveKey: result.ArchiveKey,
		}
	}
	res := ExplainerErrorResponse{
		Status: StatusError,
		JobID:  result.JobID,
	}
	if result.Failure != nil {
		res.Stage = string(result.Failure.Stage)
		res.Message = result.Failure.Message
	}
	return res
}

type JobSnapshotResponse struct {
	JobID     string      `json:"jobId"`
	Stage     string      `json:"stage"`
	UpdatedAt time.Time   `json:"updatedAt"`
	Result    interface{} `json:"result,omitempty"`
}

func NewJobSnapshotResponse(snapshot domain.JobSnapshot) JobSnapshotResponse {
	res := JobSnapshotResponse{
		JobID:     snapshot.JobID,
		Stage:     string(snapshot.Stage),
		UpdatedAt: snapshot.UpdatedAt,
	}
	if snapshot.Result != nil {
		res.Result = NewExplainerResponse(*snapshot.Result)
	}
	return res
}
