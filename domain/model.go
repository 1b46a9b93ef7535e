package domain

import (
	"strings"
	"time"
)

type Stage string

const (
	StageCreated       Stage = "Created"
	StageExtracting    Stage = "Extracting"
	StageStoryboarding Stage = "Storyboarding"
	StageGenerating    Stage = "Generating"
	StageRendering     Stage = "Rendering"
	StageSynthesizing  Stage = "Synthesizing"
	StageMerging       Stage = "Merging"
	StageSucceeded     Stage = "Succeeded"
	StageFailed        Stage = "Failed"
)

// IsTerminal reports whether no further transition can leave the stage.
func (s Stage) IsTerminal() bool {
	return s == StageSucceeded || s == StageFailed
}

type ArtifactKind string

const (
	ExtractedArtifactKind ArtifactKind = "extracted"
	SceneArtifactKind     ArtifactKind = "scene"
	VideoArtifactKind     ArtifactKind = "video"
	AudioArtifactKind     ArtifactKind = "audio"
	FinalArtifactKind     ArtifactKind = "final"
)

type JobRequest struct {
	JobID        string
	DocumentPath string
	Concept      string
}

type Job struct {
	ID           string
	DocumentPath string
	Concept      string
	WorkDir      string
}

type Artifact struct {
	JobID string
	Kind  ArtifactKind
	Path  string
}

type Segment struct {
	Title     string
	Narration string
}

// Storyboard is an ordered, non-empty sequence of segments.
type Storyboard struct {
	segments []Segment
}

func NewStoryboard(segments ...Segment) (Storyboard, error) {
	if len(segments) == 0 {
		return Storyboard{}, ErrStoryboardInvalid
	}
	copied := make([]Segment, len(segments))
	copy(copied, segments)
	return Storyboard{segments: copied}, nil
}

func (s Storyboard) Len() int {
	return len(s.segments)
}

// Segments returns a copy so callers cannot reorder the storyboard.
func (s Storyboard) Segments() []Segment {
	out := make([]Segment, len(s.segments))
	copy(out, s.segments)
	return out
}

// NarrationText joins the non-empty narrations in storyboard order with a single space.
func (s Storyboard) NarrationText() string {
	parts := make([]string, 0, len(s.segments))
	for _, segment := range s.segments {
		narration := strings.TrimSpace(segment.Narration)
		if narration != "" {
			parts = append(parts, narration)
		}
	}
	return strings.Join(parts, " ")
}

type SceneBeat struct {
	Heading string `json:"heading"`
	Caption string `json:"caption"`
}

// SceneSpec is the declarative description handed to the render engine.
type SceneSpec struct {
	Title string      `json:"title"`
	Beats []SceneBeat `json:"beats"`
}

type ResultStatus string

const (
	ResultSucceeded ResultStatus = "succeeded"
	ResultFailed    ResultStatus = "failed"
)

type Failure struct {
	Stage   Stage
	Kind    string
	Message string
}

type PipelineResult struct {
	JobID      string
	Status     ResultStatus
	Final      *Artifact
	Failure    *Failure
	ArchiveKey string
}

func Succeeded(jobID string, final Artifact) PipelineResult {
	return PipelineResult{
		JobID:  jobID,
		Status: ResultSucceeded,
		Final:  &final,
	}
}

func Failed(jobID string, stage Stage, err error) PipelineResult {
	return PipelineResult{
		JobID:  jobID,
		Status: ResultFailed,
		Failure: &Failure{
			Stage:   stage,
			Kind:    KindOf(err),
			Message: failureMessage(err),
		},
	}
}

func (r PipelineResult) IsSuccess() bool {
	return r.Status == ResultSucceeded && r.Final != nil
}

type JobSnapshot struct {
	JobID     string
	Stage     Stage
	UpdatedAt time.Time
	Result    *PipelineResult
}

type JobRecord struct {
	JobID      string
	Concept    string
	Status     ResultStatus
	Stage      Stage
	Kind       string
	Message    string
	VideoPath  string
	ArchiveKey string
}

func NewJobRecord(job Job, result PipelineResult) JobRecord {
	record := JobRecord{
		JobID:      job.ID,
		Concept:    job.Concept,
		Status:     result.Status,
		Stage:      StageSucceeded,
		ArchiveKey: result.ArchiveKey,
	}
	if result.Final != nil {
		record.VideoPath = result.Final.Path
	}
	if result.Failure != nil {
		record.Stage = result.Failure.Stage
		record.Kind = result.Failure.Kind
		record.Message = result.Failure.Message
	}
	return record
}
