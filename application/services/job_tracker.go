package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/projectsmartedu/SmartEducation/application/ports/inbound"
	"github.com/projectsmartedu/SmartEducation/domain"
)

var (
	ErrJobAlreadyRunning = errors.New("job already running")
	ErrUnknownJob        = errors.New("unknown job")
)

type trackedJob struct {
	stage     domain.Stage
	updatedAt time.Time
	result    *domain.PipelineResult
}

// jobTracker records the active stage of every job and enforces the forward
// state machine. Terminal jobs are forgotten after the retention period.
type jobTracker struct {
	mu        sync.RWMutex
	jobs      map[string]*trackedJob
	retention time.Duration
	now       func() time.Time
}

func NewJobTracker(retention time.Duration) inbound.JobTrackerPort {
	return &jobTracker{
		jobs:      make(map[string]*trackedJob),
		retention: retention,
		now:       time.Now,
	}
}

// Begin registers a job in the Created stage. A finished job with the same id
// may be started again; a running one may not.
func (t *jobTracker) Begin(jobID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.pruneLocked(now)

	if current, ok := t.jobs[jobID]; ok && !current.stage.IsTerminal() {
		return fmt.Errorf("%w: %w: %s", domain.ErrInvalidRequest, ErrJobAlreadyRunning, jobID)
	}
	t.jobs[jobID] = &trackedJob{stage: domain.StageCreated, updatedAt: now}
	return nil
}

func (t *jobTracker) Enter(jobID string, stage domain.Stage) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	current, ok := t.jobs[jobID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, jobID)
	}
	if current.stage == stage {
		return nil
	}
	if !isValidTransition(current.stage, stage) {
		return fmt.Errorf("invalid transition: %s -> %s", current.stage, stage)
	}

	current.stage = stage
	current.updatedAt = t.now()
	return nil
}

func (t *jobTracker) Finish(jobID string, result domain.PipelineResult) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	current, ok := t.jobs[jobID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, jobID)
	}
	terminal := domain.StageFailed
	if result.IsSuccess() {
		terminal = domain.StageSucceeded
	}
	if !isValidTransition(current.stage, terminal) {
		return fmt.Errorf("invalid transition: %s -> %s", current.stage, terminal)
	}

	current.stage = terminal
	current.updatedAt = t.now()
	current.result = &result
	return nil
}

func (t *jobTracker) Get(jobID string) (domain.JobSnapshot, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	current, ok := t.jobs[jobID]
	if !ok {
		return domain.JobSnapshot{}, false
	}
	snapshot := domain.JobSnapshot{
		JobID:     jobID,
		Stage:     current.stage,
		UpdatedAt: current.updatedAt,
	}
	if current.result != nil {
		result := *current.result
		snapshot.Result = &result
	}
	return snapshot, true
}

func (t *jobTracker) pruneLocked(now time.Time) {
	for id, job := range t.jobs {
		if job.stage.IsTerminal() && now.Sub(job.updatedAt) > t.retention {
			delete(t.jobs, id)
		}
	}
}

// isValidTransition allows one step forward along the pipeline, or a jump to
// Failed from any active stage. Rendering and Synthesizing run inside
// Generating and are not tracked separately.
func isValidTransition(from, to domain.Stage) bool {
	if to == domain.StageFailed {
		return !from.IsTerminal()
	}
	switch from {
	case domain.StageCreated:
		return to == domain.StageExtracting
	case domain.StageExtracting:
		return to == domain.StageStoryboarding
	case domain.StageStoryboarding:
		return to == domain.StageGenerating
	case domain.StageGenerating:
		return to == domain.StageMerging
	case domain.StageMerging:
		return to == domain.StageSucceeded
	default:
		return false
	}
}
