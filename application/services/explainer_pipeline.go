package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/projectsmartedu/SmartEducation/application/ports/inbound"
	"github.com/projectsmartedu/SmartEducation/application/ports/outbound"
	"github.com/projectsmartedu/SmartEducation/channel_utils"
	"github.com/projectsmartedu/SmartEducation/config"
	"github.com/projectsmartedu/SmartEducation/domain"
)

var jobIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

type explainerPipeline struct {
	logger         outbound.LoggerPort
	store          outbound.ArtifactStorePort
	extractor      outbound.TextExtractorPort
	strategy       inbound.StoryboardStrategy
	renderer       outbound.SceneRendererPort
	narrator       outbound.NarrationSynthesizerPort
	muxer          outbound.MediaMuxerPort
	tracker        inbound.JobTrackerPort
	journal        outbound.JobJournalPort
	archive        outbound.ArtifactArchivePort
	workerPool     outbound.TaskDispatcher
	pipelineConfig *config.PipelineConfig
}

func NewExplainerPipeline(
	logger outbound.LoggerPort,
	store outbound.ArtifactStorePort,
	extractor outbound.TextExtractorPort,
	strategy inbound.StoryboardStrategy,
	renderer outbound.SceneRendererPort,
	narrator outbound.NarrationSynthesizerPort,
	muxer outbound.MediaMuxerPort,
	tracker inbound.JobTrackerPort,
	journal outbound.JobJournalPort,
	archive outbound.ArtifactArchivePort,
	workerPool outbound.TaskDispatcher,
	pipelineConfig *config.PipelineConfig) inbound.ExplainerPipelinePort {
	return &explainerPipeline{
		logger:         logger,
		store:          store,
		extractor:      extractor,
		strategy:       strategy,
		renderer:       renderer,
		narrator:       narrator,
		muxer:          muxer,
		tracker:        tracker,
		journal:        journal,
		archive:        archive,
		workerPool:     workerPool,
		pipelineConfig: pipelineConfig,
	}
}

type generationOutcome struct {
	stage    domain.Stage
	artifact domain.Artifact
	err      error
}

// Run drives one job to a terminal result. It never returns without a result:
// every failure is folded into PipelineResult with the stage it happened in.
func (p *explainerPipeline) Run(ctx context.Context, request domain.JobRequest) domain.PipelineResult {
	job := domain.Job{
		ID:           strings.TrimSpace(request.JobID),
		DocumentPath: strings.TrimSpace(request.DocumentPath),
		Concept:      strings.TrimSpace(request.Concept),
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	logger := p.logger.With(map[string]interface{}{"job_id": job.ID})

	if err := validateJob(job); err != nil {
		logger.WarnWithFields("Rejected job request", map[string]interface{}{"error": err.Error()})
		return domain.Failed(job.ID, domain.StageCreated, err)
	}
	if err := p.tracker.Begin(job.ID); err != nil {
		logger.WarnWithFields("Rejected job request", map[string]interface{}{"error": err.Error()})
		return domain.Failed(job.ID, domain.StageCreated, err)
	}

	logger.InfoWithFields("Job created", map[string]interface{}{
		"document_path": job.DocumentPath,
		"concept":       job.Concept,
	})

	result := p.execute(ctx, &job, logger)
	return p.complete(ctx, job, result, logger)
}

func (p *explainerPipeline) execute(ctx context.Context, job *domain.Job, logger outbound.LoggerPort) domain.PipelineResult {
	workDir, err := p.store.Prepare(job.ID)
	if err != nil {
		return p.fail(ctx, *job, domain.StageCreated, err, logger)
	}
	job.WorkDir = workDir

	if err := p.enter(ctx, job.ID, domain.StageExtracting, logger); err != nil {
		return p.fail(ctx, *job, domain.StageExtracting, err, logger)
	}
	var text string
	err = p.withRetry(ctx, domain.StageExtracting, logger, func() error {
		var err error
		text, err = p.extractor.Extract(ctx, job.DocumentPath)
		return err
	})
	if err != nil {
		return p.fail(ctx, *job, domain.StageExtracting, err, logger)
	}
	if _, err := p.store.Save(job.ID, domain.ExtractedArtifactKind, strings.NewReader(text)); err != nil {
		return p.fail(ctx, *job, domain.StageExtracting, err, logger)
	}

	if err := p.enter(ctx, job.ID, domain.StageStoryboarding, logger); err != nil {
		return p.fail(ctx, *job, domain.StageStoryboarding, err, logger)
	}
	storyboard := p.strategy.Build(text, job.Concept)
	if storyboard.Len() == 0 {
		return p.fail(ctx, *job, domain.StageStoryboarding, domain.ErrStoryboardInvalid, logger)
	}
	logger.DebugWithFields("Storyboard built", map[string]interface{}{
		"segments":   storyboard.Len(),
		"text_chars": len(text),
	})

	if err := p.enter(ctx, job.ID, domain.StageGenerating, logger); err != nil {
		return p.fail(ctx, *job, domain.StageGenerating, err, logger)
	}
	video, audio, stage, err := p.generate(ctx, *job, storyboard, logger)
	if err != nil {
		return p.fail(ctx, *job, stage, err, logger)
	}

	if err := p.enter(ctx, job.ID, domain.StageMerging, logger); err != nil {
		return p.fail(ctx, *job, domain.StageMerging, err, logger)
	}
	var final domain.Artifact
	err = p.withRetry(ctx, domain.StageMerging, logger, func() error {
		var err error
		final, err = p.muxer.Merge(ctx, *job, video, audio)
		return err
	})
	if err != nil {
		return p.fail(ctx, *job, domain.StageMerging, err, logger)
	}
	if !p.store.Exists(final.Path) {
		err := domain.NewEngineError(domain.ErrMergeFailed, "final artifact is not readable", nil)
		return p.fail(ctx, *job, domain.StageMerging, err, logger)
	}

	return domain.Succeeded(job.ID, final)
}

// generate runs rendering and synthesis side by side. Both are always allowed
// to finish; the first failure to arrive is the one reported.
func (p *explainerPipeline) generate(ctx context.Context, job domain.Job, storyboard domain.Storyboard,
	logger outbound.LoggerPort) (domain.Artifact, domain.Artifact, domain.Stage, error) {
	scene := ComposeScene(storyboard)
	narration := storyboard.NarrationText()

	outcomes, err := channel_utils.FanIn(p.workerPool,
		func() generationOutcome {
			return p.runGenerator(ctx, domain.StageRendering, logger, func() (domain.Artifact, error) {
				return p.renderer.Render(ctx, job, scene)
			})
		},
		func() generationOutcome {
			return p.runGenerator(ctx, domain.StageSynthesizing, logger, func() (domain.Artifact, error) {
				return p.narrator.Synthesize(ctx, job, narration)
			})
		},
	)
	if err != nil {
		logger.Error(err, "error dispatching generation tasks")
	}

	var video, audio domain.Artifact
	var failure *generationOutcome
	for outcome := range outcomes {
		if outcome.err != nil {
			if failure == nil {
				first := outcome
				failure = &first
			}
			continue
		}
		switch outcome.stage {
		case domain.StageRendering:
			video = outcome.artifact
		case domain.StageSynthesizing:
			audio = outcome.artifact
		}
	}
	if failure != nil {
		return domain.Artifact{}, domain.Artifact{}, failure.stage, failure.err
	}
	if video.Path == "" {
		return domain.Artifact{}, domain.Artifact{}, domain.StageRendering,
			domain.NewEngineError(domain.ErrRenderFailed, "renderer produced no video", err)
	}
	if audio.Path == "" {
		return domain.Artifact{}, domain.Artifact{}, domain.StageSynthesizing,
			domain.NewEngineError(domain.ErrSynthesisFailed, "synthesizer produced no audio", err)
	}
	return video, audio, "", nil
}

func (p *explainerPipeline) runGenerator(ctx context.Context, stage domain.Stage, logger outbound.LoggerPort,
	generate func() (domain.Artifact, error)) (outcome generationOutcome) {
	outcome.stage = stage
	defer func() {
		if r := recover(); r != nil {
			outcome.err = fmt.Errorf("%s panicked: %v", stage, r)
		}
	}()

	logger.InfoWithFields("Entering stage", map[string]interface{}{"stage": stage})
	outcome.err = p.withRetry(ctx, stage, logger, func() error {
		var err error
		outcome.artifact, err = generate()
		return err
	})
	if outcome.err != nil {
		logger.WarnWithFields("Generator failed", map[string]interface{}{
			"stage": stage,
			"error": outcome.err.Error(),
		})
	}
	return outcome
}

// withRetry applies the configured attempt budget. Attempts reuse the store's
// stable paths, so a retry overwrites the previous attempt's output.
func (p *explainerPipeline) withRetry(ctx context.Context, stage domain.Stage, logger outbound.LoggerPort, attempt func() error) error {
	attempts := max(1, p.pipelineConfig.MaxAttempts)
	var err error
	for n := 1; n <= attempts; n++ {
		if err = attempt(); err == nil {
			return nil
		}
		if n == attempts || ctx.Err() != nil || !isRetryable(err) {
			break
		}
		logger.WarnWithFields("Stage attempt failed, retrying", map[string]interface{}{
			"stage":   stage,
			"attempt": n,
			"error":   err.Error(),
		})
	}
	return err
}

func isRetryable(err error) bool {
	return !domain.IsCancellation(err) &&
		!errors.Is(err, domain.ErrStorageUnavailable) &&
		!errors.Is(err, domain.ErrInvalidRequest)
}

func (p *explainerPipeline) enter(ctx context.Context, jobID string, stage domain.Stage, logger outbound.LoggerPort) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrCancelled, err)
	}
	if err := p.tracker.Enter(jobID, stage); err != nil {
		logger.ErrorWithFields(err, "error recording stage", map[string]interface{}{"stage": stage})
	}
	logger.InfoWithFields("Entering stage", map[string]interface{}{"stage": stage})
	return nil
}

func (p *explainerPipeline) fail(ctx context.Context, job domain.Job, stage domain.Stage, err error, logger outbound.LoggerPort) domain.PipelineResult {
	if ctx.Err() != nil && !domain.IsCancellation(err) {
		err = fmt.Errorf("%w: %w", domain.ErrCancelled, err)
	}
	logger.ErrorWithFields(err, "Stage failed", map[string]interface{}{
		"stage": stage,
		"kind":  domain.KindOf(err),
	})
	return domain.Failed(job.ID, stage, err)
}

// complete releases or archives the job's files and records the outcome. It
// runs detached from the caller's cancellation so cancelled jobs are recorded.
func (p *explainerPipeline) complete(ctx context.Context, job domain.Job, result domain.PipelineResult, logger outbound.LoggerPort) domain.PipelineResult {
	bookkeepingCtx := context.WithoutCancel(ctx)

	if result.IsSuccess() {
		result = p.archiveFinal(bookkeepingCtx, job, result, logger)
	} else if err := p.store.Release(job.ID); err != nil {
		logger.Error(err, "error releasing failed job directory")
	}

	if err := p.journal.Record(bookkeepingCtx, domain.NewJobRecord(job, result)); err != nil {
		logger.Error(err, "error recording job")
	}
	if err := p.tracker.Finish(job.ID, result); err != nil {
		logger.Error(err, "error recording terminal stage")
	}

	fields := map[string]interface{}{"status": result.Status}
	if result.Final != nil {
		fields["video_path"] = result.Final.Path
	}
	if result.Failure != nil {
		fields["stage"] = result.Failure.Stage
		fields["kind"] = result.Failure.Kind
	}
	logger.InfoWithFields("Job finished", fields)
	return result
}

func (p *explainerPipeline) archiveFinal(ctx context.Context, job domain.Job, result domain.PipelineResult, logger outbound.LoggerPort) domain.PipelineResult {
	if !p.archive.Enabled() {
		return result
	}

	res, err := p.archive.Archive(ctx, *result.Final)
	if err != nil {
		logger.Error(err, "error archiving final video")
		return result
	}
	result.ArchiveKey = res.Key

	if p.pipelineConfig.ReleaseArchived {
		if err := p.store.Release(job.ID); err != nil {
			logger.Error(err, "error releasing archived job directory")
			return result
		}
		result.Final = &domain.Artifact{
			JobID: job.ID,
			Kind:  domain.FinalArtifactKind,
			Path:  res.Location,
		}
	}
	return result
}

func validateJob(job domain.Job) error {
	if job.DocumentPath == "" {
		return fmt.Errorf("%w: documentPath is required", domain.ErrInvalidRequest)
	}
	if job.Concept == "" {
		return fmt.Errorf("%w: concept is required", domain.ErrInvalidRequest)
	}
	if job.ID == "." || job.ID == ".." || !jobIDPattern.MatchString(job.ID) {
		return fmt.Errorf("%w: job id %q is not a safe directory name", domain.ErrInvalidRequest, job.ID)
	}
	return nil
}
