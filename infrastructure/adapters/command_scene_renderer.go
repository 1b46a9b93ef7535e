package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/projectsmartedu/SmartEducation/application/ports/outbound"
	"github.com/projectsmartedu/SmartEducation/config"
	"github.com/projectsmartedu/SmartEducation/domain"
)

type commandSceneRenderer struct {
	logger       outbound.LoggerPort
	store        outbound.ArtifactStorePort
	runner       CommandRunner
	renderConfig *config.RenderConfig
}

func NewCommandSceneRenderer(logger outbound.LoggerPort, store outbound.ArtifactStorePort, runner CommandRunner,
	renderConfig *config.RenderConfig) outbound.SceneRendererPort {
	return &commandSceneRenderer{
		logger:       logger,
		store:        store,
		runner:       runner,
		renderConfig: renderConfig,
	}
}

func (r *commandSceneRenderer) Render(ctx context.Context, job domain.Job, scene domain.SceneSpec) (domain.Artifact, error) {
	payload, err := json.MarshalIndent(scene, "", "  ")
	if err != nil {
		r.logger.Error(err, "Failed to marshal scene description")
		return domain.Artifact{}, domain.NewEngineError(domain.ErrRenderFailed, "invalid scene description", err)
	}

	sceneArtifact, err := r.store.Save(job.ID, domain.SceneArtifactKind, bytes.NewReader(payload))
	if err != nil {
		return domain.Artifact{}, err
	}

	video, err := r.store.Allocate(job.ID, domain.VideoArtifactKind)
	if err != nil {
		return domain.Artifact{}, err
	}
	// A stale video from an earlier attempt must not pass the output check below.
	r.store.Discard(video)

	args := append(append([]string{}, r.renderConfig.Args...), "--scene", sceneArtifact.Path, "--output", video.Path)
	result, err := r.runner.Run(ctx, r.renderConfig.Binary, args...)
	if err != nil {
		r.store.Discard(video)
		r.logger.ErrorWithFields(err, "Render engine failed", map[string]interface{}{
			"job_id":    job.ID,
			"command":   r.renderConfig.Binary,
			"exit_code": result.ExitCode,
			"stderr":    result.Stderr,
		})
		return domain.Artifact{}, domain.NewEngineError(domain.ErrRenderFailed, commandDiagnostic(result), err)
	}

	if !r.store.Exists(video.Path) {
		r.logger.ErrorWithFields(nil, "Render engine completed but video file is missing", map[string]interface{}{
			"job_id": job.ID,
			"path":   video.Path,
			"stdout": result.Stdout,
		})
		return domain.Artifact{}, domain.NewEngineError(domain.ErrRenderFailed, "renderer completed but video file is missing", nil)
	}

	r.logger.DebugWithFields("Scene rendered", map[string]interface{}{
		"job_id": job.ID,
		"path":   video.Path,
	})
	return video, nil
}

// commandDiagnostic summarises a failed engine run without leaking its full output.
func commandDiagnostic(result CommandResult) string {
	if diag := domain.ShortDiagnostic(result.Stderr); diag != "" {
		return diag
	}
	return fmt.Sprintf("exit code %d", result.ExitCode)
}
