package adapters

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/projectsmartedu/SmartEducation/application/ports/outbound"
	"github.com/projectsmartedu/SmartEducation/config"
	"github.com/projectsmartedu/SmartEducation/domain"
)

type ffmpegMediaMuxer struct {
	logger      outbound.LoggerPort
	store       outbound.ArtifactStorePort
	runner      CommandRunner
	mediaConfig *config.MediaConfig
}

func NewFFmpegMediaMuxer(logger outbound.LoggerPort, store outbound.ArtifactStorePort, runner CommandRunner,
	mediaConfig *config.MediaConfig) outbound.MediaMuxerPort {
	return &ffmpegMediaMuxer{
		logger:      logger,
		store:       store,
		runner:      runner,
		mediaConfig: mediaConfig,
	}
}

// Merge replaces the video's audio track with the narration. The output keeps
// the video's duration: short narration is padded with silence, long narration
// is cut at the last frame.
func (m *ffmpegMediaMuxer) Merge(ctx context.Context, job domain.Job, video domain.Artifact, audio domain.Artifact) (domain.Artifact, error) {
	if !m.store.Exists(video.Path) {
		return domain.Artifact{}, domain.NewEngineError(domain.ErrMergeFailed, "video artifact is missing", nil)
	}
	if !m.store.Exists(audio.Path) {
		return domain.Artifact{}, domain.NewEngineError(domain.ErrMergeFailed, "audio artifact is missing", nil)
	}

	duration, err := m.getDuration(ctx, video.Path)
	if err != nil {
		return domain.Artifact{}, domain.NewEngineError(domain.ErrMergeFailed, "cannot probe video duration", err)
	}

	final, err := m.store.Allocate(job.ID, domain.FinalArtifactKind)
	if err != nil {
		return domain.Artifact{}, err
	}
	m.store.Discard(final)

	args := buildMergeArgs(video.Path, audio.Path, duration, final.Path)
	result, err := m.runner.Run(ctx, m.mediaConfig.FFmpegBinary, args...)
	if err != nil {
		m.store.Discard(final)
		m.logger.ErrorWithFields(err, "ffmpeg merge failed", map[string]interface{}{
			"job_id":    job.ID,
			"exit_code": result.ExitCode,
			"stderr":    result.Stderr,
		})
		return domain.Artifact{}, domain.NewEngineError(domain.ErrMergeFailed, commandDiagnostic(result), err)
	}

	if !m.store.Exists(final.Path) {
		return domain.Artifact{}, domain.NewEngineError(domain.ErrMergeFailed, "ffmpeg completed but final file is missing", nil)
	}
	if _, err := m.getDuration(ctx, final.Path); err != nil {
		m.store.Discard(final)
		return domain.Artifact{}, domain.NewEngineError(domain.ErrMergeFailed, "final artifact is not readable", err)
	}

	m.logger.DebugWithFields("Audio and video merged", map[string]interface{}{
		"job_id":   job.ID,
		"path":     final.Path,
		"duration": duration,
	})
	return final, nil
}

func (m *ffmpegMediaMuxer) getDuration(ctx context.Context, filePath string) (float64, error) {
	args := []string{"-v", "error", "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1", filePath}
	result, err := m.runner.Run(ctx, m.mediaConfig.FFprobeBinary, args...)
	if err != nil {
		m.logger.ErrorWithFields(err, "error getting media duration", map[string]interface{}{
			"path":   filePath,
			"stderr": result.Stderr,
		})
		return 0, err
	}

	durationStr := strings.TrimSpace(result.Stdout)
	duration, err := strconv.ParseFloat(durationStr, 64)
	if err != nil {
		m.logger.ErrorWithFields(err, "error parsing media duration", map[string]interface{}{
			"path":   filePath,
			"output": durationStr,
		})
		return 0, err
	}
	if duration <= 0 {
		return 0, fmt.Errorf("media %s has no duration", filePath)
	}

	return duration, nil
}

func buildMergeArgs(videoPath, audioPath string, videoDuration float64, outputPath string) []string {
	return []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", videoPath,
		"-i", audioPath,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", "copy",
		"-c:a", "aac",
		"-af", "apad",
		"-t", strconv.FormatFloat(videoDuration, 'f', 3, 64),
		outputPath,
	}
}
