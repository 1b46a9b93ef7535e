package adapters

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/projectsmartedu/SmartEducation/application/ports/outbound"
	"github.com/projectsmartedu/SmartEducation/domain"
)

// Stable names per kind: re-running a job id overwrites its artifacts.
var artifactFileNames = map[domain.ArtifactKind]string{
	domain.ExtractedArtifactKind: "extracted.txt",
	domain.SceneArtifactKind:     "scene.json",
	domain.VideoArtifactKind:     "video.mp4",
	domain.AudioArtifactKind:     "audio.mp3",
	domain.FinalArtifactKind:     "final.mp4",
}

type localArtifactStore struct {
	logger outbound.LoggerPort
	root   string
}

func NewLocalArtifactStore(root string, logger outbound.LoggerPort) outbound.ArtifactStorePort {
	return &localArtifactStore{
		logger: logger,
		root:   root,
	}
}

func (s *localArtifactStore) Prepare(jobID string) (string, error) {
	dir, err := s.jobDir(jobID)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.logger.ErrorWithFields(err, "Failed to create job directory", map[string]interface{}{
			"dir": dir,
		})
		return "", fmt.Errorf("%w: create %s: %w", domain.ErrStorageUnavailable, dir, err)
	}

	probe, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		s.logger.ErrorWithFields(err, "Job directory is not writable", map[string]interface{}{
			"dir": dir,
		})
		return "", fmt.Errorf("%w: %s is not writable: %w", domain.ErrStorageUnavailable, dir, err)
	}
	_ = probe.Close()
	_ = os.Remove(probe.Name())

	return dir, nil
}

func (s *localArtifactStore) Allocate(jobID string, kind domain.ArtifactKind) (domain.Artifact, error) {
	name, ok := artifactFileNames[kind]
	if !ok {
		return domain.Artifact{}, fmt.Errorf("%w: unknown artifact kind %q", domain.ErrStorageUnavailable, kind)
	}

	dir, err := s.Prepare(jobID)
	if err != nil {
		return domain.Artifact{}, err
	}

	return domain.Artifact{
		JobID: jobID,
		Kind:  kind,
		Path:  filepath.Join(dir, name),
	}, nil
}

func (s *localArtifactStore) Exists(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	file, err := os.Open(path)
	if err != nil {
		return false
	}
	_ = file.Close()
	return true
}

// Save writes through a temp file and renames it into place, so the artifact
// path only ever holds complete content.
func (s *localArtifactStore) Save(jobID string, kind domain.ArtifactKind, content io.Reader) (domain.Artifact, error) {
	artifact, err := s.Allocate(jobID, kind)
	if err != nil {
		return domain.Artifact{}, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(artifact.Path), "."+filepath.Base(artifact.Path)+".tmp-*")
	if err != nil {
		return domain.Artifact{}, fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}
	defer func(name string) {
		if err := os.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.logger.Error(err, "Failed to remove temporary artifact file")
		}
	}(tmp.Name())

	if _, err := io.Copy(tmp, content); err != nil {
		_ = tmp.Close()
		return domain.Artifact{}, fmt.Errorf("write %s artifact: %w", kind, err)
	}
	if err := tmp.Close(); err != nil {
		return domain.Artifact{}, fmt.Errorf("%w: close %s artifact: %w", domain.ErrStorageUnavailable, kind, err)
	}
	if err := os.Rename(tmp.Name(), artifact.Path); err != nil {
		return domain.Artifact{}, fmt.Errorf("%w: publish %s artifact: %w", domain.ErrStorageUnavailable, kind, err)
	}

	return artifact, nil
}

func (s *localArtifactStore) Discard(artifact domain.Artifact) {
	if artifact.Path == "" {
		return
	}
	if err := os.Remove(artifact.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.ErrorWithFields(err, "Failed to discard partial artifact", map[string]interface{}{
			"job_id": artifact.JobID,
			"kind":   artifact.Kind,
			"path":   artifact.Path,
		})
	}
}

func (s *localArtifactStore) Release(jobID string) error {
	dir, err := s.jobDir(jobID)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(dir); err != nil {
		s.logger.ErrorWithFields(err, "Failed to release job directory", map[string]interface{}{
			"dir": dir,
		})
		return err
	}
	return nil
}

func (s *localArtifactStore) jobDir(jobID string) (string, error) {
	if jobID == "" || jobID == "." || jobID == ".." || strings.ContainsAny(jobID, `/\`) {
		return "", fmt.Errorf("%w: invalid job id %q", domain.ErrStorageUnavailable, jobID)
	}
	return filepath.Join(s.root, jobID), nil
}
