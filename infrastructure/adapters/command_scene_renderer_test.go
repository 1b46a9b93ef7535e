package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/projectsmartedu/SmartEducation/config"
	"github.com/projectsmartedu/SmartEducation/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func argValue(args []string, key string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == key {
			return args[i+1]
		}
	}
	return ""
}

func newTestRenderer(t *testing.T, runner CommandRunner) (*commandSceneRenderer, string) {
	t.Helper()
	root := t.TempDir()
	store := NewLocalArtifactStore(root, newTestLogger())
	renderer := NewCommandSceneRenderer(newTestLogger(), store, runner, &config.RenderConfig{
		Binary: "render-engine",
		Args:   []string{"--quality", "low"},
	}).(*commandSceneRenderer)
	return renderer, root
}

var testScene = domain.SceneSpec{
	Title: "Gravity",
	Beats: []domain.SceneBeat{{Heading: "Gravity", Caption: "Gravity explained simply."}},
}

func TestRenderWritesSceneAndInvokesEngine(t *testing.T) {
	var sceneJSON []byte
	runner := &fakeRunner{
		run: func(ctx context.Context, name string, args ...string) (CommandResult, error) {
			var err error
			sceneJSON, err = os.ReadFile(argValue(args, "--scene"))
			require.NoError(t, err)
			mustWriteFile(t, argValue(args, "--output"), "mp4")
			return CommandResult{}, nil
		},
	}
	renderer, root := newTestRenderer(t, runner)

	video, err := renderer.Render(context.Background(), domain.Job{ID: "job-1"}, testScene)
	require.NoError(t, err)

	assert.Equal(t, domain.Artifact{JobID: "job-1", Kind: domain.VideoArtifactKind, Path: filepath.Join(root, "job-1", "video.mp4")}, video)
	require.Len(t, runner.calls, 1)
	assert.Equal(t, "render-engine", runner.calls[0].name)
	assert.Equal(t, []string{"--quality", "low"}, runner.calls[0].args[:2])

	var decoded domain.SceneSpec
	require.NoError(t, json.Unmarshal(sceneJSON, &decoded))
	assert.Equal(t, testScene, decoded)
}

func TestRenderFailureCarriesDiagnosticAndDiscardsPartialOutput(t *testing.T) {
	var output string
	runner := &fakeRunner{
		run: func(ctx context.Context, name string, args ...string) (CommandResult, error) {
			output = argValue(args, "--output")
			mustWriteFile(t, output, "half a video")
			return CommandResult{Stderr: "Traceback...\nRuntimeError: latex not found\n", ExitCode: 1}, errors.New("exit status 1")
		},
	}
	renderer, _ := newTestRenderer(t, runner)

	_, err := renderer.Render(context.Background(), domain.Job{ID: "job-1"}, testScene)
	require.ErrorIs(t, err, domain.ErrRenderFailed)

	var engineErr *domain.EngineError
	require.ErrorAs(t, err, &engineErr)
	assert.Equal(t, "RuntimeError: latex not found", engineErr.Diagnostic)
	_, statErr := os.Stat(output)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestRenderMissingOutput(t *testing.T) {
	renderer, _ := newTestRenderer(t, &fakeRunner{})

	_, err := renderer.Render(context.Background(), domain.Job{ID: "job-1"}, testScene)
	require.ErrorIs(t, err, domain.ErrRenderFailed)
}

func TestRenderDoesNotTrustStaleVideo(t *testing.T) {
	renderer, root := newTestRenderer(t, &fakeRunner{})
	mustWriteFile(t, filepath.Join(root, "job-1", "video.mp4"), "from a previous attempt")

	_, err := renderer.Render(context.Background(), domain.Job{ID: "job-1"}, testScene)
	require.ErrorIs(t, err, domain.ErrRenderFailed)
}

func TestRenderCancelledIsReportedAsCancellation(t *testing.T) {
	runner := &fakeRunner{
		run: func(ctx context.Context, name string, args ...string) (CommandResult, error) {
			return CommandResult{ExitCode: -1}, errors.Join(context.Canceled, errors.New("signal: killed"))
		},
	}
	renderer, _ := newTestRenderer(t, runner)

	_, err := renderer.Render(context.Background(), domain.Job{ID: "job-1"}, testScene)
	require.Error(t, err)
	assert.Equal(t, "Cancelled", domain.KindOf(err))
}
