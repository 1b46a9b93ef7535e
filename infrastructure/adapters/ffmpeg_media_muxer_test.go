package adapters

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/projectsmartedu/SmartEducation/config"
	"github.com/projectsmartedu/SmartEducation/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mediaEngine fakes ffmpeg/ffprobe over files whose content is their duration
// in seconds. The fake muxer keeps the longer input unless -t bounds it, which
// mirrors ffmpeg once apad makes the audio stream infinite.
func mediaEngine(t *testing.T) *fakeRunner {
	return &fakeRunner{
		run: func(ctx context.Context, name string, args ...string) (CommandResult, error) {
			switch name {
			case "ffprobe":
				content, err := os.ReadFile(args[len(args)-1])
				if err != nil {
					return CommandResult{Stderr: err.Error(), ExitCode: 1}, err
				}
				return CommandResult{Stdout: string(content) + "\n"}, nil
			case "ffmpeg":
				var inputs []float64
				for i, arg := range args {
					if arg == "-i" {
						content, err := os.ReadFile(args[i+1])
						require.NoError(t, err)
						d, err := strconv.ParseFloat(strings.TrimSpace(string(content)), 64)
						require.NoError(t, err)
						inputs = append(inputs, d)
					}
				}
				out := inputs[0]
				if inputs[1] > out {
					out = inputs[1]
				}
				if limit := argValue(args, "-t"); limit != "" {
					l, err := strconv.ParseFloat(limit, 64)
					require.NoError(t, err)
					if l < out || hasArg(args, "apad") {
						out = l
					}
				}
				mustWriteFile(t, args[len(args)-1], strconv.FormatFloat(out, 'f', 3, 64))
				return CommandResult{}, nil
			default:
				return CommandResult{ExitCode: 127}, fmt.Errorf("unknown binary %s", name)
			}
		},
	}
}

func hasArg(args []string, needle string) bool {
	for _, arg := range args {
		if arg == needle {
			return true
		}
	}
	return false
}

func newTestMuxer(t *testing.T, runner CommandRunner) (*ffmpegMediaMuxer, string) {
	t.Helper()
	root := t.TempDir()
	muxer := NewFFmpegMediaMuxer(newTestLogger(), NewLocalArtifactStore(root, newTestLogger()), runner, &config.MediaConfig{
		FFmpegBinary:  "ffmpeg",
		FFprobeBinary: "ffprobe",
	}).(*ffmpegMediaMuxer)
	return muxer, root
}

func writeMedia(t *testing.T, root string, kind domain.ArtifactKind, name string, seconds float64) domain.Artifact {
	path := filepath.Join(root, "job-1", name)
	mustWriteFile(t, path, strconv.FormatFloat(seconds, 'f', 3, 64))
	return domain.Artifact{JobID: "job-1", Kind: kind, Path: path}
}

func TestMergeKeepsVideoDuration(t *testing.T) {
	tests := []struct {
		name  string
		audio float64
	}{
		{name: "audio shorter than video", audio: 4},
		{name: "audio equal to video", audio: 10},
		{name: "audio longer than video", audio: 17.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			muxer, root := newTestMuxer(t, mediaEngine(t))
			video := writeMedia(t, root, domain.VideoArtifactKind, "video.mp4", 10)
			audio := writeMedia(t, root, domain.AudioArtifactKind, "audio.mp3", tt.audio)

			final, err := muxer.Merge(context.Background(), domain.Job{ID: "job-1"}, video, audio)
			require.NoError(t, err)

			assert.Equal(t, filepath.Join(root, "job-1", "final.mp4"), final.Path)
			assert.Equal(t, domain.FinalArtifactKind, final.Kind)
			content, err := os.ReadFile(final.Path)
			require.NoError(t, err)
			assert.Equal(t, "10.000", string(content))
		})
	}
}

func TestMergeReplacesAudioTrack(t *testing.T) {
	runner := mediaEngine(t)
	muxer, root := newTestMuxer(t, runner)
	video := writeMedia(t, root, domain.VideoArtifactKind, "video.mp4", 8)
	audio := writeMedia(t, root, domain.AudioArtifactKind, "audio.mp3", 3)

	_, err := muxer.Merge(context.Background(), domain.Job{ID: "job-1"}, video, audio)
	require.NoError(t, err)

	var ffmpegArgs []string
	for _, call := range runner.calls {
		if call.name == "ffmpeg" {
			ffmpegArgs = call.args
		}
	}
	require.NotNil(t, ffmpegArgs)
	assert.Contains(t, strings.Join(ffmpegArgs, " "), "-map 0:v:0 -map 1:a:0")
	assert.Equal(t, "8.000", argValue(ffmpegArgs, "-t"))
	assert.False(t, hasArg(ffmpegArgs, "-shortest"))
	assert.False(t, hasArg(ffmpegArgs, "amix"))
}

func TestMergeRequiresBothInputs(t *testing.T) {
	runner := mediaEngine(t)
	muxer, root := newTestMuxer(t, runner)
	video := writeMedia(t, root, domain.VideoArtifactKind, "video.mp4", 8)
	audio := domain.Artifact{JobID: "job-1", Kind: domain.AudioArtifactKind, Path: filepath.Join(root, "job-1", "audio.mp3")}

	_, err := muxer.Merge(context.Background(), domain.Job{ID: "job-1"}, video, audio)
	require.ErrorIs(t, err, domain.ErrMergeFailed)
	assert.Empty(t, runner.calls)
}

func TestMergeCodecFailureDiscardsPartialFinal(t *testing.T) {
	runner := &fakeRunner{
		run: func(ctx context.Context, name string, args ...string) (CommandResult, error) {
			if name == "ffprobe" {
				return CommandResult{Stdout: "8.0\n"}, nil
			}
			mustWriteFile(t, args[len(args)-1], "truncated")
			return CommandResult{Stderr: "Unknown encoder 'aac'\n", ExitCode: 1}, errors.New("exit status 1")
		},
	}
	muxer, root := newTestMuxer(t, runner)
	video := writeMedia(t, root, domain.VideoArtifactKind, "video.mp4", 8)
	audio := writeMedia(t, root, domain.AudioArtifactKind, "audio.mp3", 3)

	_, err := muxer.Merge(context.Background(), domain.Job{ID: "job-1"}, video, audio)
	require.ErrorIs(t, err, domain.ErrMergeFailed)

	var engineErr *domain.EngineError
	require.ErrorAs(t, err, &engineErr)
	assert.Equal(t, "Unknown encoder 'aac'", engineErr.Diagnostic)
	_, statErr := os.Stat(filepath.Join(root, "job-1", "final.mp4"))
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestMergeUnreadableFinal(t *testing.T) {
	runner := &fakeRunner{
		run: func(ctx context.Context, name string, args ...string) (CommandResult, error) {
			path := args[len(args)-1]
			if name == "ffprobe" {
				if strings.HasSuffix(path, "final.mp4") {
					return CommandResult{Stderr: "moov atom not found", ExitCode: 1}, errors.New("exit status 1")
				}
				return CommandResult{Stdout: "8.0\n"}, nil
			}
			mustWriteFile(t, path, "garbage")
			return CommandResult{}, nil
		},
	}
	muxer, root := newTestMuxer(t, runner)
	video := writeMedia(t, root, domain.VideoArtifactKind, "video.mp4", 8)
	audio := writeMedia(t, root, domain.AudioArtifactKind, "audio.mp3", 3)

	_, err := muxer.Merge(context.Background(), domain.Job{ID: "job-1"}, video, audio)
	require.ErrorIs(t, err, domain.ErrMergeFailed)
	_, statErr := os.Stat(filepath.Join(root, "job-1", "final.mp4"))
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestMergeUnprobeableVideo(t *testing.T) {
	runner := &fakeRunner{
		run: func(ctx context.Context, name string, args ...string) (CommandResult, error) {
			return CommandResult{Stdout: "N/A\n"}, nil
		},
	}
	muxer, root := newTestMuxer(t, runner)
	video := writeMedia(t, root, domain.VideoArtifactKind, "video.mp4", 8)
	audio := writeMedia(t, root, domain.AudioArtifactKind, "audio.mp3", 3)

	_, err := muxer.Merge(context.Background(), domain.Job{ID: "job-1"}, video, audio)
	require.ErrorIs(t, err, domain.ErrMergeFailed)
	require.Len(t, runner.calls, 1)
}
