package services

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/panjf2000/ants/v2"
	"github.com/projectsmartedu/SmartEducation/application/ports/inbound"
	"github.com/projectsmartedu/SmartEducation/application/ports/outbound"
	"github.com/projectsmartedu/SmartEducation/config"
	"github.com/projectsmartedu/SmartEducation/domain"
	"github.com/projectsmartedu/SmartEducation/infrastructure/adapters"
	"github.com/stretchr/testify/require"
)

// fakeEngines stands in for all four external engines. Each hook defaults to
// writing a small placeholder artifact through the real store.
type fakeEngines struct {
	store outbound.ArtifactStorePort

	mu    sync.Mutex
	calls []string

	extract    func(ctx context.Context, documentPath string) (string, error)
	render     func(ctx context.Context, job domain.Job, scene domain.SceneSpec) (domain.Artifact, error)
	synthesize func(ctx context.Context, job domain.Job, narration string) (domain.Artifact, error)
	merge      func(ctx context.Context, job domain.Job, video, audio domain.Artifact) (domain.Artifact, error)
}

func (f *fakeEngines) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeEngines) called(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeEngines) Extract(ctx context.Context, documentPath string) (string, error) {
	f.record("extract")
	if f.extract != nil {
		return f.extract(ctx, documentPath)
	}
	return "Hello world\n\nMore text", nil
}

func (f *fakeEngines) Render(ctx context.Context, job domain.Job, scene domain.SceneSpec) (domain.Artifact, error) {
	f.record("render")
	if f.render != nil {
		return f.render(ctx, job, scene)
	}
	return f.store.Save(job.ID, domain.VideoArtifactKind, strings.NewReader("video"))
}

func (f *fakeEngines) Synthesize(ctx context.Context, job domain.Job, narration string) (domain.Artifact, error) {
	f.record("synthesize")
	if f.synthesize != nil {
		return f.synthesize(ctx, job, narration)
	}
	return f.store.Save(job.ID, domain.AudioArtifactKind, strings.NewReader("audio"))
}

func (f *fakeEngines) Merge(ctx context.Context, job domain.Job, video, audio domain.Artifact) (domain.Artifact, error) {
	f.record("merge")
	if f.merge != nil {
		return f.merge(ctx, job, video, audio)
	}
	return f.store.Save(job.ID, domain.FinalArtifactKind, strings.NewReader("final"))
}

type fakeJournal struct {
	mu      sync.Mutex
	records []domain.JobRecord
	err     error
}

func (j *fakeJournal) Record(ctx context.Context, record domain.JobRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.records = append(j.records, record)
	return j.err
}

type fakeArchive struct {
	enabled  bool
	err      error
	archived []domain.Artifact
}

func (a *fakeArchive) Enabled() bool {
	return a.enabled
}

func (a *fakeArchive) Archive(ctx context.Context, artifact domain.Artifact) (*outbound.ArchiveArtifactResponse, error) {
	if a.err != nil {
		return nil, a.err
	}
	a.archived = append(a.archived, artifact)
	key := "explainers/" + artifact.JobID + "/" + filepath.Base(artifact.Path)
	return &outbound.ArchiveArtifactResponse{
		Key:      key,
		Region:   "eu-west-1",
		Location: "s3://videos/" + key,
	}, nil
}

// limitedDispatcher runs the first accept tasks on their own goroutines and
// rejects every task after that.
type limitedDispatcher struct {
	mu     sync.Mutex
	accept int
}

func (d *limitedDispatcher) Submit(task func()) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.accept == 0 {
		return ants.ErrPoolOverload
	}
	d.accept--
	go task()
	return nil
}

type emptyStoryboardStrategy struct{}

func (emptyStoryboardStrategy) Build(string, string) domain.Storyboard {
	return domain.Storyboard{}
}

type pipelineFixture struct {
	root     string
	store    outbound.ArtifactStorePort
	engines  *fakeEngines
	tracker  inbound.JobTrackerPort
	journal  *fakeJournal
	archive  *fakeArchive
	strategy inbound.StoryboardStrategy

	dispatcher outbound.TaskDispatcher
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()
	root := t.TempDir()
	store := adapters.NewLocalArtifactStore(root, newTestLogger())
	return &pipelineFixture{
		root:     root,
		store:    store,
		engines:  &fakeEngines{store: store},
		tracker:  NewJobTracker(testPipelineConfig().JobRetention),
		journal:  &fakeJournal{},
		archive:  &fakeArchive{},
		strategy: NewPrefixStoryboardStrategy(testPipelineConfig()),
	}
}

func (f *pipelineFixture) pipeline(t *testing.T, pipelineConfig *config.PipelineConfig) inbound.ExplainerPipelinePort {
	t.Helper()
	var workerPool outbound.TaskDispatcher = f.dispatcher
	if workerPool == nil {
		pool, err := ants.NewPool(4)
		require.NoError(t, err)
		t.Cleanup(pool.Release)
		workerPool = pool
	}

	return NewExplainerPipeline(
		newTestLogger(),
		f.store,
		f.engines,
		f.strategy,
		f.engines,
		f.engines,
		f.engines,
		f.tracker,
		f.journal,
		f.archive,
		workerPool,
		pipelineConfig,
	)
}

func (f *pipelineFixture) files(t *testing.T) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(f.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			rel, _ := filepath.Rel(f.root, path)
			files = append(files, rel)
		}
		return nil
	})
	require.NoError(t, err)
	return files
}

func newTestLogger() outbound.LoggerPort {
	return adapters.NewZerologWrapperWithWriter(io.Discard, "error")
}

func testRequest(jobID string) domain.JobRequest {
	return domain.JobRequest{
		JobID:        jobID,
		DocumentPath: "/docs/gravity.pdf",
		Concept:      "Gravity",
	}
}
