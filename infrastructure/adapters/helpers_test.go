package adapters

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/projectsmartedu/SmartEducation/application/ports/outbound"
	"github.com/stretchr/testify/require"
)

// fakeRunner delegates to injected behavior and records invocations.
type fakeRunner struct {
	calls []fakeCall
	run   func(ctx context.Context, name string, args ...string) (CommandResult, error)
}

type fakeCall struct {
	name string
	args []string
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (CommandResult, error) {
	f.calls = append(f.calls, fakeCall{name: name, args: append([]string{}, args...)})
	if f.run == nil {
		return CommandResult{}, nil
	}
	return f.run(ctx, name, args...)
}

func mustWriteFile(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newTestLogger() outbound.LoggerPort {
	return NewZerologWrapperWithWriter(io.Discard, "error")
}
