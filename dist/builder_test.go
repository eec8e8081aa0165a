package dist

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner simulates go build invocations. For successful targets it
// creates the output artifact like the real toolchain would.
type fakeRunner struct {
	failTriples  map[string]bool
	skipArtifact map[string]bool
	calls        []fakeCall
}

type fakeCall struct {
	name string
	args []string
	env  []string
}

func (f *fakeRunner) Run(name string, args []string, env []string) error {
	f.calls = append(f.calls, fakeCall{name: name, args: args, env: env})

	// Output path follows -o.
	var out string
	for i, arg := range args {
		if arg == "-o" && i+1 < len(args) {
			out = args[i+1]
		}
	}
	triple := filepath.Base(filepath.Dir(out))

	if f.failTriples[triple] {
		return errors.New("exit status 1")
	}
	if f.skipArtifact[triple] {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return err
	}
	return os.WriteFile(out, []byte("binary"), 0o755)
}

func newTestBuilder(t *testing.T, runner Runner) *Builder {
	t.Helper()
	dir := t.TempDir()
	return &Builder{
		PackagePath: "./cmd/deepseek-plugin",
		DistDir:     filepath.Join(dir, "dist"),
		BuildDir:    filepath.Join(dir, "build"),
		Runner:      runner,
		LookPath:    func(string) (string, error) { return "/usr/bin/fake", nil },
	}
}

func TestBuildAllTargets(t *testing.T) {
	runner := &fakeRunner{}
	b := newTestBuilder(t, runner)

	summary, err := b.Build()
	require.NoError(t, err)

	assert.Len(t, summary.Built(), len(DefaultTargets))
	assert.Empty(t, summary.Failed())
	assert.Len(t, runner.calls, len(DefaultTargets))

	files, err := b.ListDist()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"deepseek-plugin-aarch64.dylib",
		"deepseek-plugin-x86_64.dll",
		"deepseek-plugin-x86_64.dylib",
		"deepseek-plugin-x86_64.so",
	}, files)
}

func TestBuildSetsCrossEnv(t *testing.T) {
	runner := &fakeRunner{}
	b := newTestBuilder(t, runner)

	_, err := b.Build()
	require.NoError(t, err)

	byTriple := map[string]fakeCall{}
	for _, call := range runner.calls {
		var out string
		for i, arg := range call.args {
			if arg == "-o" && i+1 < len(call.args) {
				out = call.args[i+1]
			}
		}
		byTriple[filepath.Base(filepath.Dir(out))] = call
	}

	windows := byTriple["x86_64-windows"]
	assert.Contains(t, windows.env, "GOOS=windows")
	assert.Contains(t, windows.env, "GOARCH=amd64")
	assert.Contains(t, windows.env, "CGO_ENABLED=1")
	assert.Contains(t, windows.env, "CC=x86_64-w64-mingw32-gcc")

	linux := byTriple["x86_64-linux"]
	assert.Contains(t, linux.env, "GOOS=linux")
	for _, e := range linux.env {
		assert.NotContains(t, e, "CC=", "native target should not set CC")
	}
}

func TestBuildContinuesPastFailures(t *testing.T) {
	runner := &fakeRunner{failTriples: map[string]bool{"x86_64-windows": true}}
	b := newTestBuilder(t, runner)

	summary, err := b.Build()
	require.NoError(t, err, "per-target failures must not fail the build run")

	assert.Equal(t, []string{"x86_64-windows"}, summary.Failed())
	assert.Len(t, summary.Built(), len(DefaultTargets)-1)
	assert.Len(t, runner.calls, len(DefaultTargets), "remaining targets still attempted")
}

func TestBuildDetectsMissingArtifact(t *testing.T) {
	runner := &fakeRunner{skipArtifact: map[string]bool{"x86_64-macos": true}}
	b := newTestBuilder(t, runner)

	summary, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, []string{"x86_64-macos"}, summary.Failed())
}

func TestBuildRequiresGoToolchain(t *testing.T) {
	runner := &fakeRunner{}
	b := newTestBuilder(t, runner)
	b.LookPath = func(file string) (string, error) {
		if file == "go" {
			return "", errors.New("not found")
		}
		return "/usr/bin/fake", nil
	}

	_, err := b.Build()
	require.Error(t, err)
	assert.Empty(t, runner.calls, "no targets should be attempted without the toolchain")
}

func TestBuildMissingCrossCompilerIsNotFatal(t *testing.T) {
	runner := &fakeRunner{}
	b := newTestBuilder(t, runner)
	b.LookPath = func(file string) (string, error) {
		if file == "go" {
			return "/usr/bin/go", nil
		}
		return "", errors.New("not found")
	}

	summary, err := b.Build()
	require.NoError(t, err)
	assert.Len(t, summary.Built(), len(DefaultTargets), "missing CC is a warning only")
}
