package dist

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"

	"github.com/plugforge/deepseek/logging"
)

var log = logging.New("dist")

// Runner executes external commands. It exists so tests can fake the build
// toolchain.
type Runner interface {
	Run(name string, args []string, env []string) error
}

type execRunner struct{}

func (execRunner) Run(name string, args []string, env []string) error {
	cmd := exec.Command(name, args...)
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Result records the outcome of one target build.
type Result struct {
	Target Target
	Err    error
}

// Summary aggregates per-target results.
type Summary struct {
	Results []Result
}

// Built returns the triples that produced a packaged artifact.
func (s *Summary) Built() []string {
	var out []string
	for _, r := range s.Results {
		if r.Err == nil {
			out = append(out, r.Target.Triple)
		}
	}
	return out
}

// Failed returns the triples that did not produce an artifact.
func (s *Summary) Failed() []string {
	var out []string
	for _, r := range s.Results {
		if r.Err != nil {
			out = append(out, r.Target.Triple)
		}
	}
	return out
}

// Builder cross-compiles the plugin shared library for each target and
// collects the packaged files in a dist directory.
type Builder struct {
	// PackagePath is the package built with -buildmode=c-shared.
	PackagePath string

	// DistDir receives the packaged per-target files.
	DistDir string

	// BuildDir holds intermediate artifacts.
	BuildDir string

	// Targets defaults to DefaultTargets when empty.
	Targets []Target

	// Runner defaults to executing real commands.
	Runner Runner

	// LookPath defaults to exec.LookPath.
	LookPath func(file string) (string, error)
}

func (b *Builder) runner() Runner {
	if b.Runner != nil {
		return b.Runner
	}
	return execRunner{}
}

func (b *Builder) lookPath(file string) (string, error) {
	if b.LookPath != nil {
		return b.LookPath(file)
	}
	return exec.LookPath(file)
}

func (b *Builder) targets() []Target {
	if len(b.Targets) > 0 {
		return b.Targets
	}
	return DefaultTargets
}

// CheckToolchain verifies the Go toolchain is available. Build refuses to
// start without it.
func (b *Builder) CheckToolchain() error {
	if _, err := b.lookPath("go"); err != nil {
		return fmt.Errorf("go toolchain not found: %w", err)
	}
	return nil
}

// Build compiles every target, continuing past per-target failures. A missing
// cross compiler is only a warning; the build is still attempted. Per-target
// failures are reported in the summary, not as an error.
func (b *Builder) Build() (*Summary, error) {
	if err := b.CheckToolchain(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(b.DistDir, 0o755); err != nil {
		return nil, fmt.Errorf("create dist dir: %w", err)
	}
	if err := os.MkdirAll(b.BuildDir, 0o755); err != nil {
		return nil, fmt.Errorf("create build dir: %w", err)
	}

	summary := &Summary{}
	for _, target := range b.targets() {
		err := b.buildTarget(target)
		if err != nil {
			log.Error().Err(err).Str("target", target.Triple).Msg("build failed")
		} else {
			log.Info().Str("target", target.Triple).Str("file", target.Packaged).Msg("packaged")
		}
		summary.Results = append(summary.Results, Result{Target: target, Err: err})
	}

	return summary, nil
}

func (b *Builder) buildTarget(target Target) error {
	log.Info().Str("target", target.Triple).Msg("building")

	if target.CC != "" {
		if _, err := b.lookPath(target.CC); err != nil {
			log.Warn().
				Str("target", target.Triple).
				Str("cc", target.CC).
				Msg("cross compiler not found, attempting build anyway")
		}
	}

	artifact := filepath.Join(b.BuildDir, target.Triple, target.Artifact)

	env := []string{
		"GOOS=" + target.GOOS,
		"GOARCH=" + target.GOARCH,
		"CGO_ENABLED=1",
	}
	if target.CC != "" {
		env = append(env, "CC="+target.CC)
	}

	args := []string{"build", "-buildmode=c-shared", "-o", artifact, b.PackagePath}
	if err := b.runner().Run("go", args, env); err != nil {
		return fmt.Errorf("go build for %s: %w", target.Triple, err)
	}

	if _, err := os.Stat(artifact); err != nil {
		return fmt.Errorf("artifact missing after build for %s: %w", target.Triple, err)
	}

	packaged := filepath.Join(b.DistDir, target.Packaged)
	if err := copyFile(artifact, packaged); err != nil {
		return fmt.Errorf("package %s: %w", target.Triple, err)
	}
	return nil
}

// ListDist returns the packaged file names in the dist directory, sorted.
func (b *Builder) ListDist() ([]string, error) {
	entries, err := os.ReadDir(b.DistDir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o755)
}
