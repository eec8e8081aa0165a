package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plugforge/deepseek/dist"
)

var (
	distDir     string
	buildDir    string
	packagePath string
	distTargets []string
)

var distCmd = &cobra.Command{
	Use:   "dist",
	Short: "Build the plugin shared library for all targets",
	Long: `Cross-compile the plugin shared library for every release target and
collect the packaged files in the dist directory.

Targets that fail to build are reported but do not stop the remaining
targets.`,
	RunE: runDist,
}

func init() {
	rootCmd.AddCommand(distCmd)

	distCmd.Flags().StringVar(&distDir, "dist-dir", "dist", "output directory for packaged files")
	distCmd.Flags().StringVar(&buildDir, "build-dir", "build", "directory for intermediate artifacts")
	distCmd.Flags().StringVar(&packagePath, "package", "./cmd/deepseek-plugin", "package to build as a shared library")
	distCmd.Flags().StringSliceVar(&distTargets, "targets", nil, "target triples to build (default all)")
}

func runDist(cmd *cobra.Command, args []string) error {
	targets, err := selectTargets(distTargets)
	if err != nil {
		return err
	}

	builder := &dist.Builder{
		PackagePath: packagePath,
		DistDir:     distDir,
		BuildDir:    buildDir,
		Targets:     targets,
	}

	summary, err := builder.Build()
	if err != nil {
		return err
	}

	fmt.Println("Build finished.")
	for _, triple := range summary.Built() {
		fmt.Printf("  built:  %s\n", triple)
	}
	for _, triple := range summary.Failed() {
		fmt.Printf("  failed: %s\n", triple)
	}

	files, err := builder.ListDist()
	if err != nil {
		return err
	}
	fmt.Printf("Files in %s:\n", distDir)
	for _, name := range files {
		fmt.Printf("  %s\n", name)
	}

	return nil
}

// selectTargets filters the default targets by triple. Nil means all.
func selectTargets(triples []string) ([]dist.Target, error) {
	if len(triples) == 0 {
		return nil, nil
	}

	byTriple := make(map[string]dist.Target, len(dist.DefaultTargets))
	for _, target := range dist.DefaultTargets {
		byTriple[target.Triple] = target
	}

	var selected []dist.Target
	for _, triple := range triples {
		target, ok := byTriple[triple]
		if !ok {
			return nil, fmt.Errorf("unknown target %q (available: %v)", triple, knownTriples())
		}
		selected = append(selected, target)
	}
	return selected, nil
}

func knownTriples() []string {
	names := make([]string, 0, len(dist.DefaultTargets))
	for _, target := range dist.DefaultTargets {
		names = append(names, target.Triple)
	}
	return names
}
