// Package dist builds and packages the plugin shared library for release.
package dist

// Target describes one cross-compilation target.
type Target struct {
	// Triple is the human-readable target name, e.g. "x86_64-linux".
	Triple string

	GOOS   string
	GOARCH string

	// CC is the cross C compiler required for cgo, empty for the native
	// toolchain.
	CC string

	// Artifact is the library file name the build produces.
	Artifact string

	// Packaged is the per-target file name in the dist directory.
	Packaged string
}

// DefaultTargets lists the release targets.
var DefaultTargets = []Target{
	{
		Triple:   "x86_64-linux",
		GOOS:     "linux",
		GOARCH:   "amd64",
		Artifact: "libdeepseek.so",
		Packaged: "deepseek-plugin-x86_64.so",
	},
	{
		Triple:   "x86_64-windows",
		GOOS:     "windows",
		GOARCH:   "amd64",
		CC:       "x86_64-w64-mingw32-gcc",
		Artifact: "deepseek.dll",
		Packaged: "deepseek-plugin-x86_64.dll",
	},
	{
		Triple:   "x86_64-macos",
		GOOS:     "darwin",
		GOARCH:   "amd64",
		CC:       "o64-clang",
		Artifact: "libdeepseek.dylib",
		Packaged: "deepseek-plugin-x86_64.dylib",
	},
	{
		Triple:   "aarch64-macos",
		GOOS:     "darwin",
		GOARCH:   "arm64",
		CC:       "oa64-clang",
		Artifact: "libdeepseek.dylib",
		Packaged: "deepseek-plugin-aarch64.dylib",
	},
}
