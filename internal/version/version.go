// Package version carries build information injected via -ldflags.
package version

var (
	// Version is the semantic version of the build.
	Version = "dev"
	// Commit is the git commit of the build.
	Commit = "unknown"
)
