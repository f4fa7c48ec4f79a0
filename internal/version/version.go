// Package version exposes build metadata injected with -ldflags.
package version

//nolint:gochecknoglobals // Overridden at build time with -ldflags "-X".
var (
	// Version is the semantic version of the build.
	Version = "1.0.0"
	// Commit is the VCS revision of the build.
	Commit = "none"
	// BuildTime is the build timestamp.
	BuildTime = "unknown"
)

// Short returns the version only.
func Short() string {
	return Version
}

// Full returns the version together with the commit and build time.
func Full() string {
	return "version: " + Version + ", commit: " + Commit + ", built at: " + BuildTime
}
