package version

// Injected at build time via -ldflags.
var (
	Version = "unknown"
	Commit  = "unknown"
)

func GetVersion() string {
	return Version
}

func GetCommit() string {
	return Commit
}
