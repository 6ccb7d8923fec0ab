package version

// Populated at build time via -ldflags "-X github.com/pulseone/pulse-admin/internal/version.Version=..."
var (
	Version = "development"
	Commit  = "unknown"
)

func GetVersion() string {
	return Version
}

func GetCommit() string {
	return Commit
}
