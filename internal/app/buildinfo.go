package app

// Build information set with -ldflags -X at release time.
var (
    BuildVersion = "0.0.0-dev"
    BuildCommit  = "unknown"
    // BuildDate is an RFC3339 timestamp.
    BuildDate    = "unknown"
)
