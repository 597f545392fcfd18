// Package util holds version information injected at build time via ldflags.
package util

import "strings"

// Set via -ldflags at build time:
//
//	go build -ldflags "-X github.com/MasakiMu319/External-Convertor/util.Version=1.0.0 ..."
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func orFallback(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

// BuildInfo renders the single-line version banner used by --version output.
func BuildInfo() string {
	return "external-convertor " + orFallback(Version, "dev") +
		" (commit " + orFallback(GitCommit, "unknown") +
		", built " + orFallback(BuildTime, "unknown") + ")"
}
