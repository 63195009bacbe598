// Package buildinfo carries the release stamp set with
//
//	-ldflags "-X ember/internal/buildinfo.Version=v0.3.0 -X ember/internal/buildinfo.Commit=..."
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Short returns the version, falling back to the commit, then "dev".
func Short() string {
	switch {
	case Version != "" && Version != "dev":
		return Version
	case Commit != "" && Commit != "unknown":
		return Commit
	default:
		return "dev"
	}
}

// Banner is the one-line boot identification.
func Banner() string {
	if Date == "" || Date == "unknown" {
		return fmt.Sprintf("ember %s", Short())
	}
	return fmt.Sprintf("ember %s (%s)", Short(), Date)
}
