// Package constant defines immutable application-level identifiers.
package constant

const (
	// Reprise is the canonical application identifier used for filesystem paths and CLI branding.
	Reprise = "reprise"

	// Version is the current application semantic version string.
	Version = "0.3.0"

	// UserAgent is sent with remote metadata lookups.
	UserAgent = "reprise/" + Version
)

// Build metadata, overridden through -ldflags at release time.
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)
