// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Segment windows - these keys size the playable window projected from each marker.
const (
	WindowSeconds      = "window.seconds"
	WindowMinSegment   = "window.min_segment"
	WindowGapEpsilon   = "window.gap_epsilon"
	WindowEndTolerance = "window.end_tolerance"
)

// Media Playback - these keys drive the repeat/advance scheduler and the external player.
const (
	PlayerDefault        = "player.default"
	PlayerPollIntervalMs = "player.poll_interval_ms"
	PlayerLoops          = "player.loops"
	PlayerAutoAdvance    = "player.auto_advance"
	PlayerRate           = "player.rate"
	PlayerMaxFailures    = "player.max_failures"
	PlayerSeekAhead      = "player.seek_ahead"
)

// Sequence filtering.
const (
	SequenceUnknownOnly = "sequence.unknown_only"
)

// History Tracking - these keys configure persistence of the resume point.
const (
	HistorySaveOnStop = "history.save_on_stop"
)

// Video metadata.
const (
	VideoFetchTitle = "video.fetch_title"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)
