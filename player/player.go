// Package player defines the narrow playback capability the scheduler drives,
// and an mpv-backed implementation speaking mpv's JSON-IPC protocol.
package player

// Player is the only surface through which playback is commanded.
//
// Seek, Play, Pause and SetRate are fire-and-forget: the device may apply them
// late or not at all, and reports no failure. None of them may block the
// caller. CurrentTime is a synchronous, bounded and possibly stale read.
type Player interface {
	// Seek moves to an absolute position. allowAhead permits the player to
	// fetch media that is not buffered yet in order to land precisely.
	Seek(seconds float64, allowAhead bool)

	Play()

	Pause()

	// CurrentTime returns the playback position in seconds.
	CurrentTime() (float64, error)

	// SetRate sets the playback speed multiplier.
	SetRate(multiplier float64)
}
