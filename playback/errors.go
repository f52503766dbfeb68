package playback

import "errors"

var errNonFinite = errors.New("player reported a non-finite position")
