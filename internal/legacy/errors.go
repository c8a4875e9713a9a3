package legacy

import "errors"

var (
	// ErrBundleUnavailable is returned when the legacy artifact bundle is
	// neither cached on disk nor fetchable from the configured URLs.
	ErrBundleUnavailable = errors.New("legacy model bundle unavailable")

	// ErrBundleMalformed is returned when a bundle file exists but cannot be
	// decoded into a usable model or encoder.
	ErrBundleMalformed = errors.New("legacy model bundle malformed")
)
