package domain

import "errors"

var (
	// ErrNoImages is returned when generation is requested on an empty
	// workspace. No document is created and no state changes.
	ErrNoImages = errors.New("no images to convert")

	// ErrDecode wraps any image decode failure; the whole generation run
	// aborts and no partial document is emitted.
	ErrDecode = errors.New("image decode failed")

	// ErrConversionInFlight rejects a generation request while a previous
	// run for the same workspace is still converting.
	ErrConversionInFlight = errors.New("conversion already in progress")

	// ErrWorkspaceNotFound indicates the referenced workspace was evicted
	// or never existed.
	ErrWorkspaceNotFound = errors.New("workspace not found")
)
