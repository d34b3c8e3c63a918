package srs

import "errors"

// Sentinel errors for the srs package.
// Check with errors.Is: errors.Is(err, srs.ErrInvalidQuality)
var (
	ErrInvalidQuality = errors.New("srs: quality rating out of range")
	ErrStateConflict  = errors.New("srs: card is both new and mastered")
)
