package usecase

import "errors"

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrScheduleLookup = errors.New("schedule lookup failed")
	ErrExtraction     = errors.New("goal extraction failed")
	ErrTrackingFetch  = errors.New("tracking fetch failed")
	ErrPersistence    = errors.New("artifact persistence failed")
)
