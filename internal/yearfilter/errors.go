package yearfilter

import "errors"

var (
	// ErrStopWithoutStart is returned when a stop year is given alone.
	ErrStopWithoutStart = errors.New("stop year given without start year")

	// ErrStopBeforeStart is returned when the stop year precedes the start year.
	ErrStopBeforeStart = errors.New("stop year is before start year")

	// ErrYearOutOfRange is returned for years that are not four digits.
	ErrYearOutOfRange = errors.New("year must be between 1000 and 9999")
)
