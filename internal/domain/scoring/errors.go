package scoring

import "errors"

// Sentinel kinds for scoring errors.
var (
	ErrUnknownJudge    = errors.New("unknown judge")
	ErrMissingJudge    = errors.New("missing judge score")
	ErrScoreOutOfRange = errors.New("criterion score out of range")
)
