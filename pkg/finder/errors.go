package finder

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNoCandidates    = errors.New("no stop of the chain has any candidate")
	ErrSearchExhausted = errors.New("search exhausted without reaching the last stop")
	ErrEmptyChain      = errors.New("stop chain is empty")
)

// MalformedCandidateWarning is reported for a dataset row that was dropped.
type MalformedCandidateWarning struct {
	RowID  int64
	Reason string
}

func (w *MalformedCandidateWarning) Error() string {
	return fmt.Sprintf("dropped candidate %d: %s", w.RowID, w.Reason)
}

// InvalidScheduleDataWarning is reported when the time between two stops is
// unknown or not positive; the distance band between them has zero width.
type InvalidScheduleDataWarning struct {
	From string
	To   string
	Time time.Duration
	Err  error
}

func (w *InvalidScheduleDataWarning) Error() string {
	if w.Err != nil {
		return fmt.Sprintf("invalid schedule data %s -> %s: %v", w.From, w.To, w.Err)
	}
	return fmt.Sprintf("invalid schedule data %s -> %s: travel time %s", w.From, w.To, w.Time)
}

func (w *InvalidScheduleDataWarning) Unwrap() error {
	return w.Err
}
