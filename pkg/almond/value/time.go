package value

import (
	"fmt"

	"github.com/stanford-oval/almond-tokenizer/pkg/almond/internalerr"
)

// Time is a time of day.
type Time struct {
	Hour   int     `json:"hour"`
	Minute int     `json:"minute"`
	Second float64 `json:"second"`
}

// NewTime validates hour in [0,23], minute in [0,59] and second in [0,60).
// Out-of-range components are a caller bug (callers are expected to pass
// parser-validated fields) and fail with internalerr.ErrInvalidTime.
func NewTime(hour, minute int, second float64) (Time, error) {
	if hour < 0 || hour > 23 {
		return Time{}, fmt.Errorf("%w: hour %d", internalerr.ErrInvalidTime, hour)
	}
	if minute < 0 || minute > 59 {
		return Time{}, fmt.Errorf("%w: minute %d", internalerr.ErrInvalidTime, minute)
	}
	if second < 0 || second >= 60 {
		return Time{}, fmt.Errorf("%w: second %g", internalerr.ErrInvalidTime, second)
	}
	return Time{Hour: hour, Minute: minute, Second: second}, nil
}

func (t Time) Kind() Kind { return KindTime }

func (t Time) Equal(other Value) bool {
	o, ok := other.(Time)
	return ok && t == o
}

func (t Time) String() string { return fmt.Sprintf("%d:%d", t.Hour, t.Minute) }
