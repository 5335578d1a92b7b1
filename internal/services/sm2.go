package services

import (
  "errors"
  "fmt"
  "math"
)

// SM-2 spaced-repetition constants.
const (
  DefaultEaseFactor = 2.5
  MinEaseFactor     = 1.3
)

var ErrInvalidQuality = errors.New("quality rating must be between 0 and 5")

type SM2Result struct {
  EaseFactor      float64 `json:"ease_factor"`
  RepetitionCount int     `json:"repetition_count"`
  IntervalDays    int     `json:"interval_days"`
}

// SM2Update applies one SM-2 review to the given state and returns the new
// ease factor, repetition count, and next review interval in days.
//
// quality grades the recall from 0 (total blackout) to 5 (perfect). A
// failing grade (below 3) resets the repetition count and schedules the
// topic again tomorrow; the ease factor penalty is still applied first,
// floored at MinEaseFactor. A passing grade grows the interval by
// compounding the updated ease factor across repetitions.
//
// Pure function: no store access, safe to call from anywhere.
func SM2Update(easeFactor float64, repetitionCount int, quality int) (SM2Result, error) {
  if quality < 0 || quality > 5 {
    return SM2Result{}, fmt.Errorf("%w: got %d", ErrInvalidQuality, quality)
  }
  if repetitionCount < 0 {
    repetitionCount = 0
  }

  q := float64(quality)
  ef := easeFactor + (0.1 - (5-q)*(0.08+(5-q)*0.02))
  if ef < MinEaseFactor {
    ef = MinEaseFactor
  }

  if quality < 3 {
    return SM2Result{
      EaseFactor:      ef,
      RepetitionCount: 0,
      IntervalDays:    1,
    }, nil
  }

  interval := 1
  if repetitionCount > 0 {
    // I(n) = 6 * EF'^(n-1), compounding on the updated ease factor
    // rather than replaying historical per-step factors.
    interval = int(math.Round(6 * math.Pow(ef, float64(repetitionCount))))
  }

  return SM2Result{
    EaseFactor:      ef,
    RepetitionCount: repetitionCount + 1,
    IntervalDays:    interval,
  }, nil
}
