package services

import (
	"errors"
	"math"
	"testing"
)

func TestSM2Update_FailingGradeResetsRepetitions(t *testing.T) {
	for _, quality := range []int{0, 1, 2} {
		res, err := SM2Update(2.5, 4, quality)
		if err != nil {
			t.Fatalf("quality %d: unexpected error: %v", quality, err)
		}
		if res.RepetitionCount != 0 {
			t.Fatalf("quality %d: expected repetition reset, got %d", quality, res.RepetitionCount)
		}
		if res.IntervalDays != 1 {
			t.Fatalf("quality %d: expected interval 1, got %d", quality, res.IntervalDays)
		}
	}
}

func TestSM2Update_PassingGradeIncrementsRepetitions(t *testing.T) {
	res, err := SM2Update(2.5, 1, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.RepetitionCount != 2 {
		t.Fatalf("expected repetition count 2, got %d", res.RepetitionCount)
	}
	// EF' = 2.5 + 0.1 = 2.6; interval = round(6 * 2.6) = 16
	if math.Abs(res.EaseFactor-2.6) > 1e-9 {
		t.Fatalf("expected ease factor 2.6, got %v", res.EaseFactor)
	}
	if res.IntervalDays != 16 {
		t.Fatalf("expected interval 16, got %d", res.IntervalDays)
	}
}

func TestSM2Update_FirstPassingReviewSchedulesTomorrow(t *testing.T) {
	res, err := SM2Update(2.5, 0, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.RepetitionCount != 1 {
		t.Fatalf("expected repetition count 1, got %d", res.RepetitionCount)
	}
	if res.IntervalDays != 1 {
		t.Fatalf("expected interval 1, got %d", res.IntervalDays)
	}
}

func TestSM2Update_EaseFactorNeverBelowFloor(t *testing.T) {
	ef := 1.3
	for i := 0; i < 20; i++ {
		res, err := SM2Update(ef, 0, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.EaseFactor < MinEaseFactor {
			t.Fatalf("iteration %d: ease factor %v fell below floor %v", i, res.EaseFactor, MinEaseFactor)
		}
		ef = res.EaseFactor
	}
	if ef != MinEaseFactor {
		t.Fatalf("repeated failures should pin ease factor at %v, got %v", MinEaseFactor, ef)
	}
}

func TestSM2Update_HigherQualityNeverShrinksEaseFactor(t *testing.T) {
	prev := math.Inf(-1)
	for quality := 0; quality <= 5; quality++ {
		res, err := SM2Update(2.5, 3, quality)
		if err != nil {
			t.Fatalf("quality %d: unexpected error: %v", quality, err)
		}
		if res.EaseFactor < prev {
			t.Fatalf("quality %d: ease factor %v dropped below quality %d's %v", quality, res.EaseFactor, quality-1, prev)
		}
		prev = res.EaseFactor
	}
}

func TestSM2Update_IntervalGrowsAcrossPassingReviews(t *testing.T) {
	ef := DefaultEaseFactor
	reps := 0
	prevInterval := 0
	for i := 0; i < 6; i++ {
		res, err := SM2Update(ef, reps, 4)
		if err != nil {
			t.Fatalf("review %d: unexpected error: %v", i, err)
		}
		if res.IntervalDays < prevInterval {
			t.Fatalf("review %d: interval %d shrank from %d", i, res.IntervalDays, prevInterval)
		}
		prevInterval = res.IntervalDays
		ef = res.EaseFactor
		reps = res.RepetitionCount
	}
	if prevInterval <= 1 {
		t.Fatalf("expected interval to grow past 1 day, got %d", prevInterval)
	}
}

func TestSM2Update_RejectsOutOfRangeQuality(t *testing.T) {
	for _, quality := range []int{-1, 6, 100} {
		_, err := SM2Update(2.5, 0, quality)
		if err == nil {
			t.Fatalf("quality %d: expected error", quality)
		}
		if !errors.Is(err, ErrInvalidQuality) {
			t.Fatalf("quality %d: expected ErrInvalidQuality, got %v", quality, err)
		}
	}
}

func TestSM2Update_PenaltyAppliesBeforeReset(t *testing.T) {
	res, err := SM2Update(2.5, 2, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// EF' = 2.5 + (0.1 - 3*(0.08 + 3*0.02)) = 2.5 - 0.32 = 2.18
	if math.Abs(res.EaseFactor-2.18) > 1e-9 {
		t.Fatalf("expected ease factor 2.18, got %v", res.EaseFactor)
	}
}
