package domain

import (
	"time"

	"github.com/google/uuid"
)

// Result is the outcome of one allocation: total payments and the total true
// value realised by the assignments.
type Result struct {
	Revenue       float64
	SocialWelfare float64
}

// TrialRecord is one row of the results log.
type TrialRecord struct {
	RunID            uuid.UUID
	AdvertiserSource string
	Iterations       int
	SpreadSource     string
	Weighted         bool
	Mode             string
	Revenue          float64
	SocialWelfare    float64
	Elapsed          time.Duration // cumulative since the start of the run
	MeanElapsed      time.Duration
	GroupSeed        int64
	AllocationSeed   int64
	// Degraded marks a trial whose exact allocation failed and was recorded
	// as zero.
	Degraded bool
}

// Summary aggregates the trials of one run.
type Summary struct {
	RunID               uuid.UUID
	Trials              int
	Degraded            int
	MeanRevenue         float64
	StdDevRevenue       float64
	MinRevenue          float64
	MaxRevenue          float64
	MeanSocialWelfare   float64
	StdDevSocialWelfare float64
	MeanElapsed         time.Duration
}
