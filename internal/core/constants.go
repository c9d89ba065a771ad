package core

// Tunable thresholds of the calculation engine. Every call site goes through
// these names; none of the values below appear as literals elsewhere.
const (
	// OutlierStdDevFactor is the k in the mean+k*stddev outlier threshold.
	// Earlier revisions used k=1 for ad-hoc detection and k=2 for the
	// dashboard path; k=2 is now canonical everywhere.
	OutlierStdDevFactor = 2.0

	// OutlierPenaltyPerHit is subtracted from the outlier health factor for
	// each flagged transaction, floored at zero.
	OutlierPenaltyPerHit = 15.0

	// SettlementTransferFloor suppresses transfer suggestions smaller than
	// one cent, which are floating point noise.
	SettlementTransferFloor = 0.01

	// SettlementSettledEpsilon is the per-person balance tolerance inside
	// which the household counts as settled.
	SettlementSettledEpsilon = 1.00

	// DaysInFullMonth is the day-of-month value meaning "month complete".
	DaysInFullMonth = 31

	// DefaultProjectionMonths is the forward horizon of the simulation
	// engine when the caller does not override it.
	DefaultProjectionMonths = 12

	// HealthyScoreFloor and WarningScoreFloor are the status tier cut
	// points: score >= HealthyScoreFloor is healthy, >= WarningScoreFloor
	// is warning, anything below is critical.
	HealthyScoreFloor = 70
	WarningScoreFloor = 40
)

// Health score factor weights. When the financial-freedom goal is fully
// reached its factor dominates the composite; otherwise half the weight sits
// on it and the remainder is spread evenly across the other four factors.
const (
	FreedomWeightGoalReached = 0.80
	FreedomWeightBaseline    = 0.50
	OtherWeightGoalReached   = 0.05  // (1 - 0.80) / 4
	OtherWeightBaseline      = 0.125 // (1 - 0.50) / 4
)
