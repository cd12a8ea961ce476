package domain

// Direction is the side a signal points to.
type Direction string

const (
	DirectionLong  Direction = "LONG"
	DirectionShort Direction = "SHORT"
)

// Decision is the outcome of the decision policy for one snapshot.
type Decision string

const (
	DecisionWait Decision = "WAIT"
	DecisionBuy  Decision = "BUY"
)

// Tier expresses the confidence of a BUY decision.
type Tier string

const (
	TierNone    Tier = ""
	TierGood    Tier = "GOOD"
	TierHigh    Tier = "HIGH"
	TierExtreme Tier = "EXTREME"
)

// WaitReason is a machine-readable explanation attached to WAIT decisions.
type WaitReason string

const (
	WaitNone                 WaitReason = ""
	WaitInsufficientData     WaitReason = "insufficient_data"
	WaitStructureBearish     WaitReason = "structure_bearish"
	WaitStructureNotTrending WaitReason = "structure_not_trending"
	WaitStructureNotRange    WaitReason = "structure_not_range"
	WaitOutsideRange         WaitReason = "outside_range"
	WaitEMANotReady          WaitReason = "ema_not_ready"
	WaitPullbackOutOfBounds  WaitReason = "pullback_out_of_bounds"
	WaitPremiumZone          WaitReason = "premium_zone"
	WaitScoreBelowMinimum    WaitReason = "score_below_minimum"
)
