// Package rating holds the pure rating math: the rank tier table and the
// Elo-style update applied after a reported result. Nothing here has side
// effects; callers persist what comes back.
package rating

import "math"

const (
	// KFactor is the fixed Elo K used for every update.
	KFactor = 32

	// Baseline is the rating assigned to a freshly linked profile.
	Baseline = 1000
)

// Tier is one rung of the rank ladder. Thresholds are strictly increasing
// and the first is always 0, so every non-negative rating lands on exactly
// one tier.
type Tier struct {
	Threshold int
	Name      string
}

var Tiers = []Tier{
	{0, "Bronze I"}, {200, "Bronze II"}, {300, "Bronze III"},
	{400, "Silver I"}, {500, "Silver II"}, {600, "Silver III"},
	{700, "Gold I"}, {800, "Gold II"}, {900, "Gold III"},
	{1000, "Platinum I"}, {1100, "Platinum II"}, {1200, "Platinum III"},
	{1300, "Diamond I"}, {1400, "Diamond II"}, {1500, "Diamond III"},
	{1600, "Champion I"}, {1700, "Champion II"}, {1800, "Champion III"},
	{1900, "Grand Champion I"}, {2000, "Grand Champion II"}, {2100, "Grand Champion III"},
	{2200, "Supersonic Legend"},
}

// RankFor returns the tier whose threshold is the largest one not exceeding
// rating. Out-of-range input clamps to the lowest tier rather than failing.
func RankFor(rating int) string {
	for i := len(Tiers) - 1; i >= 0; i-- {
		if rating >= Tiers[i].Threshold {
			return Tiers[i].Name
		}
	}
	return Tiers[0].Name
}

// ExpectedScore is the standard Elo win probability of a player at rating
// against an opposing side averaging opponentAvg.
func ExpectedScore(rating, opponentAvg int) float64 {
	return 1.0 / (1.0 + math.Pow(10, float64(opponentAvg-rating)/400.0))
}

// ApplyResult computes the post-match rating and the applied delta.
// The scaled delta is truncated toward zero, not rounded; the resulting
// rating is clamped at 0 with no upper bound.
func ApplyResult(rating, opponentAvg int, won bool) (newRating, delta int) {
	expected := ExpectedScore(rating, opponentAvg)
	actual := 0.0
	if won {
		actual = 1.0
	}
	delta = int(KFactor * (actual - expected))
	newRating = rating + delta
	if newRating < 0 {
		newRating = 0
	}
	return newRating, delta
}
