package domain

import "github.com/shopspring/decimal"

type SessionType string

const (
	SessionTypeLittleKids SessionType = "little-kids"
	SessionTypeBigKids    SessionType = "big-kids"
	SessionTypeFamily     SessionType = "family"
)

// Reward is a registration-count milestone. Label is a lookup key for the
// presentation layer, not display text.
type Reward struct {
	ID        string
	Threshold int
	Label     string
}

type RewardProgress struct {
	Unlocked   []Reward
	NextReward *Reward
	Progress   int
}

// rewardThresholds holds the per-type milestone lists, ordered by ascending
// threshold. Loaded once, never mutated at runtime.
var rewardThresholds = map[SessionType][]Reward{
	SessionTypeLittleKids: {
		{ID: "gift", Threshold: 12, Label: "reward.gift"},
		{ID: "upgraded", Threshold: 16, Label: "reward.upgraded"},
	},
	SessionTypeBigKids: {
		{ID: "gift", Threshold: 14, Label: "reward.gift"},
		{ID: "upgraded", Threshold: 18, Label: "reward.upgraded"},
	},
	SessionTypeFamily: {
		{ID: "gift", Threshold: 10, Label: "reward.gift"},
		{ID: "upgraded", Threshold: 14, Label: "reward.upgraded"},
	},
}

var (
	littleKidsPrice = decimal.NewFromInt(2800)
	bigKidsPrice    = decimal.NewFromInt(3600)
	familyPrice     = decimal.NewFromInt(5500)
)

// ClassifySessionType maps a session's price and age bracket to its type.
//
// The rules are exact literal matches carried over from the product
// configuration, and anything unrecognized falls back to family. That default
// is intentional and must not be changed without product input; sessions
// priced outside the three known literals will classify as family.
func ClassifySessionType(price decimal.Decimal, ageMin, ageMax *int) SessionType {
	switch {
	case price.Equal(familyPrice):
		return SessionTypeFamily
	case price.Equal(littleKidsPrice) && ageRangeIs(ageMin, ageMax, 5, 7):
		return SessionTypeLittleKids
	case price.Equal(bigKidsPrice) && ageRangeIs(ageMin, ageMax, 8, 13):
		return SessionTypeBigKids
	default:
		return SessionTypeFamily
	}
}

func ageRangeIs(ageMin, ageMax *int, min, max int) bool {
	return ageMin != nil && ageMax != nil && *ageMin == min && *ageMax == max
}

// CalculateUnlockedRewards computes which milestones the current registration
// count has unlocked for the given session type, plus the progress percentage
// from the previous threshold (or zero) toward the next one, clamped to
// [0,100]. Progress is 100 once every reward is unlocked.
func CalculateUnlockedRewards(currentRegistrations int, sessionType SessionType) RewardProgress {
	thresholds := rewardThresholds[sessionType]

	var unlocked []Reward
	var next *Reward
	prev := 0

	for i, reward := range thresholds {
		if currentRegistrations >= reward.Threshold {
			unlocked = append(unlocked, reward)
			prev = reward.Threshold
			continue
		}

		next = &thresholds[i]
		break
	}

	if next == nil {
		return RewardProgress{Unlocked: unlocked, Progress: 100}
	}

	progress := 0
	if span := next.Threshold - prev; span > 0 {
		progress = (currentRegistrations - prev) * 100 / span
	}

	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}

	return RewardProgress{Unlocked: unlocked, NextReward: next, Progress: progress}
}
