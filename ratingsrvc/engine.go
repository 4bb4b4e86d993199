package ratingsrvc

import (
	"math"

	"github.com/algoarena/backend/conf"
)

// ComputeChanges runs the Elo-style rating update for a closed contest
// field. The sum of deltas is not zero-sum: placement bonuses are
// asymmetric on purpose.
func ComputeChanges(cfg conf.RatingConfig, field []Participant) []RatingChange {
	n := len(field)
	if n == 0 {
		return nil
	}

	changes := make([]RatingChange, 0, n)
	for _, p := range field {
		k := kFactor(cfg, p.PriorContests)
		expected := expectedScore(field, p)
		actual := actualScore(n, p.Rank)

		rawDelta := k * (actual - expected)
		rawDelta *= bonusMultiplier(cfg, n, p.Rank)

		clamped := math.Max(-cfg.MaxRatingChange, math.Min(cfg.MaxRatingChange, rawDelta))
		delta := int(math.Round(clamped))

		newRating := p.PriorRating + delta
		if newRating < 0 {
			newRating = 0
		}

		changes = append(changes, RatingChange{
			UserID:        p.UserID,
			Delta:         delta,
			NewRating:     newRating,
			KFactor:       k,
			ExpectedScore: expected,
			ActualScore:   actual,
		})
	}
	return changes
}

func kFactor(cfg conf.RatingConfig, priorContests int) float64 {
	switch {
	case priorContests < cfg.NewContestCount:
		return cfg.KFactorNew
	case priorContests < cfg.MidContestCount:
		return cfg.KFactorMid
	default:
		return cfg.KFactorSettled
	}
}

// expectedScore is the mean pairwise Elo expectation against every other
// participant. A field of one has nobody to compare against and defaults
// to 0.5.
func expectedScore(field []Participant, p Participant) float64 {
	if len(field) < 2 {
		return 0.5
	}
	sum := 0.0
	for _, other := range field {
		if other.UserID == p.UserID {
			continue
		}
		diff := float64(other.PriorRating-p.PriorRating) / 400.0
		sum += 1.0 / (1.0 + math.Pow(10, diff))
	}
	return sum / float64(len(field)-1)
}

// actualScore maps rank linearly onto [0,1]: 1.0 for first place, 0.0
// for last.
func actualScore(fieldSize int, rank int) float64 {
	if fieldSize < 2 {
		return 1.0
	}
	return float64(fieldSize-rank) / float64(fieldSize-1)
}

// bonusMultiplier rewards top placements. Tier boundaries are
// ceiling-inclusive: rank <= ceil(p*n) counts as inside the tier.
func bonusMultiplier(cfg conf.RatingConfig, fieldSize int, rank int) float64 {
	top10 := int(math.Ceil(0.10 * float64(fieldSize)))
	top25 := int(math.Ceil(0.25 * float64(fieldSize)))
	switch {
	case rank <= top10:
		return 1 + cfg.Top10Bonus
	case rank <= top25:
		return 1 + cfg.Top25Bonus
	default:
		return 1
	}
}
