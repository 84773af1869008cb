// Package unlock computes which difficulty tiers the learner has access to.
// Everything here is a pure function of progress state and catalog.
package unlock

import (
	"github.com/example/vocatrain/internal/catalog"
	"github.com/example/vocatrain/pkg/models"
)

// UnlockThreshold is the share of a tier that must be learned before the
// next tier opens.
const UnlockThreshold = 0.80

// TierStat reports one tier regardless of which tier is current
type TierStat struct {
	Tier     models.Difficulty `json:"tier"`
	Learned  int               `json:"learned"`
	Total    int               `json:"total"`
	Progress float64           `json:"progress"`
	Unlocked bool              `json:"unlocked"`
}

// TierInfo is the full unlock picture for the learner
type TierInfo struct {
	CurrentTier models.Difficulty `json:"current_tier"`
	Tiers       []TierStat        `json:"tiers"`
}

// Evaluate computes per-tier progress and the highest unlocked tier.
// Beginner is always unlocked; each later tier unlocks when the preceding
// tier's progress reaches the threshold. An empty preceding tier has
// progress 0 and therefore blocks advancement; that is deliberate, not a
// division-by-zero accident.
func Evaluate(state models.ProgressState, cat *catalog.Catalog) TierInfo {
	learnedByTier := make(map[models.Difficulty]int)
	for _, id := range state.LearnedWords {
		if w, ok := cat.WordByID(id); ok {
			learnedByTier[w.Difficulty]++
		}
	}

	info := TierInfo{CurrentTier: models.DifficultyBeginner}
	prevProgress := 0.0
	for i, tier := range models.Tiers {
		total := cat.CountByTier(tier)
		learned := learnedByTier[tier]
		progress := 0.0
		if total > 0 {
			progress = float64(learned) / float64(total)
		}
		unlocked := i == 0 || prevProgress >= UnlockThreshold
		if unlocked {
			info.CurrentTier = tier
		}
		info.Tiers = append(info.Tiers, TierStat{
			Tier:     tier,
			Learned:  learned,
			Total:    total,
			Progress: progress,
			Unlocked: unlocked,
		})
		if !unlocked {
			// Later tiers can never unlock once the chain is broken
			prevProgress = 0
			continue
		}
		prevProgress = progress
	}
	return info
}

// AvailableWords returns every catalog word in the current tier or below
func AvailableWords(state models.ProgressState, cat *catalog.Catalog) []models.VocabularyItem {
	info := Evaluate(state, cat)
	return cat.WordsAtOrBelow(info.CurrentTier)
}
