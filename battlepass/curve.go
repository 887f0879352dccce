// Package battlepass holds the battlepass XP curve and the console report.
package battlepass

const (
	MaxTier        = 50
	EpilogueTiers  = 5
	EpilogueTierXP = 36500
)

// TierCost is the XP needed to reach tier from the one below it. Tier 1 is free.
func TierCost(tier int) int {
	if tier < 2 {
		return 0
	}

	return tier*750 + 500
}

// TotalRequired is the XP needed to reach MaxTier, plus the epilogue tiers
// when withEpilogue is set.
func TotalRequired(withEpilogue bool) int {
	total := 0

	for tier := 2; tier <= MaxTier; tier++ {
		total += TierCost(tier)
	}

	if withEpilogue {
		total += EpilogueTiers * EpilogueTierXP
	}

	return total
}
