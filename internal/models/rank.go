package models

// Rank is a coarse progression tier. Ranks gate which quests an adventurer
// may accept and who may peer-review submissions.
type Rank string

const (
	RankIron    Rank = "Iron"
	RankSilver  Rank = "Silver"
	RankGold    Rank = "Gold"
	RankJade    Rank = "Jade"
	RankDiamond Rank = "Diamond"
)

// RankThreshold is one rung of the ladder. Both requirements must be met
// simultaneously for the rank to qualify.
type RankThreshold struct {
	Rank           Rank
	QuestsRequired int
	XPRequired     int
}

// RankLadder is the static threshold table, ascending. New ranks are
// additive rows here, not new branching logic.
var RankLadder = []RankThreshold{
	{Rank: RankIron, QuestsRequired: 0, XPRequired: 0},
	{Rank: RankSilver, QuestsRequired: 3, XPRequired: 150},
	{Rank: RankGold, QuestsRequired: 10, XPRequired: 500},
	{Rank: RankJade, QuestsRequired: 25, XPRequired: 1500},
	{Rank: RankDiamond, QuestsRequired: 50, XPRequired: 5000},
}

var rankOrdinals = map[Rank]int{
	RankIron:    0,
	RankSilver:  1,
	RankGold:    2,
	RankJade:    3,
	RankDiamond: 4,
}

// Ordinal returns the rank's position on the ladder (Iron=0 ... Diamond=4).
// Unknown ranks map to Iron.
func (r Rank) Ordinal() int {
	if ord, ok := rankOrdinals[r]; ok {
		return ord
	}
	return 0
}

// AtLeast reports whether r meets or exceeds required.
func (r Rank) AtLeast(required Rank) bool {
	return r.Ordinal() >= required.Ordinal()
}

// IsValid reports whether r names a known rank.
func (r Rank) IsValid() bool {
	_, ok := rankOrdinals[r]
	return ok
}

// MaxRank is the top of the ladder.
func MaxRank() Rank {
	return RankLadder[len(RankLadder)-1].Rank
}
