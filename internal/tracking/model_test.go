package tracking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func tiered(tier, division string, points int) *TieredRank {
	return &TieredRank{Tier: tier, Division: division, Points: intPtr(points)}
}

func TestTieredModel_DivisionOnlyMove(t *testing.T) {
	diff := NewLeagueModel().Compare(tiered("GOLD", "II", 40), tiered("GOLD", "I", 10))

	assert.Equal(t, MovementUp, diff.Movement)
	assert.Empty(t, diff.RankChange)
	assert.Equal(t, -30, diff.PointsDiff)
	assert.True(t, diff.PointsKnown)
}

func TestTieredModel_TierPromotion(t *testing.T) {
	diff := NewLeagueModel().Compare(tiered("SILVER", "I", 90), tiered("GOLD", "IV", 0))

	assert.Equal(t, MovementUp, diff.Movement)
	assert.Equal(t, "SILVER I -> GOLD IV", diff.RankChange)
}

func TestTieredModel_TierDecidesOverDivision(t *testing.T) {
	diff := NewLeagueModel().Compare(tiered("PLATINUM", "IV", 0), tiered("GOLD", "I", 99))

	assert.Equal(t, MovementDown, diff.Movement)
	assert.Equal(t, "PLATINUM IV -> GOLD I", diff.RankChange)
}

func TestTieredModel_NoMovement(t *testing.T) {
	diff := NewLeagueModel().Compare(tiered("GOLD", "II", 10), tiered("GOLD", "II", 35))

	assert.Equal(t, MovementNone, diff.Movement)
	assert.Empty(t, diff.RankChange)
	assert.Equal(t, 25, diff.PointsDiff)
}

func TestTieredModel_MissingSide(t *testing.T) {
	model := NewLeagueModel()

	assert.Equal(t, TieredDiff{}, model.Compare(nil, tiered("GOLD", "I", 10)))
	assert.Equal(t, TieredDiff{}, model.Compare(tiered("GOLD", "I", 10), nil))
	assert.Equal(t, TieredDiff{}, model.Compare(nil, nil))
}

func TestTieredModel_UnknownPoints(t *testing.T) {
	baseline := &TieredRank{Tier: "GOLD", Division: "I"}
	diff := NewLeagueModel().Compare(baseline, tiered("GOLD", "I", 20))

	assert.Equal(t, 20, diff.PointsDiff)
	assert.False(t, diff.PointsKnown)
}

func TestTieredModel_UnknownTierIndexesBelowEverything(t *testing.T) {
	diff := NewLeagueModel().Compare(tiered("UNRANKED", "", 0), tiered("IRON", "IV", 0))

	assert.Equal(t, MovementUp, diff.Movement)
	assert.Equal(t, "UNRANKED -> IRON IV", diff.RankChange)
}

func TestTieredModel_ValorantDivisions(t *testing.T) {
	model := NewValorantModel()

	up := model.Compare(tiered("GOLD", "1", 80), tiered("GOLD", "3", 5))
	assert.Equal(t, MovementUp, up.Movement)
	assert.Empty(t, up.RankChange)

	promoted := model.Compare(tiered("IMMORTAL", "3", 90), tiered("RADIANT", "", 10))
	assert.Equal(t, MovementUp, promoted.Movement)
	assert.Equal(t, "IMMORTAL 3 -> RADIANT", promoted.RankChange)
}

func TestTieredModel_LaddersAreSeparate(t *testing.T) {
	// EMERALD only exists in League
	league := NewLeagueModel().Compare(tiered("PLATINUM", "I", 0), tiered("EMERALD", "IV", 0))
	valorant := NewValorantModel().Compare(tiered("PLATINUM", "1", 0), tiered("EMERALD", "1", 0))

	assert.Equal(t, MovementUp, league.Movement)
	assert.Equal(t, MovementDown, valorant.Movement)
}

func TestTieredModel_Normalize(t *testing.T) {
	model := NewLeagueModel()

	rank, ok := model.Normalize(TieredRank{Tier: " gold ", Division: "ii"})
	assert.True(t, ok)
	assert.Equal(t, "GOLD", rank.Tier)
	assert.Equal(t, "II", rank.Division)

	_, ok = model.Normalize(TieredRank{})
	assert.False(t, ok)
}

func TestScoreLadderModel_Compare(t *testing.T) {
	baseline := &LadderRank{Name: "Gold", Division: intPtr(2), Score: intPtr(6000), Position: intPtr(1200)}
	current := &LadderRank{Name: "Gold", Division: intPtr(1), Score: intPtr(6650), Position: intPtr(1100)}

	diff := NewApexModel().Compare(baseline, current)

	assert.Equal(t, 650, diff.ScoreDiff)
	assert.True(t, diff.ScoreKnown)
	if assert.NotNil(t, diff.PositionDiff) {
		assert.Equal(t, -100, *diff.PositionDiff)
	}
	assert.Equal(t, "Gold 2 -> Gold 1", diff.RankChange)
}

func TestScoreLadderModel_PositionNeedsBothSides(t *testing.T) {
	baseline := &LadderRank{Name: "Master", Score: intPtr(15000)}
	current := &LadderRank{Name: "Master", Score: intPtr(15100), Position: intPtr(300)}

	diff := NewApexModel().Compare(baseline, current)

	assert.Nil(t, diff.PositionDiff)
	assert.Empty(t, diff.RankChange)
	assert.Equal(t, 100, diff.ScoreDiff)
}

func TestScoreLadderModel_MissingName(t *testing.T) {
	diff := NewApexModel().Compare(&LadderRank{Score: intPtr(10)}, &LadderRank{Name: "Rookie", Division: intPtr(4), Score: intPtr(20)})

	assert.Equal(t, "N/A -> Rookie 4", diff.RankChange)
}

func TestScoreLadderModel_DivisionZeroIsNoDivision(t *testing.T) {
	baseline := &LadderRank{Name: "Master", Score: intPtr(15000)}
	current := &LadderRank{Name: "Master", Division: intPtr(0), Score: intPtr(15100)}

	diff := NewApexModel().Compare(baseline, current)
	assert.Empty(t, diff.RankChange)

	diff = NewApexModel().Compare(&LadderRank{Name: "Diamond", Division: intPtr(1)}, current)
	assert.Equal(t, "Diamond 1 -> Master", diff.RankChange)
}

func TestScoreLadderModel_MissingSide(t *testing.T) {
	assert.Equal(t, LadderDiff{}, NewApexModel().Compare(nil, &LadderRank{Name: "Gold"}))
}

func TestExcluded(t *testing.T) {
	assert.True(t, Excluded("Hoops"))
	assert.True(t, Excluded("Ranked Hoops"))
	assert.True(t, Excluded("RUMBLE"))
	assert.True(t, Excluded("Snow Day"))
	assert.True(t, Excluded("snowday"))
	assert.True(t, Excluded("Dropshot"))
	assert.False(t, Excluded("Ranked Doubles 2v2"))
	assert.False(t, Excluded("Tournament Matches"))
}

func TestPlaylistModel_ExclusionAndMissingBaseline(t *testing.T) {
	model := NewRocketLeagueModel()

	baseline, ok := model.Normalize(PlaylistRanks{
		{Playlist: "Doubles", Rank: "Diamond", Division: "II", Mmr: intPtr(1100)},
		{Playlist: "Solo Duel", Rank: "Platinum", Division: "I", Mmr: intPtr(800)},
	})
	assert.True(t, ok)
	current, ok := model.Normalize(PlaylistRanks{
		{Playlist: "Doubles", Rank: "Diamond", Division: "III", Mmr: intPtr(1130)},
		{Playlist: "Ranked Hoops", Rank: "Gold", Division: "I", Mmr: intPtr(600)},
	})
	assert.True(t, ok)

	diffs := model.Compare(&baseline, &current)

	if assert.Len(t, diffs, 1) {
		assert.Equal(t, "Doubles", diffs[0].Playlist)
		assert.False(t, diffs[0].BaselineMissing)
		if assert.NotNil(t, diffs[0].MmrDiff) {
			assert.Equal(t, 30, *diffs[0].MmrDiff)
		}
		assert.Equal(t, "Diamond II -> Diamond III", diffs[0].RankChange)
	}
}

func TestPlaylistModel_NewPlaylistHasMissingBaseline(t *testing.T) {
	baseline := PlaylistRanks{{Playlist: "Doubles", Rank: "Gold", Mmr: intPtr(700)}}
	current := PlaylistRanks{
		{Playlist: "Doubles", Rank: "Gold", Mmr: intPtr(700)},
		{Playlist: "Standard", Rank: "Silver", Mmr: intPtr(500)},
	}

	diffs := NewRocketLeagueModel().Compare(&baseline, &current)

	assert.Equal(t, PlaylistDiffs{
		{Playlist: "Doubles", MmrDiff: intPtr(0)},
		{Playlist: "Standard", BaselineMissing: true},
	}, diffs)
}

func TestPlaylistModel_NoBaselineAtAll(t *testing.T) {
	current := PlaylistRanks{{Playlist: "Doubles", Rank: "Gold", Mmr: intPtr(700)}}

	diffs := NewRocketLeagueModel().Compare(nil, &current)

	assert.Equal(t, PlaylistDiffs{{Playlist: "Doubles", BaselineMissing: true}}, diffs)
}

func TestPlaylistModel_NoCurrent(t *testing.T) {
	baseline := PlaylistRanks{{Playlist: "Doubles"}}
	assert.Empty(t, NewRocketLeagueModel().Compare(&baseline, nil))
}

func TestPlaylistModel_OnlyExcludedIsNoData(t *testing.T) {
	ranks, ok := NewRocketLeagueModel().Normalize(PlaylistRanks{{Playlist: "Rumble"}, {Playlist: "Snow Day"}})

	assert.False(t, ok)
	assert.Empty(t, ranks)
}

func TestPlaylistModel_NormalizeDropsDuplicates(t *testing.T) {
	ranks, ok := NewRocketLeagueModel().Normalize(PlaylistRanks{
		{Playlist: "Doubles", Mmr: intPtr(1)},
		{Playlist: "Doubles", Mmr: intPtr(2)},
	})

	assert.True(t, ok)
	assert.Equal(t, PlaylistRanks{{Playlist: "Doubles", Mmr: intPtr(1)}}, ranks)
}

func TestParseGame(t *testing.T) {
	for input, expected := range map[string]Game{
		"lol": GameLeague, "League": GameLeague, "VAL": GameValorant, "valorant": GameValorant,
		"apex": GameApex, "rl": GameRocketLeague, "rocket_league": GameRocketLeague,
	} {
		game, ok := ParseGame(input)
		assert.True(t, ok, input)
		assert.Equal(t, expected, game, input)
	}

	_, ok := ParseGame("chess")
	assert.False(t, ok)
}
