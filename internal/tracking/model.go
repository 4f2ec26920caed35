package tracking

import (
	"fmt"
	"strings"
)

// Model knows how one game shapes and compares its ranks.
// Normalize reports false when the reading carries no usable rank.
// Compare accepts nil on either side and always returns a diff
type Model[R, D any] interface {
	Normalize(rank R) (R, bool)
	Compare(baseline *R, current *R) D
}

// ladder orders tiers and divisions. Built once, never modified
type ladder struct {
	tiers     map[string]int
	divisions map[string]int
}

func newLadder(tiers []string, divisions []string) ladder {
	l := ladder{tiers: make(map[string]int, len(tiers)), divisions: make(map[string]int, len(divisions))}
	for i, tier := range tiers {
		l.tiers[tier] = i
	}
	for i, division := range divisions {
		l.divisions[division] = i
	}
	return l
}

// Unknown labels index as -1
func (l ladder) index(rank TieredRank) (int, int) {
	tier, ok := l.tiers[strings.ToUpper(rank.Tier)]
	if !ok {
		tier = -1
	}
	division, ok := l.divisions[strings.ToUpper(rank.Division)]
	if !ok {
		division = -1
	}
	return tier, division
}

var leagueLadder = newLadder(
	[]string{"IRON", "BRONZE", "SILVER", "GOLD", "PLATINUM", "EMERALD", "DIAMOND", "MASTER", "GRANDMASTER", "CHALLENGER"},
	[]string{"IV", "III", "II", "I"},
)

var valorantLadder = newLadder(
	[]string{"IRON", "BRONZE", "SILVER", "GOLD", "PLATINUM", "DIAMOND", "ASCENDANT", "IMMORTAL", "RADIANT"},
	[]string{"1", "2", "3"},
)

// TieredModel compares ranks lexicographically on (tier, division)
type TieredModel struct {
	ladder ladder
}

func NewLeagueModel() TieredModel {
	return TieredModel{ladder: leagueLadder}
}

func NewValorantModel() TieredModel {
	return TieredModel{ladder: valorantLadder}
}

func (model TieredModel) Normalize(rank TieredRank) (TieredRank, bool) {
	rank.Tier = strings.ToUpper(strings.TrimSpace(rank.Tier))
	rank.Division = strings.ToUpper(strings.TrimSpace(rank.Division))
	return rank, rank.Tier != ""
}

func (model TieredModel) Compare(baseline *TieredRank, current *TieredRank) TieredDiff {
	var diff TieredDiff
	if baseline == nil || current == nil {
		return diff
	}

	diff.PointsDiff = valueOrZero(current.Points) - valueOrZero(baseline.Points)
	diff.PointsKnown = current.Points != nil && baseline.Points != nil

	baselineTier, baselineDivision := model.ladder.index(*baseline)
	currentTier, currentDivision := model.ladder.index(*current)
	switch {
	case currentTier != baselineTier:
		diff.Movement = direction(currentTier - baselineTier)
		diff.RankChange = fmt.Sprintf("%s -> %s", tieredLabel(*baseline), tieredLabel(*current))
	case currentDivision != baselineDivision:
		diff.Movement = direction(currentDivision - baselineDivision)
	}
	return diff
}

func direction(delta int) Movement {
	switch {
	case delta > 0:
		return MovementUp
	case delta < 0:
		return MovementDown
	default:
		return MovementNone
	}
}

func tieredLabel(rank TieredRank) string {
	return strings.TrimSpace(rank.Tier + " " + rank.Division)
}

// ScoreLadderModel has no ordering between ranks, only a label that
// either changed or did not
type ScoreLadderModel struct{}

func NewApexModel() ScoreLadderModel {
	return ScoreLadderModel{}
}

func (model ScoreLadderModel) Normalize(rank LadderRank) (LadderRank, bool) {
	rank.Name = strings.TrimSpace(rank.Name)
	return rank, rank.Name != "" || rank.Score != nil
}

func (model ScoreLadderModel) Compare(baseline *LadderRank, current *LadderRank) LadderDiff {
	var diff LadderDiff
	if baseline == nil || current == nil {
		return diff
	}

	diff.ScoreDiff = valueOrZero(current.Score) - valueOrZero(baseline.Score)
	diff.ScoreKnown = current.Score != nil && baseline.Score != nil

	if baseline.Position != nil && current.Position != nil {
		diff.PositionDiff = intPtr(*current.Position - *baseline.Position)
	}

	if before, after := ladderLabel(*baseline), ladderLabel(*current); before != after {
		diff.RankChange = fmt.Sprintf("%s -> %s", before, after)
	}
	return diff
}

func ladderLabel(rank LadderRank) string {
	name := rank.Name
	if name == "" {
		name = "N/A"
	}
	// Unranked and top tiers report division 0
	if rank.Division == nil || *rank.Division == 0 {
		return name
	}
	return fmt.Sprintf("%s %d", name, *rank.Division)
}

// Casual and rotating modes never count towards the daily report
var excludedPlaylists = []string{"hoops", "rumble", "dropshot", "snow day", "snowday"}

func Excluded(playlist string) bool {
	playlist = strings.ToLower(playlist)
	for _, excluded := range excludedPlaylists {
		if strings.Contains(playlist, excluded) {
			return true
		}
	}
	return false
}

// PlaylistModel diffs every playlist independently, keyed by name
type PlaylistModel struct{}

func NewRocketLeagueModel() PlaylistModel {
	return PlaylistModel{}
}

func (model PlaylistModel) Normalize(ranks PlaylistRanks) (PlaylistRanks, bool) {
	filtered := make(PlaylistRanks, 0, len(ranks))
	seen := make(map[string]struct{}, len(ranks))
	for _, rank := range ranks {
		rank.Playlist = strings.TrimSpace(rank.Playlist)
		if rank.Playlist == "" || Excluded(rank.Playlist) {
			continue
		}
		if _, ok := seen[rank.Playlist]; ok {
			continue
		}
		seen[rank.Playlist] = struct{}{}
		filtered = append(filtered, rank)
	}
	return filtered, len(filtered) > 0
}

func (model PlaylistModel) Compare(baseline *PlaylistRanks, current *PlaylistRanks) PlaylistDiffs {
	diffs := PlaylistDiffs{}
	if current == nil {
		return diffs
	}

	byPlaylist := make(map[string]PlaylistRank)
	if baseline != nil {
		for _, rank := range *baseline {
			byPlaylist[rank.Playlist] = rank
		}
	}

	for _, rank := range *current {
		if Excluded(rank.Playlist) {
			continue
		}
		diff := PlaylistDiff{Playlist: rank.Playlist}
		base, ok := byPlaylist[rank.Playlist]
		if !ok || Excluded(base.Playlist) {
			diff.BaselineMissing = true
			diffs = append(diffs, diff)
			continue
		}
		if rank.Mmr != nil && base.Mmr != nil {
			diff.MmrDiff = intPtr(*rank.Mmr - *base.Mmr)
		}
		if before, after := playlistLabel(base), playlistLabel(rank); before != after {
			diff.RankChange = fmt.Sprintf("%s -> %s", before, after)
		}
		diffs = append(diffs, diff)
	}
	return diffs
}

func playlistLabel(rank PlaylistRank) string {
	name := rank.Rank
	if name == "" {
		name = "N/A"
	}
	return strings.TrimSpace(name + " " + rank.Division)
}
