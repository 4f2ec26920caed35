package riotapi

import (
	"fmt"
	"strings"
)

type Puuid string

type RiotId struct {
	GameName string
	TagLine  string
}

type League struct {
	QueueType string
	Tier      string
	Rank      string
	Lps       int
	Wins      int
	Losses    int
	Winrate   float32
}

// Mmr is the competitive standing of a Valorant player
type Mmr struct {
	Tier          string
	Division      string
	RankingInTier *int
	Elo           *int
}

func (riotid *RiotId) String() string {
	return fmt.Sprintf("%s#%s", riotid.GameName, riotid.TagLine)
}

// ParseRiotId splits "name#tag", ignoring the spaces that users put
// around the hashtag
func ParseRiotId(input string) (RiotId, error) {
	hashtagPos := strings.LastIndex(input, "#")
	if hashtagPos == -1 {
		return RiotId{}, fmt.Errorf("input %q is not a riot id", input)
	}
	riotid := RiotId{
		GameName: strings.TrimSpace(input[:hashtagPos]),
		TagLine:  strings.TrimSpace(input[hashtagPos+1:]),
	}
	if riotid.GameName == "" || riotid.TagLine == "" {
		return RiotId{}, fmt.Errorf("input %q is not a riot id", input)
	}
	return riotid, nil
}
