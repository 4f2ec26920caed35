package riotapi

import (
	"strings"

	"github.com/goccy/go-json"
)

func DecodeRiotId(data []byte) (RiotId, error) {

	var riotid RiotId
	if err := json.Unmarshal(data, &riotid); err != nil {
		return RiotId{}, err
	}
	return riotid, nil
}

func DecodePuuid(data []byte) (Puuid, error) {

	var puuid struct {
		Puuid string
	}
	if err := json.Unmarshal(data, &puuid); err != nil {
		return "", err
	}

	return Puuid(puuid.Puuid), nil
}

func DecodeLeagues(data []byte) ([]League, error) {

	var raw []struct {
		QueueType    string
		Tier         string
		Rank         string
		LeaguePoints int
		Wins         int
		Losses       int
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	leagues := make([]League, 0, len(raw))
	for _, entry := range raw {
		league := League{
			QueueType: entry.QueueType,
			Tier:      entry.Tier,
			Rank:      entry.Rank,
			Lps:       entry.LeaguePoints,
			Wins:      entry.Wins,
			Losses:    entry.Losses,
		}
		// winrate
		if games := league.Wins + league.Losses; games > 0 {
			league.Winrate = 100.0 * float32(league.Wins) / float32(games)
		}
		leagues = append(leagues, league)
	}

	return leagues, nil
}

// henrikResponse is the envelope of every HenrikDev answer
type henrikResponse[T any] struct {
	Status int
	Data   T
}

type henrikAccount struct {
	Puuid  string
	Region string
	Name   string
	Tag    string
}

func DecodeHenrikAccount(data []byte) (henrikAccount, error) {

	var response henrikResponse[henrikAccount]
	if err := json.Unmarshal(data, &response); err != nil {
		return henrikAccount{}, err
	}
	return response.Data, nil
}

func DecodeMmr(data []byte) (Mmr, error) {

	var response henrikResponse[struct {
		CurrentData struct {
			Currenttierpatched string `json:"currenttierpatched"`
			RankingInTier      *int   `json:"ranking_in_tier"`
			Elo                *int   `json:"elo"`
		} `json:"current_data"`
	}]
	if err := json.Unmarshal(data, &response); err != nil {
		return Mmr{}, err
	}

	current := response.Data.CurrentData
	tier, division := splitPatchedTier(current.Currenttierpatched)
	return Mmr{Tier: tier, Division: division, RankingInTier: current.RankingInTier, Elo: current.Elo}, nil
}

// "Gold 2" -> GOLD, 2. Radiant has no division, and unrated players
// have no tier at all
func splitPatchedTier(patched string) (string, string) {
	fields := strings.Fields(patched)
	if len(fields) == 0 || strings.EqualFold(fields[0], "unrated") {
		return "", ""
	}
	tier := strings.ToUpper(fields[0])
	division := ""
	if len(fields) > 1 {
		division = fields[len(fields)-1]
	}
	return tier, division
}
