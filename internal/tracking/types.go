package tracking

import (
	"fmt"
	"strings"
	"time"
)

type Game string

const (
	GameLeague       Game = "LOL"
	GameValorant     Game = "VALORANT"
	GameApex         Game = "APEX"
	GameRocketLeague Game = "ROCKET_LEAGUE"
)

var Games = []Game{GameLeague, GameValorant, GameApex, GameRocketLeague}

var gameAliases = map[string]Game{
	"lol":          GameLeague,
	"league":       GameLeague,
	"valorant":     GameValorant,
	"val":          GameValorant,
	"apex":         GameApex,
	"rocket":       GameRocketLeague,
	"rl":           GameRocketLeague,
	"rocketleague": GameRocketLeague,
}

// ParseGame accepts the short names users type in commands
func ParseGame(name string) (Game, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if game, ok := gameAliases[name]; ok {
		return game, true
	}
	for _, game := range Games {
		if strings.EqualFold(string(game), name) {
			return game, true
		}
	}
	return "", false
}

// Account is a game account the bot knows about. ExternalId is what the
// provider of the game uses to find it: a puuid for Riot games, the player
// name for Apex and the Epic id for Rocket League
type Account struct {
	Id          int64
	Game        Game
	ExternalId  string
	DisplayName string
	TagLine     string
	Region      string
}

func (account Account) String() string {
	if account.TagLine != "" {
		return fmt.Sprintf("%s#%s", account.DisplayName, account.TagLine)
	}
	if account.DisplayName != "" {
		return account.DisplayName
	}
	return account.ExternalId
}

// Snapshot is an immutable reading of the rank of one account in one queue
type Snapshot[R any] struct {
	Id         int64
	AccountId  int64
	Queue      string
	Rank       R
	CapturedAt time.Time
}

// TieredRank is the rank shape of League of Legends (LP) and Valorant (RR)
type TieredRank struct {
	Tier     string
	Division string
	Points   *int
	Wins     *int
	Losses   *int
}

// LadderRank is the rank shape of Apex Legends
type LadderRank struct {
	Name     string
	Division *int
	Score    *int
	Position *int
	Season   string
}

type PlaylistRank struct {
	Playlist string
	Rank     string
	Division string
	Mmr      *int
	Streak   string
}

// PlaylistRanks is the rank shape of Rocket League, one entry per playlist
type PlaylistRanks []PlaylistRank

type Movement int

const (
	MovementNone Movement = iota
	MovementUp
	MovementDown
)

func (movement Movement) String() string {
	switch movement {
	case MovementUp:
		return "up"
	case MovementDown:
		return "down"
	default:
		return "none"
	}
}

type TieredDiff struct {
	PointsDiff  int
	PointsKnown bool
	Movement    Movement
	// Only set when the tier itself changed
	RankChange string
}

type LadderDiff struct {
	ScoreDiff    int
	ScoreKnown   bool
	PositionDiff *int
	RankChange   string
}

type PlaylistDiff struct {
	Playlist        string
	MmrDiff         *int
	RankChange      string
	BaselineMissing bool
}

type PlaylistDiffs []PlaylistDiff

// Report is the daily comparison for one account and queue.
// Baseline and Current are nil when unavailable; Diff is always set
type Report[R, D any] struct {
	Game     Game
	Account  Account
	Queue    string
	Day      string
	Baseline *Snapshot[R]
	Current  *R
	Diff     D
}

type TieredReport = Report[TieredRank, TieredDiff]
type LadderReport = Report[LadderRank, LadderDiff]
type PlaylistReport = Report[PlaylistRanks, PlaylistDiffs]

const dayLayout = "2006-01-02"

// Day is the UTC calendar date used to group snapshots
func Day(t time.Time) string {
	return t.UTC().Format(dayLayout)
}

func intPtr(value int) *int {
	return &value
}

func valueOrZero(value *int) int {
	if value == nil {
		return 0
	}
	return *value
}
