package apexapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ranktrack/internal/tracking"
)

const bridgePayload = `{
	"global": {
		"name": "ImperialHal",
		"platform": "PC",
		"rank": {
			"rankName": "Predator",
			"rankDiv": 0,
			"rankScore": "32011",
			"ladderPosPlatform": 12,
			"rankedSeason": "season22_split_1"
		}
	}
}`

func newTestApexApi(t *testing.T, handler http.HandlerFunc) *ApexApi {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	apexapi := New(Config{ApiKey: "moz", Timeout: time.Second})
	apexapi.schema = server.URL
	return apexapi
}

func TestDecodePlayer(t *testing.T) {
	player, err := DecodePlayer([]byte(bridgePayload))

	require.NoError(t, err)
	assert.Equal(t, "ImperialHal", player.Name)
	assert.Equal(t, "Predator", player.Rank.Name)
	assert.Equal(t, 0, *player.Rank.Division)
	assert.Equal(t, 32011, *player.Rank.Score)
	assert.Equal(t, 12, *player.Rank.Position)
	assert.Equal(t, "season22_split_1", player.Rank.Season)
}

func TestDecodePlayer_OffLadder(t *testing.T) {
	player, err := DecodePlayer([]byte(`{"global": {"name": "x", "rank": {"rankName": "Gold", "rankDiv": 3, "rankScore": 7000, "ladderPosPlatform": -1}}}`))

	require.NoError(t, err)
	assert.Nil(t, player.Rank.Position)
}

func TestDecodePlayer_ErrorAnswer(t *testing.T) {
	_, err := DecodePlayer([]byte(`{"Error": "Player not found"}`))
	assert.Error(t, err)
}

func TestApexApi_Fetch(t *testing.T) {
	apexapi := newTestApexApi(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "moz", r.Header.Get("Authorization"))
		assert.Equal(t, "ImperialHal", r.URL.Query().Get("player"))
		assert.Equal(t, "PS4", r.URL.Query().Get("platform"))
		w.Write([]byte(bridgePayload))
	})

	rank, ok := apexapi.Fetch(context.Background(), tracking.Account{Id: 5, ExternalId: "ImperialHal", Region: "PS4"}, QUEUE_RANKED_BR)

	require.True(t, ok)
	assert.Equal(t, "Predator", rank.Name)
}

func TestApexApi_FetchFailure(t *testing.T) {
	apexapi := newTestApexApi(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, ok := apexapi.Fetch(context.Background(), tracking.Account{Id: 5, ExternalId: "x"}, QUEUE_RANKED_BR)
	assert.False(t, ok)
}

func TestApexApi_ResolveWithPlatform(t *testing.T) {
	apexapi := newTestApexApi(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Some Player", r.URL.Query().Get("player"))
		assert.Equal(t, "X1", r.URL.Query().Get("platform"))
		w.Write([]byte(`{"global": {"name": "Some Player", "platform": "X1", "rank": {"rankName": "Rookie"}}}`))
	})

	account, err := apexapi.Resolve(context.Background(), "Some Player xbox")

	require.NoError(t, err)
	assert.Equal(t, tracking.Account{Game: tracking.GameApex, ExternalId: "Some Player", DisplayName: "Some Player", Region: "X1"}, account)
}

func TestNormalizePlatform(t *testing.T) {
	platform, ok := NormalizePlatform("PS5")
	assert.True(t, ok)
	assert.Equal(t, "PS4", platform)

	_, ok = NormalizePlatform("dreamcast")
	assert.False(t, ok)
}
