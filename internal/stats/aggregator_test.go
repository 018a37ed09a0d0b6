package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guzus/llm-mafia-game/internal/models"
)

func record(winner string, participants map[string]models.ParticipantInfo) *models.GameRecord {
	return &models.GameRecord{
		Winner:       winner,
		Participants: participants,
	}
}

func TestAggregate(t *testing.T) {
	records := []*models.GameRecord{
		record(models.WinnerMafia, map[string]models.ParticipantInfo{
			"a": {Role: "Mafia", ModelName: "model-a"},
			"b": {Role: "Villager", ModelName: "model-b"},
			"c": {Role: "Doctor", ModelName: "model-c"},
		}),
		record(models.WinnerVillagers, map[string]models.ParticipantInfo{
			"a": {Role: "Villager", ModelName: "model-a"},
			"b": {Role: "Mafia", ModelName: "model-b"},
			"c": {Role: "Doctor", ModelName: "model-c"},
		}),
	}

	stats := Aggregate(records)
	require.Len(t, stats, 3)

	a := stats["model-a"]
	assert.Equal(t, 2, a.GamesPlayed)
	assert.Equal(t, 2, a.GamesWon, "黑手党局赢了黑手党，村民局赢了村民")
	assert.Equal(t, 1.0, a.WinRate)
	assert.Equal(t, 1, a.MafiaGames)
	assert.Equal(t, 1, a.MafiaWins)
	assert.Equal(t, 1, a.VillagerGames)
	assert.Equal(t, 1, a.VillagerWins)

	b := stats["model-b"]
	assert.Equal(t, 2, b.GamesPlayed)
	assert.Equal(t, 0, b.GamesWon)
	assert.Equal(t, 0.0, b.WinRate)

	c := stats["model-c"]
	assert.Equal(t, 2, c.DoctorGames)
	assert.Equal(t, 1, c.DoctorWins)
	assert.Equal(t, 0.5, c.WinRate)
}

func TestAggregate_DrawCountsAsPlayedNotWon(t *testing.T) {
	records := []*models.GameRecord{
		record(models.WinnerDraw, map[string]models.ParticipantInfo{
			"a": {Role: "Mafia", ModelName: "model-a"},
			"b": {Role: "Villager", ModelName: "model-b"},
		}),
	}

	stats := Aggregate(records)
	assert.Equal(t, 1, stats["model-a"].GamesPlayed)
	assert.Equal(t, 0, stats["model-a"].GamesWon)
	assert.Equal(t, 0.0, stats["model-a"].WinRate)
	assert.Equal(t, 1, stats["model-b"].GamesPlayed)
	assert.Equal(t, 0, stats["model-b"].GamesWon)
}

func TestAggregate_ZeroGamesNoNaN(t *testing.T) {
	stats := Aggregate(nil)
	assert.Empty(t, stats)

	// 有场次但某角色零场次时该角色胜率为0
	records := []*models.GameRecord{
		record(models.WinnerVillagers, map[string]models.ParticipantInfo{
			"a": {Role: "Villager", ModelName: "model-a"},
		}),
	}
	s := Aggregate(records)["model-a"]
	assert.Equal(t, 0, s.MafiaGames)
	assert.Equal(t, 0.0, s.MafiaWinRate)
	assert.False(t, s.MafiaWinRate != s.MafiaWinRate, "不允许出现NaN")
}

func TestAggregate_DoesNotMutateRecords(t *testing.T) {
	r := record(models.WinnerMafia, map[string]models.ParticipantInfo{
		"a": {Role: "Mafia", ModelName: "model-a"},
	})
	Aggregate([]*models.GameRecord{r})

	assert.Equal(t, models.WinnerMafia, r.Winner)
	assert.Equal(t, "Mafia", r.Participants["a"].Role)
}

func TestLeaderboard(t *testing.T) {
	statsMap := map[string]*ModelStats{
		"low":  {Model: "low", GamesPlayed: 4, GamesWon: 1, WinRate: 0.25},
		"high": {Model: "high", GamesPlayed: 4, GamesWon: 3, WinRate: 0.75},
		"mid":  {Model: "mid", GamesPlayed: 2, GamesWon: 1, WinRate: 0.5},
	}

	list := Leaderboard(statsMap)
	require.Len(t, list, 3)
	assert.Equal(t, "high", list[0].Model)
	assert.Equal(t, "mid", list[1].Model)
	assert.Equal(t, "low", list[2].Model)
}
