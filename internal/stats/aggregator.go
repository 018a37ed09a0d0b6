package stats

import (
	"sort"

	"github.com/guzus/llm-mafia-game/internal/models"
)

// ModelStats 单个模型的战绩统计
type ModelStats struct {
	Model         string  `json:"model"`
	GamesPlayed   int     `json:"games_played"`
	GamesWon      int     `json:"games_won"`
	WinRate       float64 `json:"win_rate"`
	MafiaGames    int     `json:"mafia_games"`
	MafiaWins     int     `json:"mafia_wins"`
	MafiaWinRate  float64 `json:"mafia_win_rate"`
	VillagerGames int     `json:"villager_games"`
	VillagerWins  int     `json:"villager_wins"`
	DoctorGames   int     `json:"doctor_games"`
	DoctorWins    int     `json:"doctor_wins"`
}

// Aggregate 把已完成的对局折叠为各模型的战绩。只读，不修改任何记录。
// 平局计入场次但不计入胜场；零场次的模型胜率为0而不是NaN
func Aggregate(records []*models.GameRecord) map[string]*ModelStats {
	result := make(map[string]*ModelStats)

	for _, record := range records {
		for _, info := range record.Participants {
			s, ok := result[info.ModelName]
			if !ok {
				s = &ModelStats{Model: info.ModelName}
				result[info.ModelName] = s
			}

			s.GamesPlayed++

			won := false
			switch info.Role {
			case "Mafia":
				s.MafiaGames++
				if record.Winner == models.WinnerMafia {
					s.MafiaWins++
					won = true
				}
			case "Doctor":
				s.DoctorGames++
				if record.Winner == models.WinnerVillagers {
					s.DoctorWins++
					won = true
				}
			default:
				s.VillagerGames++
				if record.Winner == models.WinnerVillagers {
					s.VillagerWins++
					won = true
				}
			}
			if won {
				s.GamesWon++
			}
		}
	}

	for _, s := range result {
		s.WinRate = rate(s.GamesWon, s.GamesPlayed)
		s.MafiaWinRate = rate(s.MafiaWins, s.MafiaGames)
	}

	return result
}

// rate 零场次返回0，避免除零
func rate(wins, games int) float64 {
	if games == 0 {
		return 0
	}
	return float64(wins) / float64(games)
}

// Leaderboard 按总胜率降序排列的统计列表，胜率相同按场次降序
func Leaderboard(statsMap map[string]*ModelStats) []*ModelStats {
	list := make([]*ModelStats, 0, len(statsMap))
	for _, s := range statsMap {
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].WinRate != list[j].WinRate {
			return list[i].WinRate > list[j].WinRate
		}
		if list[i].GamesPlayed != list[j].GamesPlayed {
			return list[i].GamesPlayed > list[j].GamesPlayed
		}
		return list[i].Model < list[j].Model
	})
	return list
}
