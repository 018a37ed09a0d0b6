package game

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guzus/llm-mafia-game/internal/config"
	apperrors "github.com/guzus/llm-mafia-game/internal/errors"
	"github.com/guzus/llm-mafia-game/internal/models"
)

// invokerFunc 测试用的函数式Invoker
type invokerFunc func(ctx context.Context, model, prompt string) (string, error)

func (f invokerFunc) Invoke(ctx context.Context, model, prompt string) (string, error) {
	return f(ctx, model, prompt)
}

func testGameConfig(players, mafia, doctors, maxRounds int) config.GameConfig {
	modelNames := make([]string, players)
	for i := 0; i < players; i++ {
		modelNames[i] = fmt.Sprintf("test/player-%c", 'a'+i)
	}
	return config.GameConfig{
		Models:         modelNames,
		PlayersPerGame: players,
		MafiaCount:     mafia,
		DoctorCount:    doctors,
		MaxRounds:      maxRounds,
		TieBreak:       TieBreakLowestIndex,
		Language:       LangEnglish,
		GameType:       "Classic Mafia",
		UniqueModels:   true,
		RandomSeed:     42,
	}
}

// forceRoles 按名册顺序覆盖角色分配，使测试剧本确定
func forceRoles(st *GameState, roles []Role) {
	for i, r := range roles {
		st.Players[i].Role = r
	}
}

func TestEngineSetup_RoleCounts(t *testing.T) {
	tests := []struct {
		name    string
		players int
		mafia   int
		doctors int
	}{
		{"标准八人局", 8, 2, 1},
		{"最小配置", 3, 1, 0},
		{"多医生", 6, 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := NewEngine(testGameConfig(tt.players, tt.mafia, tt.doctors, 10), nil, 0)
			require.NoError(t, eng.Setup())

			st := eng.State()
			require.Len(t, st.Players, tt.players)

			counts := map[Role]int{}
			for _, p := range st.Players {
				counts[p.Role]++
				assert.True(t, p.Alive)
			}
			assert.Equal(t, tt.mafia, counts[RoleMafia])
			assert.Equal(t, tt.doctors, counts[RoleDoctor])
			assert.Equal(t, tt.players-tt.mafia-tt.doctors, counts[RoleVillager])
		})
	}
}

func TestEngineSetup_InvalidConfig(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*config.GameConfig)
		wantCode apperrors.ErrorCode
	}{
		{
			name:     "黑手党数量为0",
			mutate:   func(c *config.GameConfig) { c.MafiaCount = 0 },
			wantCode: apperrors.ErrInvalidRoleCounts,
		},
		{
			name:     "医生数量为负",
			mutate:   func(c *config.GameConfig) { c.DoctorCount = -1 },
			wantCode: apperrors.ErrInvalidRoleCounts,
		},
		{
			name:     "玩家数不足",
			mutate:   func(c *config.GameConfig) { c.PlayersPerGame = 3; c.MafiaCount = 2; c.DoctorCount = 1 },
			wantCode: apperrors.ErrInvalidRoleCounts,
		},
		{
			name:     "模型列表为空",
			mutate:   func(c *config.GameConfig) { c.Models = nil },
			wantCode: apperrors.ErrNotEnoughModels,
		},
		{
			name:     "唯一模型约束下模型不够",
			mutate:   func(c *config.GameConfig) { c.Models = c.Models[:3] },
			wantCode: apperrors.ErrNotEnoughModels,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testGameConfig(8, 2, 1, 10)
			tt.mutate(&cfg)
			eng := NewEngine(cfg, nil, 0)
			err := eng.Setup()
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, tt.wantCode))
		})
	}
}

func TestEngineSetup_SeedReproducible(t *testing.T) {
	cfg := testGameConfig(6, 2, 1, 10)

	eng1 := NewEngine(cfg, nil, 0)
	require.NoError(t, eng1.Setup())
	eng2 := NewEngine(cfg, nil, 0)
	require.NoError(t, eng2.Setup())

	for i := range eng1.State().Players {
		assert.Equal(t, eng1.State().Players[i].Name, eng2.State().Players[i].Name)
		assert.Equal(t, eng1.State().Players[i].Role, eng2.State().Players[i].Role)
	}
}

// 六人局剧本：两黑手党夜晚同杀A，医生保护A -> 无人死亡；
// 白天四人投M1，队友投村民 -> M1相对多数；确认投票4同意2反对 -> M1出局
func TestEngine_ProtectionAndVoteScenario(t *testing.T) {
	cfg := testGameConfig(6, 2, 1, 1) // 一回合后强制结束，便于逐项检查

	var eng *Engine
	invoker := invokerFunc(func(ctx context.Context, model, prompt string) (string, error) {
		st := eng.State()
		m1 := st.Players[0]
		m2 := st.Players[1]
		victim := st.Players[3]

		var self *Player
		for _, p := range st.Players {
			if p.ModelName == model {
				self = p
				break
			}
		}
		require.NotNil(t, self)

		switch {
		case strings.Contains(prompt, "night time"):
			if self.Role == RoleDoctor {
				return "ACTION: Protect " + victim.Name, nil
			}
			return "ACTION: Kill " + victim.Name, nil

		case strings.Contains(prompt, "DISCUSSION PHASE ONLY"):
			return "I have my suspicions about " + m1.Name, nil

		case strings.Contains(prompt, "VOTING PHASE"):
			if self == m1 || self == m2 {
				return "VOTE: " + victim.Name, nil
			}
			return "VOTE: " + m1.Name, nil

		case strings.Contains(prompt, "confirmation vote is needed"):
			if self == m1 || self == m2 {
				return "I DISAGREE with this decision", nil
			}
			return "I AGREE, the evidence is clear", nil

		case strings.Contains(prompt, "voted out with"):
			return "You will regret this.", nil
		}

		return "", nil
	})

	eng = NewEngine(cfg, invoker, 0)
	require.NoError(t, eng.Setup())
	forceRoles(eng.State(), []Role{RoleMafia, RoleMafia, RoleDoctor, RoleVillager, RoleVillager, RoleVillager})

	record, err := eng.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, record.Rounds, 1)

	st := eng.State()
	m1 := st.Players[0]
	victim := st.Players[3]
	round := record.Rounds[0]

	// 夜晚：保护抵消击杀
	assert.Equal(t, victim.Name, round.TargetedByMafia)
	assert.Equal(t, victim.Name, round.ProtectedByDoctor)
	assert.Empty(t, round.NightKilled)
	assert.True(t, victim.Alive)

	// 白天：相对多数提名M1
	assert.Equal(t, 4, round.VoteCounts[m1.Name])
	assert.Equal(t, 2, round.VoteCounts[victim.Name])
	assert.Equal(t, m1.Name, round.Candidate)

	// 确认投票4同意2反对，4 > 6/2，处刑生效
	require.NotNil(t, round.ConfirmationVotes)
	assert.Len(t, round.ConfirmationVotes.Agree, 4)
	assert.Len(t, round.ConfirmationVotes.Disagree, 2)
	assert.Equal(t, m1.Name, round.EliminatedByVote)
	assert.Equal(t, "You will regret this.", round.LastWords)
	assert.Equal(t, []string{m1.Name}, round.Eliminations)
	assert.False(t, m1.Alive)

	// 处刑后仍有1黑手党对4非黑手党，胜负未分；回合上限触发平局
	assert.Equal(t, 1, st.AliveByRole(RoleMafia))
	assert.Equal(t, 4, st.AliveCount()-st.AliveByRole(RoleMafia))
	assert.Equal(t, models.WinnerDraw, record.Winner)

	// 参赛者记录完整
	assert.Equal(t, 6, record.ParticipantCount)
	require.Len(t, record.Participants, 6)
	assert.Equal(t, string(RoleMafia), record.Participants[m1.Name].Role)
}

// 超时/调用失败按弃权处理：夜晚回合照常完成并进入白天
func TestEngine_InvokerFailureIsAbstention(t *testing.T) {
	cfg := testGameConfig(4, 1, 1, 1)

	var eng *Engine
	invoker := invokerFunc(func(ctx context.Context, model, prompt string) (string, error) {
		st := eng.State()
		if st.Players[0].ModelName == model && strings.Contains(prompt, "night time") {
			return "", apperrors.New(apperrors.ErrLLMTimeout)
		}
		if strings.Contains(prompt, "night time") {
			return "ACTION: Protect " + st.Players[2].Name, nil
		}
		return "just talking, no vote", nil
	})

	eng = NewEngine(cfg, invoker, 0)
	require.NoError(t, eng.Setup())
	forceRoles(eng.State(), []Role{RoleMafia, RoleDoctor, RoleVillager, RoleVillager})

	record, err := eng.Run(context.Background())
	require.NoError(t, err, "单个玩家的调用失败不得中断对局")
	require.Len(t, record.Rounds, 1)

	round := record.Rounds[0]

	// 黑手党的弃权被记录，无人死亡
	var mafiaAction *models.ActionRecord
	for i := range round.Actions {
		if round.Actions[i].Actor == eng.State().Players[0].Name {
			mafiaAction = &round.Actions[i]
			break
		}
	}
	require.NotNil(t, mafiaAction)
	assert.Equal(t, string(VerbNone), mafiaAction.Verb)
	assert.Empty(t, round.NightKilled)

	// 对局照常进入白天讨论
	hasDayMessage := false
	for _, msg := range round.Messages {
		if msg.Phase == "day_discussion" {
			hasDayMessage = true
			break
		}
	}
	assert.True(t, hasDayMessage)
}

// 一黑手党连杀两晚，白天全员弃权 -> 黑手党胜
func TestEngine_MafiaWin(t *testing.T) {
	cfg := testGameConfig(4, 1, 0, 10)

	var eng *Engine
	invoker := invokerFunc(func(ctx context.Context, model, prompt string) (string, error) {
		st := eng.State()
		if strings.Contains(prompt, "night time") {
			// 依次击杀名册中的村民
			for _, p := range st.Players[1:] {
				if p.Alive {
					return "ACTION: Kill " + p.Name, nil
				}
			}
		}
		return "nothing to say", nil
	})

	eng = NewEngine(cfg, invoker, 0)
	require.NoError(t, eng.Setup())
	forceRoles(eng.State(), []Role{RoleMafia, RoleVillager, RoleVillager, RoleVillager})

	record, err := eng.Run(context.Background())
	require.NoError(t, err)

	// 第一晚4->3，第二晚3->2（1黑手党 vs 1村民）-> 黑手党胜
	assert.Equal(t, models.WinnerMafia, record.Winner)
	require.Len(t, record.Rounds, 2)
	assert.NotEmpty(t, record.Rounds[0].NightKilled)
	assert.NotEmpty(t, record.Rounds[1].NightKilled)
	assert.Equal(t, PhaseGameOver, eng.State().Phase)
}

// 白天投出唯一的黑手党 -> 村民胜
func TestEngine_VillagersWin(t *testing.T) {
	cfg := testGameConfig(5, 1, 0, 10)

	var eng *Engine
	invoker := invokerFunc(func(ctx context.Context, model, prompt string) (string, error) {
		st := eng.State()
		mafia := st.Players[0]
		switch {
		case strings.Contains(prompt, "night time"):
			// 黑手党击杀最后一名村民
			return "ACTION: Kill " + st.Players[4].Name, nil
		case strings.Contains(prompt, "VOTING PHASE"):
			return "VOTE: " + mafia.Name, nil
		case strings.Contains(prompt, "confirmation vote is needed"):
			return "AGREE", nil
		case strings.Contains(prompt, "voted out with"):
			return "Well played.", nil
		}
		return "discussing", nil
	})

	eng = NewEngine(cfg, invoker, 0)
	require.NoError(t, eng.Setup())
	forceRoles(eng.State(), []Role{RoleMafia, RoleVillager, RoleVillager, RoleVillager, RoleVillager})

	record, err := eng.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.WinnerVillagers, record.Winner)
	require.Len(t, record.Rounds, 1)
	round := record.Rounds[0]
	assert.Equal(t, eng.State().Players[0].Name, round.EliminatedByVote)
	// 夜晚死一人，白天处刑一人
	assert.Len(t, round.Eliminations, 2)
}

// 确认投票未过半时不处刑
func TestEngine_ConfirmationRejected(t *testing.T) {
	cfg := testGameConfig(4, 1, 0, 1)

	var eng *Engine
	invoker := invokerFunc(func(ctx context.Context, model, prompt string) (string, error) {
		st := eng.State()
		switch {
		case strings.Contains(prompt, "night time"):
			return "", nil // 黑手党弃权，保持全员存活
		case strings.Contains(prompt, "VOTING PHASE"):
			return "VOTE: " + st.Players[0].Name, nil
		case strings.Contains(prompt, "confirmation vote is needed"):
			return "I DISAGREE", nil
		}
		return "discussing", nil
	})

	eng = NewEngine(cfg, invoker, 0)
	require.NoError(t, eng.Setup())
	forceRoles(eng.State(), []Role{RoleMafia, RoleVillager, RoleVillager, RoleVillager})

	record, err := eng.Run(context.Background())
	require.NoError(t, err)

	round := record.Rounds[0]
	assert.Equal(t, eng.State().Players[0].Name, round.Candidate, "相对多数提名仍然记录")
	assert.Empty(t, round.EliminatedByVote, "确认未通过不处刑")
	assert.Empty(t, round.Eliminations)
	assert.True(t, eng.State().Players[0].Alive)
	assert.Contains(t, round.Outcome, "rejected")
}

// 达到最大回合数强制平局，不得无限循环
func TestEngine_MaxRoundsDraw(t *testing.T) {
	cfg := testGameConfig(5, 1, 1, 3)

	var eng *Engine
	invoker := invokerFunc(func(ctx context.Context, model, prompt string) (string, error) {
		st := eng.State()
		if strings.Contains(prompt, "night time") {
			// 医生每晚恰好保护黑手党的目标
			if strings.Contains(prompt, "Protect") {
				return "ACTION: Protect " + st.Players[2].Name, nil
			}
			return "ACTION: Kill " + st.Players[2].Name, nil
		}
		return "no vote from me", nil
	})

	eng = NewEngine(cfg, invoker, 0)
	require.NoError(t, eng.Setup())
	forceRoles(eng.State(), []Role{RoleMafia, RoleDoctor, RoleVillager, RoleVillager, RoleVillager})

	record, err := eng.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.WinnerDraw, record.Winner)
	assert.Len(t, record.Rounds, 3)
	assert.Equal(t, PhaseGameOver, eng.State().Phase)
}

// 对局记录中的每个决策都保留原始文本
func TestEngine_ActionsKeepRawText(t *testing.T) {
	cfg := testGameConfig(3, 1, 0, 1)

	raw := "I refuse to follow the format tonight"
	var eng *Engine
	invoker := invokerFunc(func(ctx context.Context, model, prompt string) (string, error) {
		if strings.Contains(prompt, "night time") {
			return raw, nil
		}
		return "chatting", nil
	})

	eng = NewEngine(cfg, invoker, 0)
	require.NoError(t, eng.Setup())
	forceRoles(eng.State(), []Role{RoleMafia, RoleVillager, RoleVillager})

	record, err := eng.Run(context.Background())
	require.NoError(t, err)

	require.NotEmpty(t, record.Rounds[0].Actions)
	night := record.Rounds[0].Actions[0]
	assert.Equal(t, string(VerbNone), night.Verb)
	assert.Equal(t, raw, night.Raw, "解析失败的响应原文必须保留")
}
