package game

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/guzus/llm-mafia-game/internal/models"
)

// Phase 游戏阶段
type Phase string

const (
	PhaseSetup    Phase = "setup"
	PhaseNight    Phase = "night"
	PhaseDay      Phase = "day"
	PhaseVoting   Phase = "voting"
	PhaseGameOver Phase = "game_over"
)

// GameState 可变的对局聚合根。由引擎独占持有，
// 结算器在单个阶段内按引用使用，阶段结束后不得保留
type GameState struct {
	GameID      string
	RoundNumber int
	Phase       Phase
	Players     []*Player // 名册顺序固定，平票裁决依赖此顺序
	Winner      string    // 未定时为空，且只允许设置一次
	Language    string

	// 全部玩家可见的讨论历史（按实际发言顺序累积）
	History strings.Builder

	// 正在进行的回合记录，回合结束后追加到Rounds并不再修改
	CurrentRound *models.RoundRecord
	Rounds       models.RoundList
}

// AlivePlayers 返回存活玩家（保持名册顺序）
func (s *GameState) AlivePlayers() []*Player {
	var alive []*Player
	for _, p := range s.Players {
		if p.Alive {
			alive = append(alive, p)
		}
	}
	return alive
}

// AliveByRole 返回指定角色的存活玩家数
func (s *GameState) AliveByRole(role Role) int {
	count := 0
	for _, p := range s.Players {
		if p.Alive && p.Role == role {
			count++
		}
	}
	return count
}

// AliveCount 返回存活玩家总数
func (s *GameState) AliveCount() int {
	count := 0
	for _, p := range s.Players {
		if p.Alive {
			count++
		}
	}
	return count
}

// MafiaMembers 返回全部黑手党成员（含死亡，供队友提示词使用）
func (s *GameState) MafiaMembers() []*Player {
	var mafia []*Player
	for _, p := range s.Players {
		if p.Role == RoleMafia {
			mafia = append(mafia, p)
		}
	}
	return mafia
}

// FindPlayer 按名称查找玩家
func (s *GameState) FindPlayer(name string) *Player {
	for _, p := range s.Players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Describe 返回当前局面的文字描述（进入提示词）
func (s *GameState) Describe() string {
	aliveMafia := s.AliveByRole(RoleMafia)
	aliveOthers := s.AliveCount() - aliveMafia

	desc := fmt.Sprintf("Round %d, %s phase. ", s.RoundNumber, capitalize(string(s.Phase)))
	desc += fmt.Sprintf("%d players alive (%d Mafia, %d Villagers/Doctor). ",
		s.AliveCount(), aliveMafia, aliveOthers)

	if s.RoundNumber > 1 && len(s.Rounds) > 0 {
		prev := s.Rounds[len(s.Rounds)-1]
		if len(prev.Eliminations) == 1 {
			desc += fmt.Sprintf("In the previous round, %s was eliminated. ", prev.Eliminations[0])
		} else if len(prev.Eliminations) > 1 {
			desc += fmt.Sprintf("In the previous round, %s were eliminated. ",
				strings.Join(prev.Eliminations, ", "))
		}
	}

	return desc
}

// AppendHistory 向共享讨论历史追加一条发言
func (s *GameState) AppendHistory(speaker, content string) {
	s.History.WriteString(speaker)
	s.History.WriteString(": ")
	s.History.WriteString(content)
	s.History.WriteString("\n\n")
}

// AppendMessage 向当前回合记录追加一条发言
func (s *GameState) AppendMessage(msg models.Message) {
	if s.CurrentRound != nil {
		s.CurrentRound.Messages = append(s.CurrentRound.Messages, msg)
	}
}

// AppendAction 向当前回合记录追加一次决策
func (s *GameState) AppendAction(a Action) {
	if s.CurrentRound != nil {
		s.CurrentRound.Actions = append(s.CurrentRound.Actions, models.ActionRecord{
			Actor:  a.Actor,
			Verb:   string(a.Verb),
			Target: a.Target,
			Raw:    a.Raw,
		})
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

var (
	closedThinkRe   = regexp.MustCompile(`(?s)<[tT][hH][iI][nN][kK]>.*?</[tT][hH][iI][nN][kK]>`)
	unclosedThinkRe = regexp.MustCompile(`(?s)<[tT][hH][iI][nN][kK]>.*$`)
	blankRunsRe     = regexp.MustCompile(`\n\s*\n`)
)

// ScrubThinking 移除响应中的<think></think>私密推理段。
// 未闭合的标签从起始处一直删到文本末尾
func ScrubThinking(text string) string {
	cleaned := closedThinkRe.ReplaceAllString(text, "")
	cleaned = unclosedThinkRe.ReplaceAllString(cleaned, "")
	cleaned = blankRunsRe.ReplaceAllString(cleaned, "\n\n")
	return strings.TrimSpace(cleaned)
}

// ScrubbedHistory 返回去除私密推理后的讨论历史
func (s *GameState) ScrubbedHistory() string {
	return ScrubThinking(s.History.String())
}
