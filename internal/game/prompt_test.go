package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestState() *GameState {
	return &GameState{
		GameID:      "test-game",
		RoundNumber: 1,
		Phase:       PhaseNight,
		Language:    LangEnglish,
		Players:     testRoster(),
	}
}

func TestBuildRolePrompt_MafiaSeesTeammates(t *testing.T) {
	st := newTestState()
	b := NewPromptBuilder(LangEnglish, 400)

	prompt := b.BuildRolePrompt(st.Players[0], st, "night instruction")
	assert.Contains(t, prompt, "gpt-4o-mini", "黑手党提示词包含队友身份")
	assert.Contains(t, prompt, "Mafia member")
	assert.Contains(t, prompt, "ACTION: Kill")
}

func TestBuildRolePrompt_SoleMafia(t *testing.T) {
	st := newTestState()
	st.Players[1].Alive = false
	b := NewPromptBuilder(LangEnglish, 400)

	prompt := b.BuildRolePrompt(st.Players[0], st, "night instruction")
	assert.Contains(t, prompt, "only Mafia left")
}

func TestBuildRolePrompt_NoRoleLeakage(t *testing.T) {
	st := newTestState()
	st.AppendHistory("gemini-flash", "I am innocent")
	b := NewPromptBuilder(LangEnglish, 400)

	// 村民和医生的提示词不包含任何其他玩家的角色
	for _, p := range []*Player{st.Players[2], st.Players[3]} {
		prompt := b.BuildRolePrompt(p, st, "day instruction")
		for _, other := range st.Players {
			if other == p {
				continue
			}
			assert.NotContains(t, prompt, other.Name+" (Mafia)")
			assert.NotContains(t, prompt, other.Name+": Mafia")
		}
		// 但包含全部存活玩家名
		for _, other := range st.AlivePlayers() {
			assert.Contains(t, prompt, other.Name)
		}
	}
}

func TestBuildRolePrompt_OnlyAlivePlayersListed(t *testing.T) {
	st := newTestState()
	st.Players[4].Alive = false
	b := NewPromptBuilder(LangEnglish, 400)

	prompt := b.BuildRolePrompt(st.Players[3], st, "instruction")
	assert.Contains(t, prompt, "All players: gemini-flash, gpt-4o-mini, claude-haiku, llama-70b")
	assert.NotContains(t, prompt, "All players: gemini-flash, gpt-4o-mini, claude-haiku, llama-70b, mistral-large")
}

func TestBuildRolePrompt_Languages(t *testing.T) {
	st := newTestState()
	st.Language = LangKorean
	b := NewPromptBuilder(LangKorean, 400)

	prompt := b.BuildRolePrompt(st.Players[3], st, "instruction")
	assert.Contains(t, prompt, "게임 규칙")
	assert.Contains(t, prompt, "투표:")

	// 不支持的语言回退到英语
	fallback := NewPromptBuilder("Esperanto", 400)
	prompt = fallback.BuildRolePrompt(st.Players[3], st, "instruction")
	assert.Contains(t, prompt, "GAME RULES")
}

func TestBuildConfirmationPrompt(t *testing.T) {
	st := newTestState()
	b := NewPromptBuilder(LangEnglish, 400)

	prompt := b.BuildConfirmationPrompt(st.Players[3], "gemini-flash", st)
	assert.Contains(t, prompt, "voted to eliminate gemini-flash")
	assert.Contains(t, prompt, `"AGREE" or "DISAGREE"`)
}

func TestDayInstruction(t *testing.T) {
	b := NewPromptBuilder(LangEnglish, 400)
	st := newTestState()

	discussion := b.DayInstruction(st.Players[3], 2, false)
	assert.Contains(t, discussion, "DO NOT VOTE YET")

	voting := b.DayInstruction(st.Players[3], 2, true)
	assert.Contains(t, voting, "VOTING PHASE")
	assert.Contains(t, voting, "VOTE:")

	// 黑手党和医生各自有白天提醒
	mafiaVoting := b.DayInstruction(st.Players[0], 2, true)
	assert.Contains(t, mafiaVoting, "Do NOT use 'ACTION: Kill'")

	doctorVoting := b.DayInstruction(st.Players[2], 2, true)
	assert.Contains(t, doctorVoting, "Do NOT use your protection ability")
}
