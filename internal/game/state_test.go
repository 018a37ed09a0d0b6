package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScrubThinking(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "闭合标签",
			input: "Hello <think>secret plan</think> world",
			want:  "Hello  world",
		},
		{
			name:  "大写标签",
			input: "Hello <THINK>secret</THINK> world",
			want:  "Hello  world",
		},
		{
			name:  "跨行内容",
			input: "before <think>line1\nline2\nline3</think> after",
			want:  "before  after",
		},
		{
			name:  "未闭合标签删到结尾",
			input: "visible part <think>never closed and keeps going",
			want:  "visible part",
		},
		{
			name:  "无标签原样保留",
			input: "just a normal message",
			want:  "just a normal message",
		},
		{
			name:  "多个标签",
			input: "a <think>one</think> b <think>two</think> c",
			want:  "a  b  c",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScrubThinking(tt.input))
		})
	}
}

func TestGameState_AliveHelpers(t *testing.T) {
	st := &GameState{Players: testRoster()}

	assert.Equal(t, 5, st.AliveCount())
	assert.Equal(t, 2, st.AliveByRole(RoleMafia))
	assert.Equal(t, 1, st.AliveByRole(RoleDoctor))

	st.Players[0].Alive = false
	assert.Equal(t, 4, st.AliveCount())
	assert.Equal(t, 1, st.AliveByRole(RoleMafia))
	assert.Len(t, st.AlivePlayers(), 4)

	// 死亡玩家仍在名册中
	assert.Len(t, st.Players, 5)
	assert.NotNil(t, st.FindPlayer("gemini-flash"))
}

func TestGameState_History(t *testing.T) {
	st := &GameState{Players: testRoster()}

	st.AppendHistory("llama-70b", "I think <think>hidden</think>gemini is mafia")
	st.AppendHistory("claude-haiku", "agreed")

	scrubbed := st.ScrubbedHistory()
	assert.NotContains(t, scrubbed, "hidden")
	assert.Contains(t, scrubbed, "llama-70b: I think")
	assert.Contains(t, scrubbed, "claude-haiku: agreed")
}
