package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateWin(t *testing.T) {
	tests := []struct {
		name          string
		aliveMafia    int
		aliveNonMafia int
		want          Outcome
	}{
		{"黑手党全灭村民胜", 0, 5, OutcomeVillagersWin},
		{"双方全灭也算村民胜", 0, 0, OutcomeVillagersWin},
		{"黑手党人数相等获胜", 2, 2, OutcomeMafiaWin},
		{"黑手党占多数获胜", 3, 2, OutcomeMafiaWin},
		{"黑手党一对一获胜", 1, 1, OutcomeMafiaWin},
		{"村民占多数继续", 1, 4, OutcomeOngoing},
		{"两黑手党对三村民继续", 2, 3, OutcomeOngoing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateWin(tt.aliveMafia, tt.aliveNonMafia)
			assert.Equal(t, tt.want, got)
			// 纯函数：重复调用结果一致
			assert.Equal(t, got, EvaluateWin(tt.aliveMafia, tt.aliveNonMafia))
		})
	}
}
