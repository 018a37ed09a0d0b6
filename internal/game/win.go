package game

// Outcome 胜负判定结果
type Outcome string

const (
	OutcomeOngoing      Outcome = "ongoing"
	OutcomeMafiaWin     Outcome = "mafia_win"
	OutcomeVillagersWin Outcome = "villagers_win"
)

// EvaluateWin 纯函数的胜负判定，只依赖存活角色计数：
//   - 黑手党全灭 -> 村民胜
//   - 存活黑手党人数不少于其余存活玩家且大于零 -> 黑手党胜
//   - 其余情况继续
//
// 在每次夜晚/白天结算完成之后调用，绝不在结算中途调用
func EvaluateWin(aliveMafia, aliveNonMafia int) Outcome {
	if aliveMafia == 0 {
		return OutcomeVillagersWin
	}
	if aliveMafia >= aliveNonMafia {
		return OutcomeMafiaWin
	}
	return OutcomeOngoing
}
