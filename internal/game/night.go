package game

// NightOutcome 夜晚结算结果
type NightOutcome struct {
	Targeted  string // 黑手党最终锁定的目标（可能被保护）
	Protected string // 医生保护的玩家
	Killed    string // 实际死亡的玩家，空表示无人死亡
}

// ResolveNight 结算夜晚行动。纯粹基于已解析的决策，与收集顺序无关：
//   - 多名黑手党目标不同时按多数决，平票取名册中下标最小的目标
//   - 医生保护与击杀目标相同则击杀无效
//   - 无存活黑手党或无有效目标则无人死亡
//
// 被击杀玩家的存活标志在结算完成后翻转，胜负判定在其后进行
func ResolveNight(roster []*Player, kills []Action, protects []Action) NightOutcome {
	var outcome NightOutcome

	// 按目标统计黑手党的击杀票
	counts := make(map[string]int)
	for _, k := range kills {
		if k.Verb == VerbKill && k.Target != "" {
			counts[k.Target]++
		}
	}

	// 多数决，平票按名册顺序取最小下标
	maxVotes := 0
	var killTarget *Player
	for _, p := range roster {
		if votes := counts[p.Name]; votes > maxVotes {
			maxVotes = votes
			killTarget = p
		}
	}
	if killTarget != nil {
		outcome.Targeted = killTarget.Name
	}

	// 医生保护（通常只有一名医生，配置多名时全部生效）
	for _, pr := range protects {
		if pr.Verb != VerbProtect || pr.Target == "" {
			continue
		}
		for _, p := range roster {
			if p.Name == pr.Target {
				p.Protected = true
				if outcome.Protected == "" {
					outcome.Protected = p.Name
				}
				break
			}
		}
	}

	// 保护抵消击杀
	if killTarget != nil && !killTarget.Protected {
		killTarget.Alive = false
		outcome.Killed = killTarget.Name
	}

	return outcome
}
