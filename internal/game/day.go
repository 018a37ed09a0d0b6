package game

// 平票策略
const (
	TieBreakLowestIndex   = "lowest_index"   // 平票取名册中下标最小者
	TieBreakNoElimination = "no_elimination" // 平票本回合不提名
)

// VoteTally 白天投票统计结果
type VoteTally struct {
	Counts    map[string]int      // 目标 -> 得票数
	Details   map[string][]string // 目标 -> 投票人列表
	Candidate string              // 相对多数的提名候选人，空表示无提名
	TopVotes  int                 // 候选人得票数
}

// TallyVotes 统计白天投票并选出提名候选人。与投票收集顺序无关：
// 取得票最多者；平票时按tieBreak策略裁决，lowest_index取名册顺序最靠前者，
// no_elimination则本回合无人被提名。弃权票不计入
func TallyVotes(roster []*Player, votes []Action, tieBreak string) VoteTally {
	tally := VoteTally{
		Counts:  make(map[string]int),
		Details: make(map[string][]string),
	}

	for _, v := range votes {
		if v.Verb != VerbVote || v.Target == "" {
			continue
		}
		tally.Counts[v.Target]++
		tally.Details[v.Target] = append(tally.Details[v.Target], v.Actor)
	}

	// 按名册顺序扫描，保证平票裁决确定可复现
	maxVotes := 0
	tied := false
	var candidate *Player
	for _, p := range roster {
		votes := tally.Counts[p.Name]
		if votes > maxVotes {
			maxVotes = votes
			candidate = p
			tied = false
		} else if votes == maxVotes && votes > 0 {
			tied = true
		}
	}

	if candidate == nil {
		return tally
	}
	if tied && tieBreak == TieBreakNoElimination {
		return tally
	}

	tally.Candidate = candidate.Name
	tally.TopVotes = maxVotes
	return tally
}

// ConfirmElimination 判定确认投票是否通过：
// 同意票严格超过存活投票人数的一半（过半数，非相对多数）
func ConfirmElimination(agreeCount, aliveVoters int) bool {
	return float64(agreeCount) > float64(aliveVoters)/2
}
