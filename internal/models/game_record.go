package models

import (
	"database/sql/driver"
	"encoding/json"
)

// 游戏结果取值
const (
	WinnerMafia     = "Mafia"
	WinnerVillagers = "Villagers"
	WinnerDraw      = "Draw" // 达到最大回合数仍未分出胜负
)

// GameRecord 对局记录表（一局完整的游戏，含全部回合的复盘数据）
type GameRecord struct {
	BaseModel
	GameID           string         `gorm:"uniqueIndex;size:64;not null" json:"game_id"`
	Timestamp        int64          `gorm:"index;not null" json:"timestamp"` // Unix秒
	GameType         string         `gorm:"size:50" json:"game_type"`
	Language         string         `gorm:"size:20" json:"language"`
	ParticipantCount int            `json:"participant_count"`
	Winner           string         `gorm:"size:20;index" json:"winner"` // Mafia, Villagers, Draw
	Participants     ParticipantMap `gorm:"type:json" json:"participants"`
	Rounds           RoundList      `gorm:"type:json" json:"rounds"`
	CriticReview     JSONData       `gorm:"type:json" json:"critic_review,omitempty"`
}

// TableName 指定表名
func (GameRecord) TableName() string {
	return "game_records"
}

// ParticipantInfo 参赛者信息（规范化后的统一结构）
type ParticipantInfo struct {
	Role      string `json:"role"`
	ModelName string `json:"model_name"`
}

// ParticipantMap 玩家名到参赛者信息的映射。
// 读取时兼容两种历史格式：值为纯角色字符串，或值为结构化对象
// （对象的模型名字段可能叫 model_name 或 player_name）。
type ParticipantMap map[string]ParticipantInfo

// UnmarshalJSON 实现兼容旧格式的反序列化
func (m *ParticipantMap) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	result := make(ParticipantMap, len(raw))
	for name, val := range raw {
		// 新格式：结构化对象
		var obj struct {
			Role       string `json:"role"`
			ModelName  string `json:"model_name"`
			PlayerName string `json:"player_name"`
		}
		if err := json.Unmarshal(val, &obj); err == nil && obj.Role != "" {
			info := ParticipantInfo{Role: obj.Role, ModelName: obj.ModelName}
			if info.ModelName == "" {
				info.ModelName = obj.PlayerName
			}
			if info.ModelName == "" {
				info.ModelName = name
			}
			result[name] = info
			continue
		}

		// 旧格式：值是角色字符串
		var role string
		if err := json.Unmarshal(val, &role); err != nil {
			return err
		}
		result[name] = ParticipantInfo{Role: role, ModelName: name}
	}

	*m = result
	return nil
}

// Value 实现 driver.Valuer 接口
func (m ParticipantMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(map[string]ParticipantInfo(m))
}

// Scan 实现 sql.Scanner 接口
func (m *ParticipantMap) Scan(value interface{}) error {
	if value == nil {
		*m = make(ParticipantMap)
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		strVal, ok := value.(string)
		if !ok {
			return nil
		}
		bytes = []byte(strVal)
	}
	return json.Unmarshal(bytes, m)
}

// Message 一条发言（含夜晚私密发言，仅用于复盘，不会进入其他玩家的提示词）
type Message struct {
	Speaker string `json:"speaker"`
	Content string `json:"content"`
	Phase   string `json:"phase"` // night, day_discussion, day_voting, day
	Role    string `json:"role,omitempty"`
	Type    string `json:"type,omitempty"` // last_words 等特殊消息
}

// ActionRecord 一次已解析的决策。解析失败时verb为none，原始文本保留供审计
type ActionRecord struct {
	Actor  string `json:"actor"`
	Verb   string `json:"verb"` // kill, protect, vote, none
	Target string `json:"target,omitempty"`
	Raw    string `json:"raw,omitempty"`
}

// ConfirmationVotes 确认投票详情
type ConfirmationVotes struct {
	Agree    []string `json:"agree"`
	Disagree []string `json:"disagree"`
}

// RoundRecord 单回合记录，回合结束后不再修改
type RoundRecord struct {
	RoundNumber int            `json:"round_number"`
	Messages    []Message      `json:"messages"`
	Actions     []ActionRecord `json:"actions"`

	// 夜晚结果
	TargetedByMafia   string `json:"targeted_by_mafia,omitempty"`
	ProtectedByDoctor string `json:"protected_by_doctor,omitempty"`
	NightKilled       string `json:"night_killed,omitempty"`

	// 白天投票结果
	VoteCounts        map[string]int      `json:"vote_counts,omitempty"`
	VoteDetails       map[string][]string `json:"vote_details,omitempty"`
	Candidate         string              `json:"candidate,omitempty"`
	ConfirmationVotes *ConfirmationVotes  `json:"confirmation_votes,omitempty"`
	EliminatedByVote  string              `json:"eliminated_by_vote,omitempty"`
	LastWords         string              `json:"last_words,omitempty"`

	Eliminations []string `json:"eliminations"`
	Outcome      string   `json:"outcome"`
}

// RoundList 回合记录列表
type RoundList []RoundRecord

// Value 实现 driver.Valuer 接口
func (r RoundList) Value() (driver.Value, error) {
	if r == nil {
		return nil, nil
	}
	return json.Marshal([]RoundRecord(r))
}

// Scan 实现 sql.Scanner 接口
func (r *RoundList) Scan(value interface{}) error {
	if value == nil {
		*r = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		strVal, ok := value.(string)
		if !ok {
			return nil
		}
		bytes = []byte(strVal)
	}
	return json.Unmarshal(bytes, r)
}

// GameSummary 对局摘要（列表接口返回，不含回合详情）
type GameSummary struct {
	GameID           string         `json:"game_id"`
	Timestamp        int64          `json:"timestamp"`
	GameType         string         `json:"game_type"`
	Language         string         `json:"language"`
	ParticipantCount int            `json:"participant_count"`
	Winner           string         `json:"winner"`
	Participants     ParticipantMap `json:"participants"`
	RoundCount       int            `json:"round_count"`
}

// Summary 生成对局摘要
func (g *GameRecord) Summary() GameSummary {
	return GameSummary{
		GameID:           g.GameID,
		Timestamp:        g.Timestamp,
		GameType:         g.GameType,
		Language:         g.Language,
		ParticipantCount: g.ParticipantCount,
		Winner:           g.Winner,
		Participants:     g.Participants,
		RoundCount:       len(g.Rounds),
	}
}
