package game

import "strings"

// Player 对局中的一名玩家。模型名对其他玩家隐藏，对局中只使用可见玩家名
type Player struct {
	Name      string // 对局中可见的玩家名
	ModelName string // 背后的LLM模型标识
	Role      Role
	Alive     bool
	Protected bool // 本回合是否被医生保护
}

// NewPlayer 创建玩家，玩家名取模型标识的最后一段
func NewPlayer(modelName string, role Role) *Player {
	name := modelName
	if idx := strings.LastIndex(modelName, "/"); idx >= 0 {
		name = modelName[idx+1:]
	}
	return &Player{
		Name:      name,
		ModelName: modelName,
		Role:      role,
		Alive:     true,
	}
}

// String 返回玩家的复盘用描述
func (p *Player) String() string {
	return p.Name + " (" + string(p.Role) + ") [Model: " + p.ModelName + "]"
}
