package game

// Role 玩家角色（固定枚举，整局不变）
type Role string

const (
	RoleMafia    Role = "Mafia"
	RoleVillager Role = "Villager"
	RoleDoctor   Role = "Doctor"
)

// Capability 角色能力表。结算器按能力分派，不按具体类型分派
type Capability struct {
	CanKill    bool // 夜晚可发起击杀
	CanProtect bool // 夜晚可保护一名玩家
	CanVote    bool // 白天可参与投票
}

var roleCapabilities = map[Role]Capability{
	RoleMafia:    {CanKill: true, CanProtect: false, CanVote: true},
	RoleDoctor:   {CanKill: false, CanProtect: true, CanVote: true},
	RoleVillager: {CanKill: false, CanProtect: false, CanVote: true},
}

// Capability 返回角色的能力表
func (r Role) Capability() Capability {
	return roleCapabilities[r]
}

// Valid 检查角色是否合法
func (r Role) Valid() bool {
	_, ok := roleCapabilities[r]
	return ok
}

// String 返回角色显示名
func (r Role) String() string {
	return string(r)
}
