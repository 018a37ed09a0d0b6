package game

import (
	"regexp"
	"strings"
)

// Verb 决策动词
type Verb string

const (
	VerbKill    Verb = "kill"
	VerbProtect Verb = "protect"
	VerbVote    Verb = "vote"
	VerbNone    Verb = "none" // 弃权：未解析出有效决策，不是错误
)

// Action 一次已解析的决策。解析失败时Verb为none，
// 原始文本始终保留供复盘审计，绝不静默丢弃
type Action struct {
	Actor  string
	Verb   Verb
	Target string
	Raw    string
}

// Abstained 该决策是否为弃权
func (a Action) Abstained() bool {
	return a.Verb == VerbNone
}

// 各语言的夜晚行动关键词模式（锚定ACTION:关键词，大小写不敏感）
var killPatterns = map[string]*regexp.Regexp{
	LangEnglish: regexp.MustCompile(`(?i)ACTION:\s*Kill\s+(\w+[-\w]*)`),
	LangSpanish: regexp.MustCompile(`(?i)ACCIÓN:\s*Matar\s+(\w+[-\w]*)`),
	LangFrench:  regexp.MustCompile(`(?i)ACTION:\s*Tuer\s+(\w+[-\w]*)`),
	LangKorean:  regexp.MustCompile(`(?i)행동:\s*죽이기\s+(\w+[-\w]*)`),
}

var protectPatterns = map[string]*regexp.Regexp{
	LangEnglish: regexp.MustCompile(`(?i)ACTION:\s*Protect\s+(\w+[-\w]*)`),
	LangSpanish: regexp.MustCompile(`(?i)ACCIÓN:\s*Proteger\s+(\w+[-\w]*)`),
	LangFrench:  regexp.MustCompile(`(?i)ACTION:\s*Protéger\s+(\w+[-\w]*)`),
	LangKorean:  regexp.MustCompile(`(?i)행동:\s*보호하기\s+(\w+[-\w]*)`),
}

// 投票模式。目标token允许模型名常见的点、斜杠、连字符
var votePatterns = map[string]*regexp.Regexp{
	LangEnglish: regexp.MustCompile(`(?i)VOTE:\s*([\w./-]+(?:[-:]\w+)*)`),
	LangSpanish: regexp.MustCompile(`(?i)VOTO:\s*([\w./-]+(?:[-:]\w+)*)`),
	LangFrench:  regexp.MustCompile(`(?i)VOTE:\s*([\w./-]+(?:[-:]\w+)*)`),
	LangKorean:  regexp.MustCompile(`(?i)투표:\s*([\w./-]+(?:[-:]\w+)*)`),
}

// 确认投票的同意模式，未匹配到一律视为反对
var agreePatterns = map[string]*regexp.Regexp{
	LangEnglish: regexp.MustCompile(`(?i)\b(agree|yes|confirm|approve)\b`),
	LangSpanish: regexp.MustCompile(`(?i)\b(acuerdo|sí|confirmo|apruebo)\b`),
	LangFrench:  regexp.MustCompile(`(?i)\b(d'accord|oui|confirme|approuve)\b`),
	LangKorean:  regexp.MustCompile(`(동의|예|확인|승인)`),
}

// ResolveTarget 在存活名册中按名模糊匹配目标。
// 优先精确匹配（不区分大小写），其次双向包含匹配，按名册顺序取第一个。
// excludeMafia为true时跳过黑手党成员（黑手党击杀不能指向队友）
func ResolveTarget(targetName string, roster []*Player, excludeMafia bool) *Player {
	if targetName == "" {
		return nil
	}
	lower := strings.ToLower(strings.TrimSpace(targetName))

	// 精确匹配优先
	for _, p := range roster {
		if !p.Alive {
			continue
		}
		if excludeMafia && p.Role == RoleMafia {
			continue
		}
		if strings.ToLower(p.Name) == lower {
			return p
		}
	}

	// 包含匹配兜底，容忍生成文本的格式噪声
	for _, p := range roster {
		if !p.Alive {
			continue
		}
		if excludeMafia && p.Role == RoleMafia {
			continue
		}
		pname := strings.ToLower(p.Name)
		if strings.Contains(pname, lower) || strings.Contains(lower, pname) {
			return p
		}
	}

	return nil
}

// ParseNightAction 从夜晚响应中解析行动。
// 黑手党解析Kill（目标排除黑手党），医生解析Protect，其他角色无夜晚行动。
// 未匹配到关键词或目标不在存活名册时返回弃权
func ParseNightAction(actor *Player, response, language string, roster []*Player) Action {
	lang := normalizeLanguage(language)
	action := Action{Actor: actor.Name, Verb: VerbNone, Raw: response}

	switch {
	case actor.Role.Capability().CanKill:
		if m := killPatterns[lang].FindStringSubmatch(response); m != nil {
			if target := ResolveTarget(m[1], roster, true); target != nil {
				action.Verb = VerbKill
				action.Target = target.Name
			}
		}
	case actor.Role.Capability().CanProtect:
		if m := protectPatterns[lang].FindStringSubmatch(response); m != nil {
			if target := ResolveTarget(m[1], roster, false); target != nil {
				action.Verb = VerbProtect
				action.Target = target.Name
			}
		}
	}

	return action
}

// ParseVote 从白天响应中解析投票，未匹配到有效目标时返回弃权
func ParseVote(actor *Player, response, language string, roster []*Player) Action {
	lang := normalizeLanguage(language)
	action := Action{Actor: actor.Name, Verb: VerbNone, Raw: response}

	if m := votePatterns[lang].FindStringSubmatch(response); m != nil {
		if target := ResolveTarget(m[1], roster, false); target != nil {
			action.Verb = VerbVote
			action.Target = target.Name
		}
	}

	return action
}

// ParseConfirmation 解析确认投票，匹配到同意关键词返回true，否则视为反对
func ParseConfirmation(response, language string) bool {
	lang := normalizeLanguage(language)
	return agreePatterns[lang].MatchString(strings.ToLower(response))
}
