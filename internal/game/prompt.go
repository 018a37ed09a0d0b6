package game

import (
	"fmt"
	"strings"
)

// 支持的提示词语言，缺省回退到英语
const (
	LangEnglish = "English"
	LangSpanish = "Spanish"
	LangFrench  = "French"
	LangKorean  = "Korean"
)

// normalizeLanguage 不支持的语言回退到英语
func normalizeLanguage(lang string) string {
	switch lang {
	case LangEnglish, LangSpanish, LangFrench, LangKorean:
		return lang
	default:
		return LangEnglish
	}
}

// 各语言的游戏规则说明
var gameRules = map[string]string{
	LangEnglish: `
GAME RULES:
- The game alternates between night and day phases
- During night: Mafia members secretly choose a villager to kill, Doctor can protect one player
- During day: All players discuss and vote to eliminate one suspected Mafia member
- Mafia wins when they equal or outnumber the villagers
- Villagers win when all Mafia members are eliminated
`,
	LangSpanish: `
REGLAS DEL JUEGO:
- El juego alterna entre fases de noche y día
- Durante la noche: Los miembros de la Mafia eligen secretamente a un aldeano para matar, el Doctor puede proteger a un jugador
- Durante el día: Todos los jugadores discuten y votan para eliminar a un sospechoso de ser miembro de la Mafia
- La Mafia gana cuando iguala o supera en número a los aldeanos
- Los aldeanos ganan cuando todos los miembros de la Mafia son eliminados
`,
	LangFrench: `
RÈGLES DU JEU:
- Le jeu alterne entre les phases de nuit et de jour
- Pendant la nuit: Les membres de la Mafia choisissent secrètement un villageois à tuer, le Docteur peut protéger un joueur
- Pendant le jour: Tous les joueurs discutent et votent pour éliminer un membre suspecté de la Mafia
- La Mafia gagne quand elle égale ou dépasse en nombre les villageois
- Les villageois gagnent quand tous les membres de la Mafia sont éliminés
`,
	LangKorean: `
게임 규칙:
- 게임은 밤과 낮 단계를 번갈아 진행합니다
- 밤 동안: 마피아 멤버들은 비밀리에 죽일 마을 사람을 선택하고, 의사는 한 플레이어를 보호할 수 있습니다
- 낮 동안: 모든 플레이어가 토론하고 마피아로 의심되는 한 명을 제거하기 위해 투표합니다
- 마피아는 마을 사람과 같거나 더 많아지면 승리합니다
- 마을 사람들은 모든 마피아 멤버가 제거되면 승리합니다
`,
}

// 各语言的私密推理标签说明，%d为输出token上限
var thinkingTags = map[string]string{
	LangEnglish: "IMPORTANT: You can use <think>your private thoughts here</think> tags to reason privately. \nOther players will NOT see anything inside these tags. Use this to plan your strategy.\nYour response is limited to %d tokens maximum. Be concise and focused.",
	LangSpanish: "IMPORTANTE: Puedes usar etiquetas <think>tus pensamientos privados aquí</think> para razonar en privado.\nLos otros jugadores NO verán nada dentro de estas etiquetas. Úsalas para planificar tu estrategia.\nTu respuesta está limitada a un máximo de %d tokens. Sé conciso y enfocado.",
	LangFrench:  "IMPORTANT: Vous pouvez utiliser les balises <think>vos pensées privées ici</think> pour réfléchir en privé.\nLes autres joueurs ne verront rien à l'intérieur de ces balises. Utilisez-les pour planifier votre stratégie.\nVotre réponse est limitée à %d tokens maximum. Soyez concis et concentré.",
	LangKorean:  "IMPORTANT: 당신은 <think>당신의 개인적인 생각을 여기에 적으세요</think> 태그를 사용하여 개인적으로 생각할 수 있습니다.\n다른 플레이어는 이 태그 안에 있는 것을 볼 수 없습니다. 이를 사용하여 전략을 계획하세요.\n당신의 응답은 최대 %d 토큰으로 제한됩니다. 간결하고 집중적으로 작성하세요.",
}

// 角色提示词模板。占位符按顺序：玩家名、游戏规则、(黑手党队友)、玩家列表、局面描述、思考标签说明、讨论历史
var mafiaTemplates = map[string]string{
	LangEnglish: `
You are %s, playing a Mafia game as a Mafia member. Your goal is to eliminate the villagers.

%s

Other Mafia members: %s
All players: %s
Current game state: %s

%s

During night phase, you must kill a non-Mafia player. Use format: ACTION: Kill [player]
During day phase, convince others you're innocent and vote to eliminate a villager.
Previous discussion: %s

Your response:
`,
	LangSpanish: `
Eres %s, jugando un juego de Mafia como miembro de la Mafia. Tu objetivo es eliminar a los aldeanos.

%s

Otros miembros de la Mafia: %s
Todos los jugadores: %s
Estado actual del juego: %s

%s

Durante la fase nocturna, debes matar a un jugador que no sea de la Mafia. Usa el formato: ACCIÓN: Matar [jugador]
Durante la fase diurna, convence a los demás de que eres inocente y vota para eliminar a un aldeano.
Discusión previa: %s

Tu respuesta:
`,
	LangFrench: `
Vous êtes %s, jouant à un jeu de Mafia en tant que membre de la Mafia. Votre objectif est d'éliminer les villageois.

%s

Autres membres de la Mafia: %s
Tous les joueurs: %s
État actuel du jeu: %s

%s

Pendant la phase de nuit, vous devez tuer un joueur qui n'est pas de la Mafia. Utilisez le format: ACTION: Tuer [joueur]
Pendant la phase de jour, convainquez les autres que vous êtes innocent et votez pour éliminer un villageois.
Discussion précédente: %s

Votre réponse:
`,
	LangKorean: `
당신은 %s으로, 마피아 멤버로서 마피아 게임을 하고 있습니다. 당신의 목표는 마을 사람들을 제거하는 것입니다.

%s

다른 마피아 멤버: %s
모든 플레이어: %s
현재 게임 상태: %s

%s

밤 단계에서는 마피아가 아닌 플레이어를 죽여야 합니다. 형식: 행동: 죽이기 [플레이어]
낮 단계에서는 다른 사람들에게 당신이 무고하다고 설득하고 마을 사람을 제거하기 위해 투표하세요.
이전 토론: %s

당신의 응답:
`,
}

var doctorTemplates = map[string]string{
	LangEnglish: `
You are %s, playing a Mafia game as the Doctor. Your goal is to help villagers by protecting players from Mafia kills.

%s

All players: %s
Current game state: %s

%s

During night phase, you can protect one player. Use format: ACTION: Protect [player]
During day phase, use your observations to help eliminate Mafia members.
Previous discussion: %s

Your response:
`,
	LangSpanish: `
Eres %s, jugando un juego de Mafia como el Doctor. Tu objetivo es ayudar a los aldeanos protegiendo a los jugadores de los asesinatos de la Mafia.

%s

Todos los jugadores: %s
Estado actual del juego: %s

%s

Durante la fase nocturna, puedes proteger a un jugador. Usa el formato: ACCIÓN: Proteger [jugador]
Durante la fase diurna, usa tus observaciones para ayudar a eliminar a los miembros de la Mafia.
Discusión previa: %s

Tu respuesta:
`,
	LangFrench: `
Vous êtes %s, jouant à un jeu de Mafia en tant que Docteur. Votre objectif est d'aider les villageois en protégeant les joueurs des meurtres de la Mafia.

%s

Tous les joueurs: %s
État actuel du jeu: %s

%s

Pendant la phase de nuit, vous pouvez protéger un joueur. Utilisez le format: ACTION: Protéger [joueur]
Pendant la phase de jour, utilisez vos observations pour aider à éliminer les membres de la Mafia.
Discussion précédente: %s

Votre réponse:
`,
	LangKorean: `
당신은 %s으로, 의사로서 마피아 게임을 하고 있습니다. 당신의 목표는 마피아의 살인으로부터 플레이어를 보호하여 마을 사람들을 돕는 것입니다.

%s

모든 플레이어: %s
현재 게임 상태: %s

%s

밤 단계에서는 한 플레이어를 보호할 수 있습니다. 형식: 행동: 보호하기 [플레이어]
낮 단계에서는 당신의 관찰을 사용하여 마피아 멤버를 제거하는 데 도움을 주세요.
이전 토론: %s

당신의 응답:
`,
}

var villagerTemplates = map[string]string{
	LangEnglish: `
You are %s, playing a Mafia game as a Villager. Your goal is to identify and eliminate the Mafia.

%s

All players: %s
Current game state: %s

%s

During day phase, discuss with other villagers to identify the Mafia members.
End your message with your vote. Use format: VOTE: [player]
Previous discussion: %s

Your response:
`,
	LangSpanish: `
Eres %s, jugando un juego de Mafia como Aldeano. Tu objetivo es identificar y eliminar a la Mafia.

%s

Todos los jugadores: %s
Estado actual del juego: %s

%s

Durante la fase diurna, discute con otros aldeanos para identificar a los miembros de la Mafia.
Termina tu mensaje con tu voto. Usa el formato: VOTO: [jugador]
Discusión previa: %s

Tu respuesta:
`,
	LangFrench: `
Vous êtes %s, jouant à un jeu de Mafia en tant que Villageois. Votre objectif est d'identifier et d'éliminer la Mafia.

%s

Tous les joueurs: %s
État actuel du jeu: %s

%s

Pendant la phase de jour, discutez avec les autres villageois pour identifier les membres de la Mafia.
Terminez votre message par votre vote. Utilisez le format: VOTE: [joueur]
Discussion précédente: %s

Votre réponse:
`,
	LangKorean: `
당신은 %s으로, 마을 사람으로서 마피아 게임을 하고 있습니다. 당신의 목표는 마피아를 식별하고 제거하는 것입니다.

%s

모든 플레이어: %s
현재 게임 상태: %s

%s

낮 단계에서는 다른 마을 사람들과 토론하여 마피아 멤버를 식별하세요.
메시지 끝에 투표를 하세요. 형식: 투표: [플레이어]
이전 토론: %s

당신의 응답:
`,
}

// 没有其他存活队友时的占位文本
var soleMafiaLabels = map[string]string{
	LangEnglish: "None (you are the only Mafia left)",
	LangSpanish: "Ninguno (eres el único miembro de la Mafia que queda)",
	LangFrench:  "Aucun (vous êtes le seul membre de la Mafia restant)",
	LangKorean:  "없음 (당신이 유일하게 남은 마피아입니다)",
}

// 确认投票说明，%s为候选人
var confirmationExplanations = map[string]string{
	LangEnglish: `
ABOUT CONFIRMATION VOTES:
- This is the final chance to reconsider the town's decision
- If the majority agrees, %s will be eliminated
- If the majority disagrees, no one will be eliminated this round
`,
	LangSpanish: `
SOBRE LOS VOTOS DE CONFIRMACIÓN:
- Esta es la última oportunidad para reconsiderar la decisión del pueblo
- Si la mayoría está de acuerdo, %s será eliminado
- Si la mayoría está en desacuerdo, nadie será eliminado en esta ronda
`,
	LangFrench: `
À PROPOS DES VOTES DE CONFIRMATION:
- C'est la dernière chance de reconsidérer la décision de la ville
- Si la majorité est d'accord, %s sera éliminé
- Si la majorité n'est pas d'accord, personne ne sera éliminé ce tour-ci
`,
	LangKorean: `
확인 투표에 대하여:
- 이것은 마을의 결정을 재고할 수 있는 마지막 기회입니다
- 과반수가 동의하면 %s이(가) 제거됩니다
- 과반수가 반대하면 이번 라운드에서는 아무도 제거되지 않습니다
`,
}

// 确认投票提示词模板。占位符：玩家名、候选人、候选人、说明、局面描述、思考标签、候选人
var confirmationTemplates = map[string]string{
	LangEnglish: `
You are %s, playing a Mafia game. The town has voted to eliminate %s.
Before the elimination is carried out, a confirmation vote is needed.

%s

Current game state: %s

%s

Do you agree with eliminating %s?
Respond with either "AGREE" or "DISAGREE" and a brief explanation of your reasoning.

Your response:
`,
	LangSpanish: `
Eres %s, jugando un juego de Mafia. El pueblo ha votado para eliminar a %s.
Antes de que se lleve a cabo la eliminación, se necesita un voto de confirmación.

%s

Estado actual del juego: %s

%s

¿Estás de acuerdo con eliminar a %s?
Responde con "ACUERDO" o "DESACUERDO" y una breve explicación de tu razonamiento.

Tu respuesta:
`,
	LangFrench: `
Vous êtes %s, jouant à un jeu de Mafia. La ville a voté pour éliminer %s.
Avant que l'élimination ne soit effectuée, un vote de confirmation est nécessaire.

%s

État actuel du jeu: %s

%s

Êtes-vous d'accord pour éliminer %s?
Répondez par "D'ACCORD" ou "PAS D'ACCORD" et une brève explication de votre raisonnement.

Votre réponse:
`,
	LangKorean: `
당신은 %s으로, 마피아 게임을 하고 있습니다. 마을은 %s을(를) 제거하기로 투표했습니다.
제거가 실행되기 전에 확인 투표가 필요합니다.

%s

현재 게임 상태: %s

%s

%s을(를) 제거하는 것에 동의하십니까?
"동의" 또는 "반대"로 응답하고 간단한 이유를 설명해 주세요.

당신의 응답:
`,
}

// 医生的夜晚指令
var doctorNightInstructions = map[string]string{
	LangEnglish: "It's night time (Round %d). As the Doctor, you MUST choose exactly one player to protect from the Mafia tonight. You cannot skip this action. End your response with ACTION: Protect [player].",
	LangSpanish: "Es hora de noche (Ronda %d). Como Doctor, DEBES elegir exactamente a un jugador para proteger de la Mafia esta noche. No puedes omitir esta acción. Termina tu respuesta con ACCIÓN: Proteger [jugador].",
	LangFrench:  "C'est la nuit (Tour %d). En tant que Docteur, vous DEVEZ choisir exactement un joueur à protéger de la Mafia ce soir. Vous ne pouvez pas ignorer cette action. Terminez votre réponse par ACTION: Protéger [joueur].",
	LangKorean:  "밤 시간입니다 (라운드 %d). 의사로서, 당신은 오늘 밤 마피아로부터 보호할 플레이어를 정확히 한 명 선택해야 합니다. 이 행동을 건너뛸 수 없습니다. 응답 끝에 행동: 보호하기 [플레이어]를 포함하세요.",
}

// 白天阶段对医生的提醒：不要在白天用保护技能
var doctorDayWarnings = map[string]string{
	LangEnglish: " IMPORTANT: This is the DAY phase. Do NOT use your protection ability now. Only use ACTION: Protect during night phase.",
	LangSpanish: " IMPORTANTE: Esta es la fase DIURNA. NO uses tu habilidad de protección ahora. Solo usa ACCIÓN: Proteger durante la fase nocturna.",
	LangFrench:  " IMPORTANT: C'est la phase de JOUR. N'utilisez PAS votre capacité de protection maintenant. Utilisez ACTION: Protéger uniquement pendant la phase de nuit.",
	LangKorean:  " 중요: 지금은 낮 단계입니다. 지금은 보호 능력을 사용하지 마세요. 행동: 보호하기는 밤 단계에서만 사용하세요.",
}

// 白天阶段对黑手党的提醒：白天只投票，不击杀
var mafiaDayWarnings = map[string]string{
	LangEnglish: " IMPORTANT: This is the DAY phase. Do NOT use 'ACTION: Kill' now. Instead, use 'VOTE: [player]' to vote like other villagers.",
	LangSpanish: " IMPORTANTE: Esta es la fase DIURNA. NO uses 'ACCIÓN: Matar' ahora. En su lugar, usa 'VOTO: [jugador]' para votar como los demás aldeanos.",
	LangFrench:  " IMPORTANT: C'est la phase de JOUR. N'utilisez PAS 'ACTION: Tuer' maintenant. À la place, utilisez 'VOTE: [joueur]' pour voter comme les autres villageois.",
	LangKorean:  " 중요: 지금은 낮 단계입니다. '행동: 죽이기'를 사용하지 마세요. 대신 다른 마을 사람들처럼 '투표: [플레이어]'를 사용하여 투표하세요.",
}

// 投票阶段的强制提醒
var votingReminders = map[string]string{
	LangEnglish: " REMINDER: This is the VOTING PHASE. You MUST end your message with 'VOTE: [player]' to cast your vote.",
	LangSpanish: " RECORDATORIO: Esta es la fase de VOTACIÓN. DEBES terminar tu mensaje con 'VOTO: [jugador]' para emitir tu voto.",
	LangFrench:  " RAPPEL: C'est la phase de VOTE. Vous DEVEZ terminer votre message par 'VOTE: [joueur]' pour exprimer votre vote.",
	LangKorean:  " 알림: 지금은 투표 단계입니다. 반드시 메시지 끝에 '투표: [플레이어]'를 포함하여 투표해야 합니다.",
}

// PromptBuilder 提示词构造器。无副作用，不泄露隐藏信息：
// 非黑手党玩家的提示词绝不包含其他玩家的角色
type PromptBuilder struct {
	Language        string
	MaxOutputTokens int
}

// NewPromptBuilder 创建提示词构造器
func NewPromptBuilder(language string, maxOutputTokens int) *PromptBuilder {
	return &PromptBuilder{
		Language:        normalizeLanguage(language),
		MaxOutputTokens: maxOutputTokens,
	}
}

func (b *PromptBuilder) thinkingTag() string {
	return fmt.Sprintf(thinkingTags[b.Language], b.MaxOutputTokens)
}

// BuildRolePrompt 构造角色提示词：角色说明 + 存活名册 + 去除私密推理的讨论历史 + 阶段指令。
// 只有黑手党能看到队友身份
func (b *PromptBuilder) BuildRolePrompt(p *Player, st *GameState, instruction string) string {
	aliveNames := make([]string, 0, len(st.Players))
	for _, ap := range st.AlivePlayers() {
		aliveNames = append(aliveNames, ap.Name)
	}

	gameState := st.Describe() + " " + instruction
	rules := gameRules[b.Language]
	history := st.ScrubbedHistory()

	switch p.Role {
	case RoleMafia:
		var teammates []string
		for _, m := range st.MafiaMembers() {
			if m != p && m.Alive {
				teammates = append(teammates, m.Name)
			}
		}
		mafiaList := strings.Join(teammates, ", ")
		if mafiaList == "" {
			mafiaList = soleMafiaLabels[b.Language]
		}
		return fmt.Sprintf(mafiaTemplates[b.Language],
			p.Name, rules, mafiaList, strings.Join(aliveNames, ", "),
			gameState, b.thinkingTag(), history)

	case RoleDoctor:
		return fmt.Sprintf(doctorTemplates[b.Language],
			p.Name, rules, strings.Join(aliveNames, ", "),
			gameState, b.thinkingTag(), history)

	default:
		return fmt.Sprintf(villagerTemplates[b.Language],
			p.Name, rules, strings.Join(aliveNames, ", "),
			gameState, b.thinkingTag(), history)
	}
}

// BuildConfirmationPrompt 构造确认投票提示词
func (b *PromptBuilder) BuildConfirmationPrompt(p *Player, candidate string, st *GameState) string {
	explanation := fmt.Sprintf(confirmationExplanations[b.Language], candidate)
	return fmt.Sprintf(confirmationTemplates[b.Language],
		p.Name, candidate, explanation, st.Describe(), b.thinkingTag(), candidate)
}

// NightInstruction 返回夜晚阶段指令
func (b *PromptBuilder) NightInstruction(role Role, round int) string {
	if role == RoleDoctor {
		return fmt.Sprintf(doctorNightInstructions[b.Language], round)
	}
	return fmt.Sprintf("It's night time (Round %d). As the Mafia, you MUST choose exactly one player to kill tonight. You cannot skip this action. End your response with ACTION: Kill [player].", round)
}

// DayInstruction 返回白天阶段指令，discussion和voting两段分开
func (b *PromptBuilder) DayInstruction(p *Player, round int, voting bool) string {
	var instruction string
	if voting {
		instruction = fmt.Sprintf("It's now the VOTING PHASE (Round %d). Make your final arguments and YOU MUST VOTE to eliminate a suspected Mafia member. End your message with VOTE: [player name].", round)
	} else {
		instruction = fmt.Sprintf("It's day time (Round %d). Discuss with other players about who might be Mafia. This is the DISCUSSION PHASE ONLY - DO NOT VOTE YET. You will vote in the next round.", round)
	}

	switch p.Role {
	case RoleDoctor:
		instruction += doctorDayWarnings[b.Language]
	case RoleMafia:
		instruction += mafiaDayWarnings[b.Language]
	}

	if voting {
		instruction += votingReminders[b.Language]
	}

	return instruction
}

// LastWordsInstruction 返回遗言指令
func (b *PromptBuilder) LastWordsInstruction(voteCount int) string {
	return fmt.Sprintf("You have been voted out with %d votes and will be eliminated. Share your final thoughts before leaving the game.", voteCount)
}
