package game

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/guzus/llm-mafia-game/internal/config"
	apperrors "github.com/guzus/llm-mafia-game/internal/errors"
	"github.com/guzus/llm-mafia-game/internal/logger"
	"github.com/guzus/llm-mafia-game/internal/models"
)

// Invoker 模型调用边界。任何错误、超时或空响应
// 都被引擎降级为该玩家本回合的弃权，绝不中断对局
type Invoker interface {
	Invoke(ctx context.Context, model, prompt string) (string, error)
}

// Engine 单局游戏的状态机。独占持有GameState，
// 每局一个实例，多局并行时互不共享可变状态
type Engine struct {
	cfg     config.GameConfig
	invoker Invoker
	prompts *PromptBuilder
	rng     *rand.Rand
	state   *GameState
	log     *zap.Logger
}

// NewEngine 创建游戏引擎。配置显式传入，不读取任何全局状态。
// maxOutputTokens进入提示词中的输出长度说明，0表示使用默认值
func NewEngine(cfg config.GameConfig, invoker Invoker, maxOutputTokens int) *Engine {
	if maxOutputTokens <= 0 {
		maxOutputTokens = 400
	}

	var src rand.Source
	if cfg.RandomSeed != 0 {
		src = rand.NewSource(cfg.RandomSeed)
	} else {
		src = rand.NewSource(time.Now().UnixNano())
	}

	return &Engine{
		cfg:     cfg,
		invoker: invoker,
		prompts: NewPromptBuilder(cfg.Language, maxOutputTokens),
		rng:     rand.New(src),
		log:     logger.GetModuleLogger("game"),
	}
}

// State 返回当前对局状态（测试与观察用）
func (e *Engine) State() *GameState {
	return e.state
}

// Setup 校验配置并分配角色。任何配置错误都在开局前返回，不进入回合循环
func (e *Engine) Setup() error {
	if e.cfg.MafiaCount < 1 {
		return apperrors.Newf(apperrors.ErrInvalidRoleCounts, "黑手党数量必须至少为1, 当前%d", e.cfg.MafiaCount)
	}
	if e.cfg.DoctorCount < 0 {
		return apperrors.Newf(apperrors.ErrInvalidRoleCounts, "医生数量不能为负, 当前%d", e.cfg.DoctorCount)
	}
	if e.cfg.PlayersPerGame < e.cfg.MafiaCount+e.cfg.DoctorCount+1 {
		return apperrors.Newf(apperrors.ErrInvalidRoleCounts,
			"玩家数%d不足以容纳%d黑手党+%d医生", e.cfg.PlayersPerGame, e.cfg.MafiaCount, e.cfg.DoctorCount)
	}
	if len(e.cfg.Models) == 0 {
		return apperrors.New(apperrors.ErrNotEnoughModels, "模型列表为空")
	}
	if e.cfg.UniqueModels && len(e.cfg.Models) < e.cfg.PlayersPerGame {
		return apperrors.Newf(apperrors.ErrNotEnoughModels,
			"需要%d个模型, 只有%d个", e.cfg.PlayersPerGame, len(e.cfg.Models))
	}

	// 抽取本局模型
	selected := make([]string, 0, e.cfg.PlayersPerGame)
	if e.cfg.UniqueModels {
		perm := e.rng.Perm(len(e.cfg.Models))
		for i := 0; i < e.cfg.PlayersPerGame; i++ {
			selected = append(selected, e.cfg.Models[perm[i]])
		}
	} else {
		for i := 0; i < e.cfg.PlayersPerGame; i++ {
			selected = append(selected, e.cfg.Models[e.rng.Intn(len(e.cfg.Models))])
		}
	}

	// 分配角色后洗牌
	roles := make([]Role, 0, e.cfg.PlayersPerGame)
	for i := 0; i < e.cfg.MafiaCount; i++ {
		roles = append(roles, RoleMafia)
	}
	for i := 0; i < e.cfg.DoctorCount; i++ {
		roles = append(roles, RoleDoctor)
	}
	for len(roles) < e.cfg.PlayersPerGame {
		roles = append(roles, RoleVillager)
	}
	e.rng.Shuffle(len(roles), func(i, j int) {
		roles[i], roles[j] = roles[j], roles[i]
	})

	e.state = &GameState{
		GameID:   uuid.NewString(),
		Phase:    PhaseSetup,
		Language: normalizeLanguage(e.cfg.Language),
	}

	// 同一模型出现多次时追加序号保证玩家名唯一
	seen := make(map[string]int)
	for i, modelName := range selected {
		p := NewPlayer(modelName, roles[i])
		seen[p.Name]++
		if seen[p.Name] > 1 {
			p.Name = fmt.Sprintf("%s-%d", p.Name, seen[p.Name])
		}
		e.state.Players = append(e.state.Players, p)
	}

	logger.LogGameEvent("game_setup", e.state.GameID, map[string]interface{}{
		"players":  len(e.state.Players),
		"mafia":    e.cfg.MafiaCount,
		"doctors":  e.cfg.DoctorCount,
		"language": e.state.Language,
	})

	return nil
}

// Run 运行整局游戏直到结束。回合循环为 夜晚 -> 白天讨论 -> 投票，
// 每次结算后判定胜负；达到最大回合数仍未分出胜负则以平局收场
func (e *Engine) Run(ctx context.Context) (*models.GameRecord, error) {
	if e.state == nil {
		if err := e.Setup(); err != nil {
			return nil, err
		}
	}

	startTime := time.Now()

	for e.state.Winner == "" {
		if err := ctx.Err(); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCanceled, "对局被取消")
		}

		// 超出最大回合数，显式判平局
		if e.state.RoundNumber >= e.cfg.MaxRounds {
			e.state.Winner = models.WinnerDraw
			e.state.Phase = PhaseGameOver
			break
		}

		e.state.RoundNumber++
		e.state.CurrentRound = &models.RoundRecord{RoundNumber: e.state.RoundNumber}

		e.runNight(ctx)
		if !e.evaluate() {
			e.runDay(ctx)
			e.evaluate()
		}

		// 回合记录归档，之后不再修改
		e.state.Rounds = append(e.state.Rounds, *e.state.CurrentRound)
		e.state.CurrentRound = nil
	}

	record := e.buildRecord()

	if e.cfg.CriticReview {
		record.CriticReview = e.generateCriticReview(ctx)
	}

	logger.LogGameEvent("game_over", e.state.GameID, map[string]interface{}{
		"winner":   e.state.Winner,
		"rounds":   len(e.state.Rounds),
		"duration": time.Since(startTime).String(),
	})

	return record, nil
}

// ask 向玩家索取一次响应。调用失败按弃权处理，返回空串
func (e *Engine) ask(ctx context.Context, p *Player, prompt string) string {
	start := time.Now()
	resp, err := e.invoker.Invoke(ctx, p.ModelName, prompt)
	logger.LogLLMCall(p.ModelName, len(prompt), time.Since(start), err)
	if err != nil {
		e.log.Warn("模型调用失败, 按弃权处理",
			zap.String("game_id", e.state.GameID),
			zap.String("player", p.Name),
			zap.Error(err))
		return ""
	}
	return ScrubThinking(resp)
}

// runNight 执行夜晚阶段：黑手党提交击杀，医生提交保护，统一结算
func (e *Engine) runNight(ctx context.Context) {
	st := e.state
	st.Phase = PhaseNight

	// 保护状态只在当晚有效
	for _, p := range st.Players {
		p.Protected = false
	}

	roster := st.AlivePlayers()

	var kills []Action
	var protects []Action
	for _, p := range roster {
		ability := p.Role.Capability()
		if !ability.CanKill && !ability.CanProtect {
			continue
		}

		prompt := e.prompts.BuildRolePrompt(p, st, e.prompts.NightInstruction(p.Role, st.RoundNumber))
		resp := e.ask(ctx, p, prompt)

		st.AppendMessage(models.Message{
			Speaker: p.Name,
			Content: resp,
			Phase:   "night",
			Role:    string(p.Role),
		})

		action := ParseNightAction(p, resp, st.Language, roster)
		st.AppendAction(action)

		if action.Verb == VerbKill {
			kills = append(kills, action)
		} else if action.Verb == VerbProtect {
			protects = append(protects, action)
		}
	}

	outcome := ResolveNight(roster, kills, protects)

	round := st.CurrentRound
	round.TargetedByMafia = outcome.Targeted
	round.ProtectedByDoctor = outcome.Protected
	round.NightKilled = outcome.Killed

	switch {
	case outcome.Killed != "":
		round.Eliminations = append(round.Eliminations, outcome.Killed)
		round.Outcome = fmt.Sprintf("%s was killed by the Mafia.", outcome.Killed)
	case outcome.Targeted != "" && outcome.Targeted == outcome.Protected:
		round.Outcome = fmt.Sprintf("The Doctor protected %s from the Mafia.", outcome.Targeted)
	default:
		round.Outcome = "No one was killed during the night."
	}
}

// runDay 执行白天阶段，分三段：讨论、投票、确认投票。
// 死亡玩家不再被提示，也不计入任何票数
func (e *Engine) runDay(ctx context.Context) {
	st := e.state
	st.Phase = PhaseDay
	round := st.CurrentRound
	roster := st.AlivePlayers()

	// 第一段：纯讨论，不收集投票
	for _, p := range roster {
		prompt := e.prompts.BuildRolePrompt(p, st, e.prompts.DayInstruction(p, st.RoundNumber, false))
		resp := e.ask(ctx, p, prompt)

		st.AppendMessage(models.Message{
			Speaker: p.Name,
			Content: resp,
			Phase:   "day_discussion",
			Role:    string(p.Role),
		})
		st.AppendHistory(p.Name, resp)
	}

	// 第二段：最后陈述并投票
	st.Phase = PhaseVoting
	var votes []Action
	for _, p := range roster {
		prompt := e.prompts.BuildRolePrompt(p, st, e.prompts.DayInstruction(p, st.RoundNumber, true))
		resp := e.ask(ctx, p, prompt)

		st.AppendMessage(models.Message{
			Speaker: p.Name,
			Content: resp,
			Phase:   "day_voting",
			Role:    string(p.Role),
		})
		st.AppendHistory(p.Name, resp)

		action := ParseVote(p, resp, st.Language, roster)
		st.AppendAction(action)
		if action.Verb == VerbVote {
			votes = append(votes, action)
		}
	}

	tally := TallyVotes(roster, votes, e.cfg.TieBreak)
	round.VoteCounts = tally.Counts
	round.VoteDetails = tally.Details
	round.Candidate = tally.Candidate

	if tally.Candidate == "" {
		round.Outcome += " No one was eliminated by vote."
		return
	}

	// 第三段：全体存活玩家的确认投票，同意票须严格过半
	confirmation := &models.ConfirmationVotes{}
	for _, p := range roster {
		prompt := e.prompts.BuildConfirmationPrompt(p, tally.Candidate, st)
		resp := e.ask(ctx, p, prompt)

		if ParseConfirmation(resp, st.Language) {
			confirmation.Agree = append(confirmation.Agree, p.Name)
		} else {
			confirmation.Disagree = append(confirmation.Disagree, p.Name)
		}
	}
	round.ConfirmationVotes = confirmation

	if !ConfirmElimination(len(confirmation.Agree), len(roster)) {
		round.Outcome += fmt.Sprintf(" The elimination of %s was rejected by the town.", tally.Candidate)
		return
	}

	candidate := st.FindPlayer(tally.Candidate)

	// 处刑前的遗言
	lastWords := e.ask(ctx, candidate,
		e.prompts.BuildRolePrompt(candidate, st, e.prompts.LastWordsInstruction(tally.TopVotes)))
	if lastWords != "" {
		round.LastWords = lastWords
		st.AppendMessage(models.Message{
			Speaker: candidate.Name,
			Content: lastWords,
			Phase:   "day",
			Role:    string(candidate.Role),
			Type:    "last_words",
		})
		st.AppendHistory(candidate.Name+" (last words)", lastWords)
	}

	candidate.Alive = false
	round.EliminatedByVote = candidate.Name
	round.Eliminations = append(round.Eliminations, candidate.Name)
	round.Outcome += fmt.Sprintf(" %s was eliminated by vote with %d votes.", candidate.Name, tally.TopVotes)
}

// evaluate 结算后的胜负判定。胜者只设置一次，设置后阶段冻结为GameOver
func (e *Engine) evaluate() bool {
	st := e.state
	if st.Winner != "" {
		return true
	}

	aliveMafia := st.AliveByRole(RoleMafia)
	switch EvaluateWin(aliveMafia, st.AliveCount()-aliveMafia) {
	case OutcomeMafiaWin:
		st.Winner = models.WinnerMafia
	case OutcomeVillagersWin:
		st.Winner = models.WinnerVillagers
	default:
		return false
	}

	st.Phase = PhaseGameOver
	return true
}

// buildRecord 将完成的对局组装为持久化记录
func (e *Engine) buildRecord() *models.GameRecord {
	st := e.state

	participants := make(models.ParticipantMap, len(st.Players))
	for _, p := range st.Players {
		participants[p.Name] = models.ParticipantInfo{
			Role:      string(p.Role),
			ModelName: p.ModelName,
		}
	}

	return &models.GameRecord{
		GameID:           st.GameID,
		Timestamp:        time.Now().Unix(),
		GameType:         e.cfg.GameType,
		Language:         st.Language,
		ParticipantCount: len(st.Players),
		Winner:           st.Winner,
		Participants:     participants,
		Rounds:           st.Rounds,
	}
}

var jsonBlockRe = regexp.MustCompile(`(?s)(\{.*\})`)

// generateCriticReview 赛后调用评论模型生成一段赏析。
// 任何失败都退回到固定文案，绝不影响对局结果
func (e *Engine) generateCriticReview(ctx context.Context) models.JSONData {
	st := e.state

	var eliminations []string
	for _, r := range st.Rounds {
		for _, name := range r.Eliminations {
			eliminations = append(eliminations, fmt.Sprintf("%s (round %d)", name, r.RoundNumber))
		}
	}
	var roleLines []string
	for _, p := range st.Players {
		roleLines = append(roleLines, fmt.Sprintf("%s: %s", p.Name, p.Role))
	}

	prompt := fmt.Sprintf(`You are a professional game critic reviewing a Mafia game played by AI language models.

Game summary:
- Winner: %s
- Number of rounds: %d
- Players and roles: %s
- Eliminations: %s

Write a short, entertaining critic review of this game. Include:
1. A catchy title for your review (max 50 characters)
2. A concise review (max 200 words) that analyzes the game's pacing, strategic moves, and the winning team's performance
3. A one-sentence intense summary that captures the essence of the game (max 100 characters)

Format your response as a JSON object with 'title', 'content', and 'one_liner' fields.
`, st.Winner, len(st.Rounds), strings.Join(roleLines, ", "), strings.Join(eliminations, ", "))

	fallback := models.JSONData{
		"title":     "Game Review Unavailable",
		"content":   "The critic was unable to review this game due to technical difficulties.",
		"one_liner": "Technical issues prevented our critic from delivering judgment.",
	}

	criticModel := e.cfg.CriticModel
	if criticModel == "" {
		return fallback
	}

	resp, err := e.invoker.Invoke(ctx, criticModel, prompt)
	if err != nil {
		e.log.Warn("评论生成失败", zap.String("game_id", st.GameID), zap.Error(err))
		return fallback
	}

	if m := jsonBlockRe.FindStringSubmatch(resp); m != nil {
		review := models.JSONData{}
		if err := json.Unmarshal([]byte(m[1]), &review); err == nil {
			if _, ok := review["one_liner"]; !ok {
				review["one_liner"] = "A game that defies simple description!"
			}
			return review
		}
	}

	// 响应不是合法JSON时截断为纯文本评论
	content := resp
	if len(content) > 300 {
		content = content[:300]
	}
	return models.JSONData{
		"title":     "AI Mafia Game Review",
		"content":   content,
		"one_liner": "A game that left our critic speechless!",
	}
}
