package service

import (
	"context"
	"sync"

	"github.com/guzus/llm-mafia-game/internal/config"
	apperrors "github.com/guzus/llm-mafia-game/internal/errors"
	"github.com/guzus/llm-mafia-game/internal/game"
	"github.com/guzus/llm-mafia-game/internal/models"
	"github.com/guzus/llm-mafia-game/internal/repository"
	"github.com/guzus/llm-mafia-game/internal/stats"
	ws "github.com/guzus/llm-mafia-game/internal/websocket"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Simulator 批量对局模拟器
//
// 每局独立创建引擎，完成后写入数据库并向观战端推送结果。
// 写库失败不会终止批次，对局记录仍保留在运行结果中。
type Simulator struct {
	gameCfg   config.GameConfig
	simCfg    config.SimulationConfig
	maxTokens int
	invoker   game.Invoker
	gameRepo  repository.GameRecordRepository
	hub       *ws.Hub
	log       *zap.Logger
}

// NewSimulator 创建模拟器。db与hub可为nil（不持久化/不推送）。
func NewSimulator(
	db *gorm.DB,
	gameCfg config.GameConfig,
	simCfg config.SimulationConfig,
	maxTokens int,
	invoker game.Invoker,
	hub *ws.Hub,
	log *zap.Logger,
) *Simulator {
	var gameRepo repository.GameRecordRepository
	if db != nil {
		gameRepo = repository.NewGameRecordRepository(db)
	}

	return &Simulator{
		gameCfg:   gameCfg,
		simCfg:    simCfg,
		maxTokens: maxTokens,
		invoker:   invoker,
		gameRepo:  gameRepo,
		hub:       hub,
		log:       log,
	}
}

// RunResult 批次运行结果
type RunResult struct {
	GamesRequested int                          `json:"games_requested"`
	GamesCompleted int                          `json:"games_completed"`
	GamesFailed    int                          `json:"games_failed"`
	SaveFailures   int                          `json:"save_failures"`
	Winners        map[string]int               `json:"winners"`
	ModelStats     map[string]*stats.ModelStats `json:"model_stats"`
	Records        []*models.GameRecord         `json:"-"`
}

// Run 运行一个批次的对局
func (s *Simulator) Run(ctx context.Context) (*RunResult, error) {
	numGames := s.simCfg.NumGames
	if numGames <= 0 {
		numGames = 1
	}

	result := &RunResult{
		GamesRequested: numGames,
		Winners:        make(map[string]int),
	}

	s.log.Info("开始批量模拟",
		zap.Int("num_games", numGames),
		zap.Bool("parallel", s.simCfg.Parallel),
		zap.Int("max_workers", s.simCfg.MaxWorkers))

	var records []*models.GameRecord
	var saveFailures, failed int

	if s.simCfg.Parallel {
		records, failed, saveFailures = s.runParallel(ctx, numGames)
	} else {
		records, failed, saveFailures = s.runSequential(ctx, numGames)
	}

	for _, record := range records {
		result.Winners[record.Winner]++
	}
	result.Records = records
	result.GamesCompleted = len(records)
	result.GamesFailed = failed
	result.SaveFailures = saveFailures
	result.ModelStats = stats.Aggregate(records)

	s.log.Info("批量模拟结束",
		zap.Int("completed", result.GamesCompleted),
		zap.Int("failed", result.GamesFailed),
		zap.Int("save_failures", result.SaveFailures),
		zap.Any("winners", result.Winners))

	return result, ctx.Err()
}

// runSequential 顺序执行
func (s *Simulator) runSequential(ctx context.Context, numGames int) (records []*models.GameRecord, failed, saveFailures int) {
	for i := 0; i < numGames; i++ {
		if ctx.Err() != nil {
			break
		}
		record, err := s.runOne(ctx, i)
		if err != nil {
			failed++
			continue
		}
		if !s.persist(ctx, record) {
			saveFailures++
		}
		records = append(records, record)
	}
	return records, failed, saveFailures
}

// runParallel 并发执行，工作协程数受MaxWorkers限制
func (s *Simulator) runParallel(ctx context.Context, numGames int) (records []*models.GameRecord, failed, saveFailures int) {
	workers := s.simCfg.MaxWorkers
	if workers <= 0 {
		workers = 4
	}
	if workers > numGames {
		workers = numGames
	}

	jobs := make(chan int)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				record, err := s.runOne(ctx, i)

				mu.Lock()
				if err != nil {
					failed++
					mu.Unlock()
					continue
				}
				if !s.persist(ctx, record) {
					saveFailures++
				}
				records = append(records, record)
				mu.Unlock()
			}
		}()
	}

	for i := 0; i < numGames; i++ {
		select {
		case jobs <- i:
		case <-ctx.Done():
			i = numGames
		}
	}
	close(jobs)
	wg.Wait()

	return records, failed, saveFailures
}

// runOne 执行单局并推送观战事件
func (s *Simulator) runOne(ctx context.Context, index int) (*models.GameRecord, error) {
	cfg := s.gameCfg
	if cfg.RandomSeed != 0 {
		// 每局派生独立种子，保持批次可复现
		cfg.RandomSeed = s.gameCfg.RandomSeed + int64(index)
	}

	engine := game.NewEngine(cfg, s.invoker, s.maxTokens)
	if err := engine.Setup(); err != nil {
		s.log.Error("对局初始化失败",
			zap.Int("game_index", index),
			zap.Error(err))
		return nil, err
	}

	if s.hub != nil {
		s.hub.BroadcastEvent(ws.MessageTypeGameStarted, engine.State().GameID, map[string]interface{}{
			"game_index": index,
			"language":   cfg.Language,
		})
	}

	record, err := engine.Run(ctx)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrCanceled) {
			s.log.Warn("对局被取消", zap.Int("game_index", index))
		} else {
			s.log.Error("对局执行失败",
				zap.Int("game_index", index),
				zap.Error(err))
		}
		return nil, err
	}

	if s.hub != nil {
		s.hub.BroadcastEvent(ws.MessageTypeGameFinished, record.GameID, record.Summary())
	}

	return record, nil
}

// persist 写入对局记录，失败时保留记录并返回false
func (s *Simulator) persist(ctx context.Context, record *models.GameRecord) bool {
	if s.gameRepo == nil {
		return true
	}

	if err := s.gameRepo.Create(ctx, record); err != nil {
		s.log.Error("保存对局记录失败",
			zap.String("game_id", record.GameID),
			zap.Error(err))
		return false
	}
	return true
}
