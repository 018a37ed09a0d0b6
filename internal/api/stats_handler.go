package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guzus/llm-mafia-game/internal/models"
	"github.com/guzus/llm-mafia-game/internal/repository"
	"github.com/guzus/llm-mafia-game/internal/stats"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 分页聚合时单次读取的记录数（分页参数上限为100）
const statsPageSize = 100

// StatsHandler 统计处理器
type StatsHandler struct {
	gameRepo repository.GameRecordRepository
	db       *gorm.DB
	logger   *zap.Logger
}

// NewStatsHandler 创建统计处理器
func NewStatsHandler(db *gorm.DB, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{
		gameRepo: repository.NewGameRecordRepository(db),
		db:       db,
		logger:   logger,
	}
}

// StatsResponse 统计响应
type StatsResponse struct {
	TotalGames   int64               `json:"total_games"`
	MafiaWins    int64               `json:"mafia_wins"`
	VillagerWins int64               `json:"villager_wins"`
	Draws        int64               `json:"draws"`
	Models       []*stats.ModelStats `json:"models"`
}

// GetStats 获取全量统计
func (h *StatsHandler) GetStats(c *gin.Context) {
	records, err := h.loadAllRecords(c.Request.Context())
	if err != nil {
		h.logger.Error("读取对局记录失败", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取对局记录失败"})
		return
	}

	mafiaWins, err := h.gameRepo.CountByWinner(c.Request.Context(), models.WinnerMafia)
	if err != nil {
		h.logger.Error("统计胜场失败", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "统计胜场失败"})
		return
	}
	villagerWins, err := h.gameRepo.CountByWinner(c.Request.Context(), models.WinnerVillagers)
	if err != nil {
		h.logger.Error("统计胜场失败", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "统计胜场失败"})
		return
	}
	draws, err := h.gameRepo.CountByWinner(c.Request.Context(), models.WinnerDraw)
	if err != nil {
		h.logger.Error("统计胜场失败", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "统计胜场失败"})
		return
	}

	resp := StatsResponse{
		TotalGames:   int64(len(records)),
		MafiaWins:    mafiaWins,
		VillagerWins: villagerWins,
		Draws:        draws,
		Models:       stats.Leaderboard(stats.Aggregate(records)),
	}
	c.JSON(http.StatusOK, resp)
}

// GetLeaderboard 获取模型胜率排行
func (h *StatsHandler) GetLeaderboard(c *gin.Context) {
	records, err := h.loadAllRecords(c.Request.Context())
	if err != nil {
		h.logger.Error("读取对局记录失败", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取对局记录失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"leaderboard": stats.Leaderboard(stats.Aggregate(records)),
	})
}

// loadAllRecords 分页读取全部对局记录
func (h *StatsHandler) loadAllRecords(ctx context.Context) ([]*models.GameRecord, error) {
	var all []*models.GameRecord
	for page := 1; ; page++ {
		batch, err := h.gameRepo.FindAll(ctx, repository.NewPagination(page, statsPageSize))
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < statsPageSize {
			return all, nil
		}
	}
}
