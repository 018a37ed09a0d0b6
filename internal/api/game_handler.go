package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	apperrors "github.com/guzus/llm-mafia-game/internal/errors"
	"github.com/guzus/llm-mafia-game/internal/models"
	"github.com/guzus/llm-mafia-game/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GameHandler 对局处理器
type GameHandler struct {
	gameRepo repository.GameRecordRepository
	db       *gorm.DB
	logger   *zap.Logger
}

// NewGameHandler 创建对局处理器
func NewGameHandler(db *gorm.DB, logger *zap.Logger) *GameHandler {
	return &GameHandler{
		gameRepo: repository.NewGameRecordRepository(db),
		db:       db,
		logger:   logger,
	}
}

// GameListResponse 对局列表响应
type GameListResponse struct {
	Games []models.GameSummary `json:"games"`
	Total int                  `json:"total"`
}

// ListGames 获取最近对局列表（按时间倒序，不含回合详情）
func (h *GameHandler) ListGames(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":  apperrors.ErrInvalidLimit,
				"error": "limit参数无效",
			})
			return
		}
		limit = parsed
	}

	records, err := h.gameRepo.FindRecent(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("查询对局列表失败", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询对局列表失败"})
		return
	}

	summaries := make([]models.GameSummary, 0, len(records))
	for _, record := range records {
		summaries = append(summaries, record.Summary())
	}

	c.JSON(http.StatusOK, GameListResponse{
		Games: summaries,
		Total: len(summaries),
	})
}

// GetGame 获取单局完整记录（含全部回合与发言）
func (h *GameHandler) GetGame(c *gin.Context) {
	gameID := c.Param("id")

	record, err := h.gameRepo.FindByGameID(c.Request.Context(), gameID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"code":  apperrors.ErrGameNotExists,
				"error": "对局不存在",
			})
			return
		}
		h.logger.Error("查询对局失败",
			zap.String("game_id", gameID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询对局失败"})
		return
	}

	c.JSON(http.StatusOK, record)
}
